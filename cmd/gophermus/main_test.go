package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmdConstructsMUSes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s5.mcses")
	require.NoError(t, os.WriteFile(path, []byte("1 2\n1 3\n2 3\n"), 0o644))

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "1 2\n")
	assert.Contains(t, out.String(), "1 3\n")
	assert.Contains(t, out.String(), "2 3\n")
}

func TestRootCmdRejectsExtraPositionalArg(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"a", "b"})

	assert.Error(t, cmd.Execute())
}
