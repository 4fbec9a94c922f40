package cnf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDIMACSBasic(t *testing.T) {
	src := "c a comment\np cnf 3 2\n1 2 3 0\n-1 -2 0\n"
	f, err := ParseDIMACS(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 3, f.NbVars)
	require.Len(t, f.Clauses, 2)
	assert.Equal(t, []int{1, 2, 3}, []int(f.Clauses[0]))
	assert.Equal(t, []int{-1, -2}, []int(f.Clauses[1]))
	assert.Equal(t, 2, f.NbSelectors)
}

func TestParseDIMACSMissingHeader(t *testing.T) {
	_, err := ParseDIMACS(strings.NewReader("1 2 0\n"))
	assert.Error(t, err)
}

func TestParseDIMACSLiteralOutOfRange(t *testing.T) {
	_, err := ParseDIMACS(strings.NewReader("p cnf 1 1\n1 2 0\n"))
	assert.Error(t, err)
}

func TestParseDIMACSBlankLines(t *testing.T) {
	src := "p cnf 2 2\n\n1 2 0\n\n-1 -2 0\n"
	f, err := ParseDIMACS(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, f.Clauses, 2)
}
