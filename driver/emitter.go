package driver

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Emitter writes MCS/MUS result lines straight to an io.Writer. This is a
// data channel, not a log: it never goes through logrus.
type Emitter struct {
	w io.Writer
}

// NewEmitter wraps w for selector-set output.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// EmitSelectors writes one line of space-separated 1-based selector
// indices, translated up from the 0-based indices used internally
// throughout formula/mcs/hitset.
func (e *Emitter) EmitSelectors(zeroBased []int) error {
	_, err := fmt.Fprintln(e.w, joinOneBased(zeroBased))
	return err
}

// EmitTimestamped writes a Unix timestamp followed by the selector line,
// for the "-T" report-each-time mode.
func (e *Emitter) EmitTimestamped(unixTime int64, zeroBased []int) error {
	_, err := fmt.Fprintf(e.w, "%d %s\n", unixTime, joinOneBased(zeroBased))
	return err
}

func joinOneBased(zeroBased []int) string {
	parts := make([]string, len(zeroBased))
	for i, v := range zeroBased {
		parts[i] = strconv.Itoa(v + 1)
	}
	return strings.Join(parts, " ")
}
