package commands

import (
	"io"
	"os"
)

// stdout returns w, or os.Stdout when w is nil. Commands keep an unexported
// writer so tests can capture what they print.
func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
