package commands

import (
	"fmt"
	"io"

	"github.com/gleyba/uber-poet/errors"
)

// PrintError writes err and any attached hints the way the CLI reports
// failures. With verbose set the full error chain with stack traces is
// printed.
func PrintError(w io.Writer, err error, verbose bool) {
	if verbose {
		fmt.Fprintf(w, "Error: %+v\n", err)
	} else {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	if hints := errors.FlattenHints(err); hints != "" {
		fmt.Fprintf(w, "Hint: %s\n", hints)
	}
}
