package display

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// Table renders rows under headers as a pterm table
func Table(w io.Writer, headers []string, rows [][]string) error {
	data := make(pterm.TableData, 0, len(rows)+1)
	data = append(data, headers)
	data = append(data, rows...)

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// KeyValues renders label/value pairs as a two-column table without header
func KeyValues(w io.Writer, pairs [][2]string) error {
	data := make(pterm.TableData, 0, len(pairs))
	for _, p := range pairs {
		data = append(data, []string{pterm.Bold.Sprint(p[0]), p[1]})
	}

	out, err := pterm.DefaultTable.WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
