package display

import (
	"encoding/json"
	"fmt"
	"io"
)

// MarshalJSON marshals v with two-space indentation
func MarshalJSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// WriteJSON marshals v and writes it followed by a newline
func WriteJSON(w io.Writer, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
