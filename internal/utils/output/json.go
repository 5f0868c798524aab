package output

import (
	"encoding/json"
	"io"

	"github.com/law-makers/encuestas/pkg/models"
)

// WriteJSON writes the records as an indented JSON array
func WriteJSON(w io.Writer, records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
