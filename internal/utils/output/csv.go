package output

import (
	"encoding/csv"
	"io"

	"github.com/law-makers/encuestas/pkg/models"
)

// WriteCSV writes a header line followed by one line per record
func WriteCSV(w io.Writer, headers []string, records []models.Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(headers); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write(r.Fields()); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
