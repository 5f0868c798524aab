// Package output renders estimate snapshots for humans and files.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/law-makers/encuestas/pkg/models"
)

// Rows returns the text fields of each record
func Rows(records []models.Record) [][]string {
	out := make([][]string, len(records))
	for i, r := range records {
		out[i] = r.Fields()
	}
	return out
}

// NewTable builds a go-pretty table of the records under headers
func NewTable(headers []string, records []models.Record) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)

	for _, fields := range Rows(records) {
		row := make(table.Row, len(fields))
		for i, f := range fields {
			row[i] = f
		}
		t.AppendRow(row)
	}
	return t
}

// RenderTable prints the records as a terminal table
func RenderTable(w io.Writer, headers []string, records []models.Record) {
	t := NewTable(headers, records)
	t.SetOutputMirror(w)
	t.Render()
}

// Save writes the records to path in the format implied by its extension
func Save(path string, headers []string, records []models.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		err = WriteCSV(f, headers, records)
	case ".json":
		err = WriteJSON(f, records)
	case ".md", ".markdown":
		_, err = io.WriteString(f, NewTable(headers, records).RenderMarkdown()+"\n")
	default:
		err = fmt.Errorf("unsupported output format %q (use .csv, .json or .md)", ext)
	}
	if err != nil {
		return err
	}
	return f.Close()
}
