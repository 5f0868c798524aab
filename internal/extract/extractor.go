// Package extract turns an anchored HTML table into rows of cell text.
package extract

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FieldRow holds the trimmed cell text of one table row, ordered as its ColumnSpec
type FieldRow []string

// Extract parses r and tabularizes the table anchored at anchorID
func Extract(r io.Reader, anchorID string, spec ColumnSpec) ([]FieldRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &ExtractError{Code: ErrCodeParse, Anchor: anchorID, Underlying: err}
	}
	return ExtractDocument(doc, anchorID, spec)
}

// ExtractString is Extract over an in-memory document
func ExtractString(html, anchorID string, spec ColumnSpec) ([]FieldRow, error) {
	return Extract(strings.NewReader(html), anchorID, spec)
}

// ExtractDocument reads every body row of the anchored table in document order.
//
// Extraction is strict: a row with fewer cells than the spec requires aborts
// the whole table rather than producing a short or shifted record.
func ExtractDocument(doc *goquery.Document, anchorID string, spec ColumnSpec) ([]FieldRow, error) {
	anchor := FindAnchor(doc, anchorID)
	if anchor == nil {
		return nil, &ExtractError{Code: ErrCodeAnchorNotFound, Anchor: anchorID}
	}

	body := anchor.Find("tbody").First()
	if body.Length() == 0 {
		return nil, &ExtractError{Code: ErrCodeBodyNotFound, Anchor: anchorID}
	}

	need := spec.MaxIndex() + 1
	rows := []FieldRow{}

	var failure *ExtractError
	body.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() < need {
			failure = &ExtractError{
				Code:   ErrCodeMissingColumn,
				Anchor: anchorID,
				Row:    i,
				Index:  firstMissing(spec, cells.Length()),
				Cells:  cells.Length(),
			}
			return false
		}

		row := make(FieldRow, len(spec))
		for j, idx := range spec {
			row[j] = strings.TrimSpace(cells.Eq(idx).Text())
		}
		rows = append(rows, row)
		return true
	})
	if failure != nil {
		return nil, failure
	}

	return rows, nil
}

// FindAnchor returns the first element whose id is anchorID, or nil
func FindAnchor(doc *goquery.Document, anchorID string) *goquery.Selection {
	var found *goquery.Selection
	// Attribute match instead of "#id" so ids that are not valid CSS identifiers still work
	doc.Find("[id]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if id, _ := s.Attr("id"); id == anchorID {
			found = s
			return false
		}
		return true
	})
	return found
}

func firstMissing(spec ColumnSpec, cells int) int {
	for _, idx := range spec {
		if idx >= cells {
			return idx
		}
	}
	return spec.MaxIndex()
}
