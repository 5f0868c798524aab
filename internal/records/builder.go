// Package records maps extracted field rows onto the estimate models.
package records

import (
	"errors"
	"fmt"
	"time"

	"github.com/law-makers/encuestas/internal/extract"
	"github.com/law-makers/encuestas/pkg/models"
)

// Field counts of each variant
const (
	CandidateWidth = 6
	PartyWidth     = 11
)

// ErrFieldCount is returned when a row does not match the variant width
var ErrFieldCount = errors.New("field count does not match record schema")

// BuildCandidates creates one CandidateEstimate per row, all stamped with at
func BuildCandidates(rows []extract.FieldRow, at time.Time) ([]models.CandidateEstimate, error) {
	out := make([]models.CandidateEstimate, 0, len(rows))
	for i, r := range rows {
		if len(r) != CandidateWidth {
			return nil, fmt.Errorf("row %d: %w (got %d, want %d)", i, ErrFieldCount, len(r), CandidateWidth)
		}
		out = append(out, models.CandidateEstimate{
			Estimation: r[0],
			Pollster:   r[1],
			Date:       r[2],
			CandidateX: r[3],
			CandidateY: r[4],
			CandidateZ: r[5],
			IngestedAt: at,
		})
	}
	return out, nil
}

// BuildParties creates one PartyEstimate per row, all stamped with at
func BuildParties(rows []extract.FieldRow, at time.Time) ([]models.PartyEstimate, error) {
	out := make([]models.PartyEstimate, 0, len(rows))
	for i, r := range rows {
		if len(r) != PartyWidth {
			return nil, fmt.Errorf("row %d: %w (got %d, want %d)", i, ErrFieldCount, len(r), PartyWidth)
		}
		out = append(out, models.PartyEstimate{
			Estimation: r[0],
			Pollster:   r[1],
			Date:       r[2],
			PAN:        r[3],
			PRI:        r[4],
			PRD:        r[5],
			PVEM:       r[6],
			PT:         r[7],
			MC:         r[8],
			MORENA:     r[9],
			NR:         r[10],
			IngestedAt: at,
		})
	}
	return out, nil
}
