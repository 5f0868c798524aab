package models

import "time"

// Document represents a fetched source page
type Document struct {
	URL          string    `json:"url"`
	StatusCode   int       `json:"status_code"`
	Body         string    `json:"-"`
	FetchedAt    time.Time `json:"fetched_at"`
	ResponseTime int64     `json:"response_time_ms"`
}

// FetchMode defines how the source page is retrieved
type FetchMode string

const (
	ModeStatic  FetchMode = "static"
	ModeBrowser FetchMode = "browser"
)

// CandidateEstimate is one row of the candidate voting-intention table.
// Values are kept as the cell text found on the page.
type CandidateEstimate struct {
	Estimation string    `json:"estimation" db:"estimacion"`
	Pollster   string    `json:"pollster" db:"encuestadora"`
	Date       string    `json:"date" db:"fecha"`
	CandidateX string    `json:"candidate_x" db:"xg"`
	CandidateY string    `json:"candidate_y" db:"cs"`
	CandidateZ string    `json:"candidate_z" db:"jam"`
	IngestedAt time.Time `json:"ingested_at" db:"time_insert"`
}

// PartyEstimate is one row of the party voting-intention table
type PartyEstimate struct {
	Estimation string    `json:"estimation" db:"estimacion"`
	Pollster   string    `json:"pollster" db:"encuestadora"`
	Date       string    `json:"date" db:"fecha"`
	PAN        string    `json:"pan" db:"pan"`
	PRI        string    `json:"pri" db:"pri"`
	PRD        string    `json:"prd" db:"prd"`
	PVEM       string    `json:"pvem" db:"pvem"`
	PT         string    `json:"pt" db:"pt"`
	MC         string    `json:"mc" db:"mc"`
	MORENA     string    `json:"morena" db:"morena"`
	NR         string    `json:"nr" db:"nr"`
	IngestedAt time.Time `json:"ingested_at" db:"time_insert"`
}

// CandidateColumns lists the destination columns of CandidateEstimate in field order
var CandidateColumns = []string{"estimacion", "encuestadora", "fecha", "xg", "cs", "jam", "time_insert"}

// PartyColumns lists the destination columns of PartyEstimate in field order
var PartyColumns = []string{"estimacion", "encuestadora", "fecha", "pan", "pri", "prd", "pvem", "pt", "mc", "morena", "nr", "time_insert"}

// CandidateHeaders are the display headers of CandidateEstimate text fields
var CandidateHeaders = []string{"Estimacion", "Encuestadora", "Fecha", "XG", "CS", "JAM"}

// PartyHeaders are the display headers of PartyEstimate text fields
var PartyHeaders = []string{"Estimacion", "Encuestadora", "Fecha", "PAN", "PRI", "PRD", "PVEM", "PT", "MC", "MORENA", "NR"}

// Fields returns the text fields of the record in column order
func (c CandidateEstimate) Fields() []string {
	return []string{c.Estimation, c.Pollster, c.Date, c.CandidateX, c.CandidateY, c.CandidateZ}
}

// Fields returns the text fields of the record in column order
func (p PartyEstimate) Fields() []string {
	return []string{p.Estimation, p.Pollster, p.Date, p.PAN, p.PRI, p.PRD, p.PVEM, p.PT, p.MC, p.MORENA, p.NR}
}

// Record is implemented by both estimate variants
type Record interface {
	Fields() []string
}
