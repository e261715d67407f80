package jobs

import (
	"math"
	"strings"
)

const (
	RecordIDField      = "ID"
	RecordURLField     = "URL"
	RecordCompanyField = "Company"
)

// Amount is a salary value that may be unknown. Unknown is distinct from zero.
type Amount struct {
	Value float64 `json:"value"`
	Known bool    `json:"known"`
}

// Unknown returns the unknown amount sentinel.
func Unknown() Amount { return Amount{} }

// Known wraps a non-negative finite value; anything else is unknown.
func Known(v float64) Amount {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Amount{}
	}
	return Amount{Value: v, Known: true}
}

// Tristate is a boolean that defaults to unknown.
type Tristate int

const (
	TristateUnknown Tristate = iota
	TristateYes
	TristateNo
)

func (t Tristate) String() string {
	switch t {
	case TristateYes:
		return "yes"
	case TristateNo:
		return "no"
	default:
		return "unknown"
	}
}

// Record is a normalized job posting. Every field is defined: text fields are
// empty when missing, salaries and remote carry explicit unknown sentinels.
type Record struct {
	ID           string   `json:"id"`
	Source       string   `json:"source"`
	URL          string   `json:"url"`
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	Requirements string   `json:"requirements"`
	Benefits     string   `json:"benefits"`
	SalaryMin    Amount   `json:"salary_min"`
	SalaryMax    Amount   `json:"salary_max"`
	Remote       Tristate `json:"remote"`

	Assessment *Assessment `json:"assessment,omitempty"`
	Review     *Review     `json:"review,omitempty"`
}

// Assessment is the engine outcome attached to a record for display and storage.
type Assessment struct {
	BaseScore  float64  `json:"base_score"`
	FinalScore float64  `json:"final_score"`
	Passed     bool     `json:"passed"`
	Penalties  []string `json:"penalties,omitempty"`
	Reasons    []string `json:"reasons,omitempty"`
}

// Review is an advisory second opinion from an AI provider.
type Review struct {
	Fit    bool    `json:"fit"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
	Raw    string  `json:"raw,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Text returns the title, description, requirements and benefits joined for keyword detection.
func (r *Record) Text() string {
	return joinNonEmpty(r.Title, r.Description, r.Requirements, r.Benefits)
}

// Body returns the description and requirements text only.
func (r *Record) Body() string {
	return joinNonEmpty(r.Description, r.Requirements)
}

// Label is a short human readable identity used in logs and prompts.
func (r *Record) Label() string {
	parts := filterEmpty([]string{r.Title, r.Company, r.Location})
	if len(parts) == 0 {
		return r.ID
	}
	return strings.Join(parts, " / ")
}

func (r *Record) GetStringField(name string) string {
	switch name {
	case RecordIDField:
		return r.ID
	case RecordURLField:
		return r.URL
	case RecordCompanyField:
		return r.Company
	default:
		return ""
	}
}

func joinNonEmpty(parts ...string) string {
	return strings.Join(filterEmpty(parts), " ")
}

func filterEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
