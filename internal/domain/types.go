package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Credentials identify the backend admin account used for the run.
type Credentials struct {
	Email    string `json:"email" yaml:"email"`
	Password string `json:"password" yaml:"password"`
}

// Category is a named subset of importable records, or CategoryAll.
type Category string

const (
	CategoryAttendees Category = "attendees"
	CategorySessions  Category = "sessions"
	CategoryProjects  Category = "projects"
	CategoryPartners  Category = "partners"

	// CategoryAll targets the backend's import-everything endpoint.
	CategoryAll Category = "all"
)

// SupportedCategories lists every per-category import the backend handles,
// in the order the sequential strategy runs them.
func SupportedCategories() []Category {
	return []Category{CategoryAttendees, CategorySessions, CategoryProjects, CategoryPartners}
}

type Strategy string

const (
	StrategyAtomic     Strategy = "atomic"
	StrategySequential Strategy = "sequential"
)

// RowRef is a backend-reported row identifier. Backends send either a JSON
// number (positional index) or a string key, so it decodes from both.
type RowRef string

func (r *RowRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = RowRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("row identifier must be a string or number: %s", data)
	}
	*r = RowRef(n.String())
	return nil
}

// RowError is one backend-reported failure to import a single source record.
type RowError struct {
	Row     RowRef `json:"row"`
	Message string `json:"message"`
}

// ImportResult is the normalized outcome of one per-category import call.
//
// Failure is set instead of the counts when the call itself failed (transport
// or backend error) and no per-row breakdown exists. Row-level failures are
// counted in Failed with detail in Errors.
type ImportResult struct {
	Category Category   `json:"category"`
	Imported int        `json:"imported"`
	Updated  int        `json:"updated"`
	Failed   int        `json:"failed"`
	Errors   []RowError `json:"errors,omitempty"`
	Failure  string     `json:"failure,omitempty"`
}

// OK reports whether the category imported without row or call failures.
func (r *ImportResult) OK() bool {
	return r.Failure == "" && r.Failed == 0
}

// RunOutcome is the final, immutable summary of one import invocation.
// Summary carries the opaque backend blob for the atomic strategy; Results
// carries the per-category breakdown for the sequential strategy.
type RunOutcome struct {
	Strategy       Strategy        `json:"strategy"`
	Results        []ImportResult  `json:"results,omitempty"`
	Summary        json.RawMessage `json:"summary,omitempty"`
	OverallSuccess bool            `json:"overall_success"`
	StartedAt      time.Time       `json:"started_at"`
	CompletedAt    time.Time       `json:"completed_at"`
	Error          string          `json:"error,omitempty"`
}

// ImportProfile is a named run configuration loaded from a profile file.
type ImportProfile struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	Endpoint   string            `json:"endpoint" yaml:"endpoint"`
	Strategy   Strategy          `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Categories []Category        `json:"categories,omitempty" yaml:"categories,omitempty"`
	DelayMS    int64             `json:"inter_call_delay_ms,omitempty" yaml:"inter_call_delay_ms,omitempty"`
	Sheets     map[string]string `json:"sheets,omitempty" yaml:"sheets,omitempty"`
}

// InterCallDelay returns the pacing pause between sequential calls,
// defaulting to one second when the profile leaves it unset.
func (p *ImportProfile) InterCallDelay() time.Duration {
	if p.DelayMS <= 0 {
		return time.Second
	}
	return time.Duration(p.DelayMS) * time.Millisecond
}

// RunRecord is one journaled run as stored by the journal repository.
type RunRecord struct {
	ID             string          `json:"id"`
	ProfileName    string          `json:"profile_name"`
	Endpoint       string          `json:"endpoint"`
	Strategy       Strategy        `json:"strategy"`
	OverallSuccess bool            `json:"overall_success"`
	StartedAt      time.Time       `json:"started_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	Results        json.RawMessage `json:"results,omitempty"`
	Error          string          `json:"error,omitempty"`
}
