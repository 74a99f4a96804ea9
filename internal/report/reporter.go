package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/convergenps/sheetctl/internal/domain"
)

// maxRowErrors caps per-category error output so a pathological backend
// response cannot flood the terminal.
const maxRowErrors = 5

const (
	ansiGreen  = "\033[92m"
	ansiRed    = "\033[91m"
	ansiYellow = "\033[93m"
	ansiCyan   = "\033[96m"
	ansiReset  = "\033[0m"
)

// Reporter renders run outcomes for a human operator. It has no effect on
// run correctness; any sink can replace it.
type Reporter struct {
	w     io.Writer
	color bool
}

func New(w io.Writer, color bool) *Reporter {
	return &Reporter{w: w, color: color}
}

func (r *Reporter) paint(code, msg string) string {
	if !r.color {
		return msg
	}
	return code + msg + ansiReset
}

func (r *Reporter) success(format string, args ...interface{}) {
	fmt.Fprintln(r.w, r.paint(ansiGreen, "✓ "+fmt.Sprintf(format, args...)))
}

func (r *Reporter) failure(format string, args ...interface{}) {
	fmt.Fprintln(r.w, r.paint(ansiRed, "✗ "+fmt.Sprintf(format, args...)))
}

func (r *Reporter) info(format string, args ...interface{}) {
	fmt.Fprintln(r.w, r.paint(ansiCyan, "ℹ "+fmt.Sprintf(format, args...)))
}

func (r *Reporter) warn(format string, args ...interface{}) {
	fmt.Fprintln(r.w, r.paint(ansiYellow, "⚠ "+fmt.Sprintf(format, args...)))
}

// PrintResult renders one category's result, showing at most maxRowErrors
// row-level errors followed by a truncation line.
func (r *Reporter) PrintResult(res *domain.ImportResult) {
	if res.Failure != "" {
		r.failure("%s import failed: %s", res.Category, res.Failure)
		return
	}

	r.success("Imported %d new %s", res.Imported, res.Category)
	if res.Updated > 0 {
		r.info("Updated %d existing %s", res.Updated, res.Category)
	}
	if res.Failed > 0 {
		r.warn("Failed to import %d %s", res.Failed, res.Category)
		shown := res.Errors
		if len(shown) > maxRowErrors {
			shown = shown[:maxRowErrors]
		}
		for _, rowErr := range shown {
			r.warn("  Row %s: %s", rowErr.Row, rowErr.Message)
		}
		if extra := len(res.Errors) - maxRowErrors; extra > 0 {
			r.warn("  ... and %d more", extra)
		}
	}
}

// PrintOutcome renders the whole run: per-category detail for sequential
// runs, the backend's opaque summary for atomic runs, then a totals table
// and the final verdict.
func (r *Reporter) PrintOutcome(outcome *domain.RunOutcome) {
	for i := range outcome.Results {
		r.PrintResult(&outcome.Results[i])
	}

	if outcome.Strategy == domain.StrategyAtomic && len(outcome.Summary) > 0 {
		var pretty interface{}
		if err := json.Unmarshal(outcome.Summary, &pretty); err == nil {
			data, _ := json.MarshalIndent(pretty, "", "  ")
			r.info("Backend summary:\n%s", data)
		}
	}

	if len(outcome.Results) > 0 {
		r.printTotals(outcome.Results)
	}

	if outcome.OverallSuccess {
		r.success("Import complete")
		return
	}
	if outcome.Error != "" {
		r.failure("Import failed: %s", outcome.Error)
		return
	}
	r.warn("Import completed with errors")
}

func (r *Reporter) printTotals(results []domain.ImportResult) {
	w := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tIMPORTED\tUPDATED\tFAILED")
	for i := range results {
		res := &results[i]
		if res.Failure != "" {
			fmt.Fprintf(w, "%s\t-\t-\tcall failed\n", res.Category)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", res.Category, res.Imported, res.Updated, res.Failed)
	}
	w.Flush()
}
