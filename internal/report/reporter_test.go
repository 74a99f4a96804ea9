package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/convergenps/sheetctl/internal/domain"
)

func TestPrintResult_BoundedErrorDisplay(t *testing.T) {
	res := &domain.ImportResult{
		Category: domain.CategoryAttendees,
		Imported: 10,
		Failed:   12,
	}
	for i := 0; i < 12; i++ {
		res.Errors = append(res.Errors, domain.RowError{
			Row:     domain.RowRef(fmt.Sprintf("%d", i+1)),
			Message: fmt.Sprintf("problem %d", i+1),
		})
	}

	var buf bytes.Buffer
	New(&buf, false).PrintResult(res)
	out := buf.String()

	if got := strings.Count(out, "Row "); got != 5 {
		t.Fatalf("expected 5 row errors shown, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "... and 7 more") {
		t.Fatalf("expected truncation indicator, got:\n%s", out)
	}
}

func TestPrintResult_CategoryFailure(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).PrintResult(&domain.ImportResult{
		Category: domain.CategorySessions,
		Failure:  "status 500",
	})

	out := buf.String()
	if !strings.Contains(out, "sessions import failed: status 500") {
		t.Fatalf("expected category failure line, got:\n%s", out)
	}
	if strings.Contains(out, "Imported") {
		t.Fatalf("category failure must not render counts, got:\n%s", out)
	}
}

func TestPrintResult_QuietWhenClean(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).PrintResult(&domain.ImportResult{
		Category: domain.CategoryPartners,
		Imported: 4,
	})

	out := buf.String()
	if strings.Contains(out, "Updated") || strings.Contains(out, "Failed") {
		t.Fatalf("expected zero counts omitted, got:\n%s", out)
	}
}

func TestPrintOutcome_SequentialTotalsAndVerdict(t *testing.T) {
	outcome := &domain.RunOutcome{
		Strategy: domain.StrategySequential,
		Results: []domain.ImportResult{
			{Category: domain.CategoryAttendees, Imported: 3, Updated: 1},
			{Category: domain.CategorySessions, Failure: "connection refused"},
		},
	}

	var buf bytes.Buffer
	New(&buf, false).PrintOutcome(outcome)
	out := buf.String()

	if !strings.Contains(out, "CATEGORY") {
		t.Fatalf("expected totals table, got:\n%s", out)
	}
	if !strings.Contains(out, "call failed") {
		t.Fatalf("expected failed call marked in totals, got:\n%s", out)
	}
	if !strings.Contains(out, "Import completed with errors") {
		t.Fatalf("expected mixed-result verdict, got:\n%s", out)
	}
}

func TestPrintOutcome_AtomicSummary(t *testing.T) {
	outcome := &domain.RunOutcome{
		Strategy:       domain.StrategyAtomic,
		Summary:        []byte(`{"attendees":12}`),
		OverallSuccess: true,
	}

	var buf bytes.Buffer
	New(&buf, false).PrintOutcome(outcome)
	out := buf.String()

	if !strings.Contains(out, `"attendees": 12`) {
		t.Fatalf("expected pretty-printed summary, got:\n%s", out)
	}
	if !strings.Contains(out, "Import complete") {
		t.Fatalf("expected success verdict, got:\n%s", out)
	}
}

func TestColorToggle(t *testing.T) {
	var plain, colored bytes.Buffer
	res := &domain.ImportResult{Category: domain.CategoryAttendees, Imported: 1}

	New(&plain, false).PrintResult(res)
	New(&colored, true).PrintResult(res)

	if strings.Contains(plain.String(), "\033[") {
		t.Fatal("expected no ANSI codes without color")
	}
	if !strings.Contains(colored.String(), "\033[92m") {
		t.Fatal("expected ANSI codes with color")
	}
}
