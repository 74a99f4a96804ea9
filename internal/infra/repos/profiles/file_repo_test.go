package profiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/convergenps/sheetctl/internal/domain"
)

func writeProfile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileRepository_LoadYAMLProfile(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "staging.yaml", `
id: staging
name: Staging import
endpoint: https://staging.example.com/api/v1
strategy: sequential
categories: [attendees, sessions]
inter_call_delay_ms: 500
sheets:
  attendees: "1292185526816644"
`)

	repo := NewFileRepository(dir)
	p, err := repo.Get("staging")
	if err != nil {
		t.Fatal(err)
	}

	if p.Endpoint != "https://staging.example.com/api/v1" {
		t.Fatalf("unexpected endpoint: %q", p.Endpoint)
	}
	if len(p.Categories) != 2 || p.Categories[0] != domain.CategoryAttendees {
		t.Fatalf("unexpected categories: %v", p.Categories)
	}
	if p.InterCallDelay().Milliseconds() != 500 {
		t.Fatalf("unexpected delay: %v", p.InterCallDelay())
	}
	if p.Sheets["attendees"] != "1292185526816644" {
		t.Fatalf("unexpected sheets: %v", p.Sheets)
	}
}

func TestFileRepository_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeProfile(t, dir, "minimal.yaml", `
name: minimal
endpoint: http://localhost:3000/api/v1
`)

	p, err := NewFileRepository(dir).GetByPath(path)
	if err != nil {
		t.Fatal(err)
	}

	if p.ID != "minimal.yaml" {
		t.Fatalf("expected filename fallback id, got %q", p.ID)
	}
	if p.Strategy != domain.StrategySequential {
		t.Fatalf("expected sequential default, got %q", p.Strategy)
	}
	if len(p.Categories) != len(domain.SupportedCategories()) {
		t.Fatalf("expected full category default, got %v", p.Categories)
	}
	if p.InterCallDelay().Seconds() != 1 {
		t.Fatalf("expected one second default delay, got %v", p.InterCallDelay())
	}
}

func TestFileRepository_JSONProfile(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "prod.json", `{"id":"prod","name":"Prod","endpoint":"https://prod.example.com/api/v1","strategy":"atomic"}`)

	p, err := NewFileRepository(dir).Get("prod")
	if err != nil {
		t.Fatal(err)
	}
	if p.Strategy != domain.StrategyAtomic {
		t.Fatalf("unexpected strategy: %q", p.Strategy)
	}
}

func TestFileRepository_MissingDirIsEmpty(t *testing.T) {
	list, err := NewFileRepository("./does-not-exist").List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}

func TestFileRepository_UnknownProfile(t *testing.T) {
	if _, err := NewFileRepository(t.TempDir()).Get("nope"); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}
