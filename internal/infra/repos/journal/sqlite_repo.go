package journal

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/convergenps/sheetctl/internal/domain"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Repository journals completed runs. It is a write-only sink from the
// driver's point of view; only the runs subcommands read it back.
type Repository interface {
	Init() error
	Record(rec *domain.RunRecord) error
	Get(id string) (*domain.RunRecord, error)
	List(limit int) ([]*domain.RunRecord, error)
}

type SQLiteRepository struct {
	dbPath string
	db     *sql.DB
}

func NewSQLiteRepository(dbPath string) *SQLiteRepository {
	return &SQLiteRepository{dbPath: dbPath}
}

func (r *SQLiteRepository) Init() error {
	db, err := sql.Open("sqlite3", r.dbPath)
	if err != nil {
		return err
	}
	r.db = db

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		profile_name TEXT NOT NULL,
		endpoint TEXT NOT NULL,
		strategy TEXT NOT NULL,
		overall_success INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP,
		results TEXT,
		error TEXT
	)`

	_, err = r.db.Exec(createTableSQL)
	return err
}

func (r *SQLiteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// NewRecord converts a finished outcome into its journal row.
func NewRecord(profileName, endpoint string, outcome *domain.RunOutcome) *domain.RunRecord {
	payload, _ := json.Marshal(struct {
		Results []domain.ImportResult `json:"results,omitempty"`
		Summary json.RawMessage       `json:"summary,omitempty"`
	}{Results: outcome.Results, Summary: outcome.Summary})

	completed := outcome.CompletedAt
	return &domain.RunRecord{
		ProfileName:    profileName,
		Endpoint:       endpoint,
		Strategy:       outcome.Strategy,
		OverallSuccess: outcome.OverallSuccess,
		StartedAt:      outcome.StartedAt,
		CompletedAt:    &completed,
		Results:        payload,
		Error:          outcome.Error,
	}
}

func (r *SQLiteRepository) Record(rec *domain.RunRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	var completedAt interface{}
	if rec.CompletedAt != nil {
		completedAt = rec.CompletedAt.Format(time.RFC3339)
	}

	query := `
		INSERT INTO runs (
			id, profile_name, endpoint, strategy,
			overall_success, started_at, completed_at, results, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		rec.ID, rec.ProfileName, rec.Endpoint, rec.Strategy,
		rec.OverallSuccess, rec.StartedAt.Format(time.RFC3339), completedAt,
		string(rec.Results), rec.Error,
	)
	return err
}

func (r *SQLiteRepository) Get(id string) (*domain.RunRecord, error) {
	query := `
		SELECT id, profile_name, endpoint, strategy,
		       overall_success, started_at, completed_at, results, error
		FROM runs WHERE id = ?
	`

	rec, err := scanRecord(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *SQLiteRepository) List(limit int) ([]*domain.RunRecord, error) {
	query := `
		SELECT id, profile_name, endpoint, strategy,
		       overall_success, started_at, completed_at, results, error
		FROM runs
		ORDER BY started_at DESC
	`
	args := make([]interface{}, 0)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.RunRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*domain.RunRecord, error) {
	var rec domain.RunRecord
	var startedAtStr string
	var completedAtStr sql.NullString
	var resultsStr sql.NullString
	var errorStr sql.NullString

	err := row.Scan(
		&rec.ID, &rec.ProfileName, &rec.Endpoint, &rec.Strategy,
		&rec.OverallSuccess, &startedAtStr, &completedAtStr, &resultsStr, &errorStr,
	)
	if err != nil {
		return nil, err
	}

	rec.StartedAt, _ = time.Parse(time.RFC3339, startedAtStr)
	if completedAtStr.Valid {
		t, _ := time.Parse(time.RFC3339, completedAtStr.String)
		rec.CompletedAt = &t
	}
	if resultsStr.Valid {
		rec.Results = json.RawMessage(resultsStr.String)
	}
	if errorStr.Valid {
		rec.Error = errorStr.String
	}

	return &rec, nil
}
