package adminsetup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// Granter promotes an existing profile to the admin role, directly in the
// application database. This is the one collaborator that bypasses the
// backend's HTTP surface; the import run itself never touches storage.
type Granter struct {
	db *sql.DB
}

type Result struct {
	UserID       string
	FullName     string
	Email        string
	AlreadyAdmin bool
}

func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("database DSN is required (set SHEETCTL_DB)")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func NewGranter(db *sql.DB) *Granter {
	return &Granter{db: db}
}

// GrantAdmin sets the user's role to admin and appends a role-history audit
// row. Granting to an existing admin is a no-op reported via AlreadyAdmin.
func (g *Granter) GrantAdmin(ctx context.Context, email, note string) (*Result, error) {
	res := &Result{Email: email}

	err := g.db.QueryRowContext(ctx,
		`SELECT id, full_name FROM profiles WHERE email = $1`, email,
	).Scan(&res.UserID, &res.FullName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s not found; register the user first", email)
	}
	if err != nil {
		return nil, err
	}

	var existing string
	err = g.db.QueryRowContext(ctx,
		`SELECT role FROM user_roles WHERE user_id = $1 AND role = 'admin'`, res.UserID,
	).Scan(&existing)
	if err == nil {
		res.AlreadyAdmin = true
		return res, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE user_roles SET role = 'admin' WHERE user_id = $1`, res.UserID,
	); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_role_history (id, user_id, role, action, changed_by, changed_at, notes)
		 VALUES ($1, $2, 'admin', 'added', $2, $3, $4)`,
		uuid.NewString(), res.UserID, time.Now().UTC(), note,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}
