package scan

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Repository persists scan events in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// RecordOnce appends a scan event for (studentID, date of at). The unique
// constraint on (student_id, scan_date) turns a same-day repeat into a
// rejected insert rather than a second row.
func (r *Repository) RecordOnce(ctx context.Context, studentID string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO scan_log (id, student_id, scan_date, scan_time)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id, scan_date) DO NOTHING
	`, uuid.NewString(), studentID, at.Format("2006-01-02"), at.Format("15:04:05"))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
