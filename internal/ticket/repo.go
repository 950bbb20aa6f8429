package ticket

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a ticket id matches nothing.
var ErrNotFound = errors.New("ticket not found")

// Repository persists help tickets in Postgres.
type Repository struct {
	db        *sql.DB
	retention time.Duration
}

// NewRepository creates a repo. Tickets resolved longer than retention ago
// are pruned on each listing and on dashboard load.
func NewRepository(db *sql.DB, retention time.Duration) *Repository {
	if retention <= 0 {
		retention = 5 * 24 * time.Hour
	}
	return &Repository{db: db, retention: retention}
}

// Create opens a ticket.
func (r *Repository) Create(ctx context.Context, t Ticket) (Ticket, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.Status = StatusOpen
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO help_tickets (id, name, usn, email, issue, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, t.ID, t.Name, t.USN, t.Email, t.Issue, t.Status)
	if err := row.Scan(&t.CreatedAt); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

// List prunes stale resolved tickets, then returns the rest newest first.
func (r *Repository) List(ctx context.Context) ([]Ticket, error) {
	if err := r.PruneResolved(ctx); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, usn, email, issue, status, created_at, resolved_at
		FROM help_tickets ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.Name, &t.USN, &t.Email, &t.Issue, &t.Status, &t.CreatedAt, &t.ResolvedAt); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// Resolve stamps a ticket resolved now.
func (r *Repository) Resolve(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE help_tickets SET status = $2, resolved_at = NOW() WHERE id = $1
	`, id, StatusResolved)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// PruneResolved deletes tickets resolved longer than the retention ago.
func (r *Repository) PruneResolved(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM help_tickets
		WHERE status = $1 AND resolved_at <= NOW() - ($2 * interval '1 second')
	`, StatusResolved, r.retention.Seconds())
	return err
}
