package store

import "context"

// Schema statements are idempotent so Migrate can run at every startup.
// The UNIQUE constraint on scan_log is what makes the same-day duplicate
// guard safe under concurrent scans: the insert is rejected instead of
// relying on a read-before-write check.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id UUID PRIMARY KEY,
		student_id TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		bus_id TEXT NOT NULL,
		fee_paid BOOLEAN NOT NULL DEFAULT FALSE,
		parent_contact TEXT,
		semester TEXT,
		branch TEXT,
		amount_paid INTEGER,
		transaction_date DATE,
		email TEXT,
		photo_url TEXT,
		registration_date DATE NOT NULL,
		valid_till DATE,
		current_sem INTEGER,
		is_active_transport BOOLEAN NOT NULL DEFAULT TRUE,
		qr_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS scan_log (
		id UUID PRIMARY KEY,
		student_id TEXT NOT NULL,
		scan_date DATE NOT NULL,
		scan_time TIME NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT scan_log_once_per_day UNIQUE (student_id, scan_date)
	)`,
	`CREATE TABLE IF NOT EXISTS help_tickets (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		usn TEXT NOT NULL,
		email TEXT NOT NULL,
		issue TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Open',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		resolved_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS renewal_history (
		id UUID PRIMARY KEY,
		student_id TEXT NOT NULL REFERENCES students(student_id) ON DELETE CASCADE,
		renewed_date DATE NOT NULL,
		previous_valid_till DATE,
		new_valid_till DATE NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_students_bus_id ON students (bus_id)`,
	`CREATE INDEX IF NOT EXISTS idx_students_name_lower ON students (LOWER(name))`,
}

// Migrate applies the schema.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.Client.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
