package student

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup matches no student.
var ErrNotFound = errors.New("student not found")

const studentColumns = `id, student_id, name, bus_id, fee_paid, parent_contact, semester,
	branch, amount_paid, transaction_date, email, photo_url, registration_date,
	valid_till, current_sem, is_active_transport, qr_url, created_at`

// Repository persists student records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanStudent(row interface{ Scan(...any) error }) (Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.StudentID, &s.Name, &s.BusID, &s.FeePaid,
		&s.ParentContact, &s.Semester, &s.Branch, &s.AmountPaid, &s.TransactionDate,
		&s.Email, &s.PhotoURL, &s.RegistrationDate, &s.ValidTill, &s.CurrentSem,
		&s.ActiveTransport, &s.QRURL, &s.CreatedAt)
	return s, err
}

func (r *Repository) queryStudents(ctx context.Context, query string, args ...any) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// FindByStudentID returns the student with the given identifier, matched
// case-insensitively. Returns ErrNotFound when absent.
func (r *Repository) FindByStudentID(ctx context.Context, studentID string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+studentColumns+`
		FROM students WHERE LOWER(student_id) = LOWER($1)
	`, studentID)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByBusID returns students assigned to the exact bus number.
func (r *Repository) FindByBusID(ctx context.Context, busID string, limit int) ([]Student, error) {
	return r.queryStudents(ctx, `
		SELECT `+studentColumns+`
		FROM students WHERE bus_id = $1 ORDER BY student_id LIMIT $2
	`, busID, limit)
}

// FindByBusIDSubstring returns students whose bus number contains the query.
func (r *Repository) FindByBusIDSubstring(ctx context.Context, busID string, limit int) ([]Student, error) {
	return r.queryStudents(ctx, `
		SELECT `+studentColumns+`
		FROM students WHERE bus_id LIKE '%' || $1 || '%' ORDER BY student_id LIMIT $2
	`, busID, limit)
}

// FindByNameExact returns students whose display name matches case-insensitively.
func (r *Repository) FindByNameExact(ctx context.Context, name string, limit int) ([]Student, error) {
	return r.queryStudents(ctx, `
		SELECT `+studentColumns+`
		FROM students WHERE LOWER(name) = LOWER($1) ORDER BY student_id LIMIT $2
	`, name, limit)
}

// FindByNameSubstring returns students whose display name contains the query,
// case-insensitively.
func (r *Repository) FindByNameSubstring(ctx context.Context, name string, limit int) ([]Student, error) {
	return r.queryStudents(ctx, `
		SELECT `+studentColumns+`
		FROM students WHERE LOWER(name) LIKE '%' || LOWER($1) || '%' ORDER BY student_id LIMIT $2
	`, name, limit)
}

// FindByPhone returns the student registered with the normalized contact.
func (r *Repository) FindByPhone(ctx context.Context, contact string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+studentColumns+`
		FROM students WHERE parent_contact = $1
	`, contact)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ExistsByNameAndPhone reports whether a student with the same name and
// contact is already registered.
func (r *Repository) ExistsByNameAndPhone(ctx context.Context, name, contact string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM students
		WHERE LOWER(name) = LOWER($1) AND parent_contact = $2
	`, name, contact).Scan(&count)
	return count > 0, err
}

// NextSequence returns the highest numeric identifier suffix currently in use.
func (r *Repository) NextSequence(ctx context.Context) (int, error) {
	var last int
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(CAST(SUBSTRING(student_id FROM 2) AS INTEGER)), 0)
		FROM students WHERE student_id ~ '^S[0-9]+$'
	`).Scan(&last)
	return last + 1, err
}

// Insert writes a new student record.
func (r *Repository) Insert(ctx context.Context, s Student) (Student, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO students (
			id, student_id, name, bus_id, fee_paid, parent_contact, semester,
			branch, amount_paid, transaction_date, email, photo_url,
			registration_date, valid_till, current_sem, is_active_transport, qr_url
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING created_at
	`, s.ID, s.StudentID, s.Name, s.BusID, s.FeePaid, s.ParentContact, s.Semester,
		s.Branch, s.AmountPaid, s.TransactionDate, s.Email, s.PhotoURL,
		s.RegistrationDate, s.ValidTill, s.CurrentSem, s.ActiveTransport, s.QRURL)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return Student{}, err
	}
	return s, nil
}

// List returns all students ordered by identifier.
func (r *Repository) List(ctx context.Context) ([]Student, error) {
	return r.queryStudents(ctx, `
		SELECT `+studentColumns+`
		FROM students ORDER BY student_id
	`)
}

// Search runs the admin free-text search: one LIKE across identifier, name
// and bus number.
func (r *Repository) Search(ctx context.Context, q string, limit int) ([]Student, error) {
	return r.queryStudents(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE LOWER(student_id) LIKE '%' || LOWER($1) || '%'
		   OR LOWER(name) LIKE '%' || LOWER($1) || '%'
		   OR bus_id LIKE '%' || $1 || '%'
		ORDER BY student_id LIMIT $2
	`, q, limit)
}

// MarkPaid records a fee payment.
func (r *Repository) MarkPaid(ctx context.Context, studentID string, amount int, date time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE students
		SET fee_paid = TRUE, amount_paid = $2, transaction_date = $3
		WHERE student_id = $1
	`, studentID, amount, date)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Renew extends the validity window and appends a renewal history row.
func (r *Repository) Renew(ctx context.Context, studentID string, prev *time.Time, next time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE students SET valid_till = $2 WHERE student_id = $1
	`, studentID, next)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO renewal_history (id, student_id, renewed_date, previous_valid_till, new_valid_till)
		VALUES ($1, $2, CURRENT_DATE, $3, $4)
	`, uuid.NewString(), studentID, prev, next); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateQRRef stores the artifact reference for a generated QR image.
func (r *Repository) UpdateQRRef(ctx context.Context, studentID, ref string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE students SET qr_url = $2 WHERE student_id = $1
	`, studentID, ref)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdatePhotoRef stores the uploaded photo reference.
func (r *Repository) UpdatePhotoRef(ctx context.Context, studentID, ref string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE students SET photo_url = $2 WHERE student_id = $1
	`, studentID, ref)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a student. Associated renewal history goes with the row.
func (r *Repository) Delete(ctx context.Context, studentID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE student_id = $1`, studentID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
