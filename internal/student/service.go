package student

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrValidation marks malformed registration or payment input.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate marks a registration that collides with an existing student.
	ErrDuplicate = errors.New("student already registered")
)

// Service coordinates registration, payments and pass renewal.
type Service struct {
	repo         *Repository
	feeAmount    int
	validityDays int
	alertDays    int
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository, feeAmount, validityDays, alertDays int) *Service {
	return &Service{repo: repo, feeAmount: feeAmount, validityDays: validityDays, alertDays: alertDays}
}

// RegisterInput is the admin-supplied registration form.
type RegisterInput struct {
	Name          string
	BusID         string
	FeePaid       bool
	AmountPaid    int
	ParentContact string
	Semester      string
	Branch        string
	Email         string
}

// ValidateBusID checks the transport route designation.
func ValidateBusID(busID string) error {
	if busID == "" {
		return fmt.Errorf("%w: bus number is required", ErrValidation)
	}
	for _, r := range busID {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: bus number must contain only digits", ErrValidation)
		}
	}
	return nil
}

// ValidatePhone accepts an empty contact or exactly 10 digits that are not
// all the same digit.
func ValidatePhone(phone string) error {
	digits := NormalizePhone(phone)
	if digits == "" {
		return nil
	}
	if len(digits) != 10 {
		return fmt.Errorf("%w: phone number must be exactly 10 digits", ErrValidation)
	}
	first := digits[0]
	repeated := true
	for i := 1; i < len(digits); i++ {
		if digits[i] != first {
			repeated = false
			break
		}
	}
	if repeated {
		return fmt.Errorf("%w: phone number cannot use repeated digits", ErrValidation)
	}
	return nil
}

// NextStudentID produces the next identifier in the "S" + zero-padded
// sequence, always at least two digits wide.
func (s *Service) NextStudentID(ctx context.Context) (string, error) {
	next, err := s.repo.NextSequence(ctx)
	if err != nil {
		return "", err
	}
	return FormatStudentID(next), nil
}

// FormatStudentID renders a sequence number as an identifier.
func FormatStudentID(seq int) string {
	return fmt.Sprintf("S%02d", seq)
}

// ParseStudentID extracts the sequence number from an identifier.
func ParseStudentID(id string) (int, bool) {
	if len(id) < 2 || (id[0] != 'S' && id[0] != 's') {
		return 0, false
	}
	n, err := strconv.Atoi(id[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Register validates the form, allocates an identifier and inserts the record.
// The QR artifact is generated asynchronously once the record exists.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Student, error) {
	if in.Name == "" {
		return Student{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := ValidateBusID(in.BusID); err != nil {
		return Student{}, err
	}
	if err := ValidatePhone(in.ParentContact); err != nil {
		return Student{}, err
	}

	var contact *string
	if digits := NormalizePhone(in.ParentContact); digits != "" {
		stored := "+91" + digits
		contact = &stored
		exists, err := s.repo.ExistsByNameAndPhone(ctx, in.Name, stored)
		if err != nil {
			return Student{}, err
		}
		if exists {
			return Student{}, fmt.Errorf("%w: same name and phone", ErrDuplicate)
		}
	}

	now := time.Now()
	validTill := now.AddDate(0, 0, s.validityDays)
	rec := Student{
		Name:             in.Name,
		BusID:            in.BusID,
		ParentContact:    contact,
		RegistrationDate: now,
		ValidTill:        &validTill,
		ActiveTransport:  true,
	}
	if in.Semester != "" {
		rec.Semester = &in.Semester
		if sem, err := strconv.Atoi(in.Semester); err == nil {
			rec.CurrentSem = &sem
		}
	}
	if rec.CurrentSem == nil {
		one := 1
		rec.CurrentSem = &one
	}
	if in.Branch != "" {
		rec.Branch = &in.Branch
	}
	if in.Email != "" {
		rec.Email = &in.Email
	}
	if in.FeePaid {
		if in.AmountPaid != s.feeAmount {
			return Student{}, fmt.Errorf("%w: amount must be exactly ₹%s", ErrValidation, FormatAmount(s.feeAmount))
		}
		rec.FeePaid = true
		rec.AmountPaid = &in.AmountPaid
		rec.TransactionDate = &now
	}

	id, err := s.NextStudentID(ctx)
	if err != nil {
		return Student{}, err
	}
	rec.StudentID = id

	return s.repo.Insert(ctx, rec)
}

// MarkPaid records a transport fee payment dated today.
func (s *Service) MarkPaid(ctx context.Context, studentID string, amount int) error {
	if amount != s.feeAmount {
		return fmt.Errorf("%w: amount must be exactly ₹%s", ErrValidation, FormatAmount(s.feeAmount))
	}
	return s.repo.MarkPaid(ctx, studentID, amount, time.Now())
}

// Renew extends the pass by the validity window from today.
func (s *Service) Renew(ctx context.Context, studentID string) (time.Time, error) {
	rec, err := s.repo.FindByStudentID(ctx, studentID)
	if err != nil {
		return time.Time{}, err
	}
	next := time.Now().AddDate(0, 0, s.validityDays)
	if err := s.repo.Renew(ctx, rec.StudentID, rec.ValidTill, next); err != nil {
		return time.Time{}, err
	}
	return next, nil
}

// RenewalAlerts flags students whose pass expires within the alert window.
func (s *Service) RenewalAlerts(students []Student, now time.Time) []RenewalAlert {
	var alerts []RenewalAlert
	for _, st := range students {
		till := st.EffectiveValidTill(s.validityDays)
		daysLeft := int(till.Sub(now).Hours() / 24)
		if daysLeft <= s.alertDays {
			alerts = append(alerts, RenewalAlert{
				StudentID: st.StudentID,
				Name:      st.Name,
				ValidTill: FormatDate(till),
				IsExpired: daysLeft < 0,
			})
		}
	}
	return alerts
}
