package student

import "time"

// Student is a registered transport user. Identifier format is "S" followed
// by a zero-padded sequence number (S01, S02, ...).
type Student struct {
	ID               string     `json:"id"`
	StudentID        string     `json:"student_id"`
	Name             string     `json:"name"`
	BusID            string     `json:"bus_id"`
	FeePaid          bool       `json:"fee_paid"`
	ParentContact    *string    `json:"parent_contact,omitempty"`
	Semester         *string    `json:"semester,omitempty"`
	Branch           *string    `json:"branch,omitempty"`
	AmountPaid       *int       `json:"amount_paid,omitempty"`
	TransactionDate  *time.Time `json:"transaction_date,omitempty"`
	Email            *string    `json:"email,omitempty"`
	PhotoURL         *string    `json:"photo_url,omitempty"`
	RegistrationDate time.Time  `json:"registration_date"`
	ValidTill        *time.Time `json:"valid_till,omitempty"`
	CurrentSem       *int       `json:"current_sem,omitempty"`
	ActiveTransport  bool       `json:"is_active_transport"`
	QRURL            *string    `json:"qr_url,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// RenewalAlert flags a pass that expires within the alert window.
type RenewalAlert struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	ValidTill string `json:"valid_till"`
	IsExpired bool   `json:"is_expired"`
}

// EffectiveValidTill returns the pass expiry, falling back to the
// registration date plus the validity window when none was recorded.
func (s Student) EffectiveValidTill(validityDays int) time.Time {
	if s.ValidTill != nil {
		return *s.ValidTill
	}
	return s.RegistrationDate.AddDate(0, 0, validityDays)
}
