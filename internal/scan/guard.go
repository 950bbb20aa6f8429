package scan

import (
	"context"
	"time"
)

// Verdict is the duplicate guard's answer for a scan attempt.
type Verdict int

const (
	// Fresh means this is the first decision for the student today.
	Fresh Verdict = iota
	// Duplicate means a decision was already issued for the student today.
	Duplicate
)

func (v Verdict) String() string {
	if v == Duplicate {
		return "duplicate"
	}
	return "fresh"
}

// ScanLog is the append-only log of (student, date) scan events.
// *Repository satisfies it.
type ScanLog interface {
	// RecordOnce inserts a scan event unless one already exists for the
	// student on that calendar date, and reports whether it inserted.
	RecordOnce(ctx context.Context, studentID string, at time.Time) (bool, error)
}

// Guard suppresses repeat access decisions for the same student on the same
// calendar day. The log's insert-or-reject semantics guarantee at most one
// Fresh verdict per (student, date) even under concurrent scans.
type Guard struct {
	log ScanLog
}

// NewGuard creates a guard over the scan log.
func NewGuard(log ScanLog) *Guard {
	return &Guard{log: log}
}

// CheckAndRecord records the scan and returns Fresh, or returns Duplicate
// without further mutation when the student was already scanned on at's date.
func (g *Guard) CheckAndRecord(ctx context.Context, studentID string, at time.Time) (Verdict, error) {
	inserted, err := g.log.RecordOnce(ctx, studentID, at)
	if err != nil {
		return Duplicate, err
	}
	if inserted {
		return Fresh, nil
	}
	return Duplicate, nil
}
