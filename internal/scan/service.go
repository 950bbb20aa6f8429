package scan

import (
	"context"
	"fmt"
	"time"

	"gocampus/internal/student"
)

// Decision is the access verdict derived from a resolved student's fee
// status. The duplicate flag never changes the verdict; it rides along so
// boarding staff can spot a possible re-entry attempt.
type Decision struct {
	Granted   bool
	Message   string
	Duplicate bool
}

// Result is the outcome of a verify request.
type Result struct {
	Outcome  Outcome
	Decision Decision
}

// Service composes resolution, the duplicate guard and the access decision.
type Service struct {
	resolver *Resolver
	guard    *Guard
}

// NewService wires the verify pipeline.
func NewService(resolver *Resolver, guard *Guard) *Service {
	return &Service{resolver: resolver, guard: guard}
}

// Verify resolves the scanner query and, for a single match, records the
// scan and derives the access decision.
func (s *Service) Verify(ctx context.Context, query string, now time.Time) (Result, error) {
	outcome, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return Result{}, err
	}
	res := Result{Outcome: outcome}
	if outcome.Kind != Single {
		return res, nil
	}

	verdict, err := s.guard.CheckAndRecord(ctx, outcome.Student.StudentID, now)
	if err != nil {
		return Result{}, fmt.Errorf("scan log: %w", err)
	}
	res.Decision = Decide(*outcome.Student)
	res.Decision.Duplicate = verdict == Duplicate
	return res, nil
}

// Decide derives the access message from the fee-paid flag alone.
func Decide(rec student.Student) Decision {
	if !rec.FeePaid {
		return Decision{
			Granted: false,
			Message: fmt.Sprintf("Access Denied — %s has NOT paid.", rec.Name),
		}
	}
	if rec.AmountPaid != nil {
		return Decision{
			Granted: true,
			Message: fmt.Sprintf("Access Granted — %s has paid ₹%s.", rec.Name, student.FormatAmount(*rec.AmountPaid)),
		}
	}
	return Decision{
		Granted: true,
		Message: fmt.Sprintf("Access Granted — %s has paid.", rec.Name),
	}
}
