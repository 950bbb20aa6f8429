package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gocampus/internal/student"
)

// ErrEmptyQuery is returned when the scanner submits a blank query.
var ErrEmptyQuery = errors.New("no student identifier provided")

// Directory is the record-store view the resolver needs. *student.Repository
// satisfies it.
type Directory interface {
	FindByStudentID(ctx context.Context, studentID string) (*student.Student, error)
	FindByBusID(ctx context.Context, busID string, limit int) ([]student.Student, error)
	FindByBusIDSubstring(ctx context.Context, busID string, limit int) ([]student.Student, error)
	FindByNameExact(ctx context.Context, name string, limit int) ([]student.Student, error)
	FindByNameSubstring(ctx context.Context, name string, limit int) ([]student.Student, error)
}

// Tier identifies one step of the match strategy.
type Tier string

const (
	// TierIdentifier matches the student identifier, case-insensitively.
	TierIdentifier Tier = "identifier"
	// TierRoute matches the bus number, exact before substring. Applies only
	// to all-digit queries.
	TierRoute Tier = "route"
	// TierName matches the display name, exact before substring. Applies only
	// to queries that are not all digits.
	TierName Tier = "name"
)

// Config is the disambiguation policy: tier order and the candidate cap for
// ambiguous results. The scanner client depends on the ordering.
type Config struct {
	Tiers          []Tier
	CandidateLimit int
}

// DefaultConfig mirrors the behavior the boarding-point scanners expect:
// identifier lookups are authoritative, free-text names come last.
func DefaultConfig() Config {
	return Config{
		Tiers:          []Tier{TierIdentifier, TierRoute, TierName},
		CandidateLimit: 5,
	}
}

// OutcomeKind classifies a resolution.
type OutcomeKind int

const (
	// NotFound means every tier came up empty.
	NotFound OutcomeKind = iota
	// Single means exactly one student matched.
	Single
	// Ambiguous means a tier matched more than one student.
	Ambiguous
)

// Candidate is the disambiguation summary returned for ambiguous matches.
type Candidate struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	BusID     string `json:"bus_id"`
}

// Outcome is the result of resolving a scanner query.
type Outcome struct {
	Kind       OutcomeKind
	Student    *student.Student
	Candidates []Candidate
}

// Resolver maps free-text scanner input to student records using the tiered
// match strategy.
type Resolver struct {
	dir Directory
	cfg Config
}

// NewResolver creates a resolver over the directory.
func NewResolver(dir Directory, cfg Config) *Resolver {
	if len(cfg.Tiers) == 0 {
		cfg.Tiers = DefaultConfig().Tiers
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = DefaultConfig().CandidateLimit
	}
	return &Resolver{dir: dir, cfg: cfg}
}

// Resolve walks the configured tiers in order. The first tier that yields any
// candidates decides the outcome: one candidate is a Single, several are
// Ambiguous with at most CandidateLimit entries. A tier that yields nothing
// falls through to the next.
func (r *Resolver) Resolve(ctx context.Context, query string) (Outcome, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Outcome{}, ErrEmptyQuery
	}

	digits := allDigits(query)
	for _, tier := range r.cfg.Tiers {
		switch tier {
		case TierIdentifier:
			rec, err := r.dir.FindByStudentID(ctx, query)
			if errors.Is(err, student.ErrNotFound) {
				continue
			}
			if err != nil {
				return Outcome{}, fmt.Errorf("identifier lookup: %w", err)
			}
			return Outcome{Kind: Single, Student: rec}, nil

		case TierRoute:
			if !digits {
				continue
			}
			out, matched, err := r.tiered(ctx, query, r.dir.FindByBusID, r.dir.FindByBusIDSubstring)
			if err != nil {
				return Outcome{}, fmt.Errorf("route lookup: %w", err)
			}
			if matched {
				return out, nil
			}

		case TierName:
			if digits {
				continue
			}
			out, matched, err := r.tiered(ctx, query, r.dir.FindByNameExact, r.dir.FindByNameSubstring)
			if err != nil {
				return Outcome{}, fmt.Errorf("name lookup: %w", err)
			}
			if matched {
				return out, nil
			}
		}
	}
	return Outcome{Kind: NotFound}, nil
}

type lookup func(ctx context.Context, q string, limit int) ([]student.Student, error)

// tiered tries an exact lookup, then a substring lookup, and converts the
// first non-empty candidate set into an outcome.
func (r *Resolver) tiered(ctx context.Context, query string, exact, substr lookup) (Outcome, bool, error) {
	// One extra row distinguishes "exactly at the cap" from "over it" without
	// changing what the client sees.
	fetch := r.cfg.CandidateLimit + 1
	for _, fn := range []lookup{exact, substr} {
		recs, err := fn(ctx, query, fetch)
		if err != nil {
			return Outcome{}, false, err
		}
		switch {
		case len(recs) == 0:
			continue
		case len(recs) == 1:
			rec := recs[0]
			return Outcome{Kind: Single, Student: &rec}, true, nil
		default:
			if len(recs) > r.cfg.CandidateLimit {
				recs = recs[:r.cfg.CandidateLimit]
			}
			cands := make([]Candidate, 0, len(recs))
			for _, rec := range recs {
				cands = append(cands, Candidate{StudentID: rec.StudentID, Name: rec.Name, BusID: rec.BusID})
			}
			return Outcome{Kind: Ambiguous, Candidates: cands}, true, nil
		}
	}
	return Outcome{}, false, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
