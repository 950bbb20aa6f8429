package scan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocampus/internal/student"
)

func newTestService(students ...student.Student) *Service {
	resolver := NewResolver(&memDirectory{students: students}, DefaultConfig())
	return NewService(resolver, NewGuard(newMemScanLog()))
}

func TestVerifyGranted(t *testing.T) {
	amount := 15000
	paid := rec("S01", "Aarav Mehta", "1", true)
	paid.AmountPaid = &amount

	svc := newTestService(paid)
	res, err := svc.Verify(context.Background(), "s01", time.Now())
	require.NoError(t, err)

	require.Equal(t, Single, res.Outcome.Kind)
	assert.True(t, res.Decision.Granted)
	assert.Contains(t, res.Decision.Message, "Access Granted")
	assert.Contains(t, res.Decision.Message, "₹15,000")
	assert.False(t, res.Decision.Duplicate)
}

func TestVerifyDenied(t *testing.T) {
	svc := newTestService(rec("S02", "Diya Patel", "2", false))

	res, err := svc.Verify(context.Background(), "diya", time.Now())
	require.NoError(t, err)

	require.Equal(t, Single, res.Outcome.Kind)
	assert.False(t, res.Decision.Granted)
	assert.Contains(t, res.Decision.Message, "Access Denied")
	assert.Contains(t, res.Decision.Message, "Diya Patel")
}

func TestVerifyDuplicateKeepsDecision(t *testing.T) {
	svc := newTestService(rec("S01", "Aarav Mehta", "1", true))
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	first, err := svc.Verify(context.Background(), "S01", now)
	require.NoError(t, err)
	assert.False(t, first.Decision.Duplicate)

	second, err := svc.Verify(context.Background(), "S01", now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, second.Decision.Duplicate)
	// The duplicate flag is advisory; the decision itself is unchanged.
	assert.Equal(t, first.Decision.Granted, second.Decision.Granted)
	assert.Equal(t, first.Decision.Message, second.Decision.Message)
}

func TestVerifyAmbiguousSkipsGuard(t *testing.T) {
	svc := newTestService(
		rec("S01", "Aarav Mehta", "5", true),
		rec("S02", "Diya Patel", "5", false),
	)
	now := time.Now()

	res, err := svc.Verify(context.Background(), "5", now)
	require.NoError(t, err)
	assert.Equal(t, Ambiguous, res.Outcome.Kind)

	// No scan was recorded, so a later precise scan is still Fresh.
	res, err = svc.Verify(context.Background(), "S01", now)
	require.NoError(t, err)
	require.Equal(t, Single, res.Outcome.Kind)
	assert.False(t, res.Decision.Duplicate)
}

func TestDecideWithoutAmount(t *testing.T) {
	d := Decide(rec("S03", "Rohan Iyer", "3", true))
	assert.True(t, d.Granted)
	assert.Equal(t, "Access Granted — Rohan Iyer has paid.", d.Message)
}
