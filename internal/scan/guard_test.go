package scan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memScanLog mimics the insert-or-reject semantics of the unique constraint.
type memScanLog struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemScanLog() *memScanLog {
	return &memScanLog{seen: make(map[string]bool)}
}

func (l *memScanLog) RecordOnce(_ context.Context, studentID string, at time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := studentID + "|" + at.Format("2006-01-02")
	if l.seen[key] {
		return false, nil
	}
	l.seen[key] = true
	return true, nil
}

func TestGuardFreshThenDuplicate(t *testing.T) {
	g := NewGuard(newMemScanLog())
	day := time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC)

	v, err := g.CheckAndRecord(context.Background(), "S01", day)
	require.NoError(t, err)
	assert.Equal(t, Fresh, v)

	v, err = g.CheckAndRecord(context.Background(), "S01", day.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, Duplicate, v)
}

func TestGuardNewDateIsFresh(t *testing.T) {
	g := NewGuard(newMemScanLog())
	day1 := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)

	v, err := g.CheckAndRecord(context.Background(), "S01", day1)
	require.NoError(t, err)
	assert.Equal(t, Fresh, v)

	v, err = g.CheckAndRecord(context.Background(), "S01", day2)
	require.NoError(t, err)
	assert.Equal(t, Fresh, v)
}

func TestGuardIndependentStudents(t *testing.T) {
	g := NewGuard(newMemScanLog())
	day := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	v, err := g.CheckAndRecord(context.Background(), "S01", day)
	require.NoError(t, err)
	assert.Equal(t, Fresh, v)

	v, err = g.CheckAndRecord(context.Background(), "S02", day)
	require.NoError(t, err)
	assert.Equal(t, Fresh, v)
}

func TestGuardAtMostOneFreshUnderConcurrency(t *testing.T) {
	g := NewGuard(newMemScanLog())
	day := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	const n = 50
	var wg sync.WaitGroup
	fresh := make(chan Verdict, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := g.CheckAndRecord(context.Background(), "S01", day)
			assert.NoError(t, err)
			fresh <- v
		}()
	}
	wg.Wait()
	close(fresh)

	count := 0
	for v := range fresh {
		if v == Fresh {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
