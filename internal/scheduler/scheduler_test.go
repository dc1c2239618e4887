package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/pocketprofit-ledger/internal/model"
)

type fakeJobs struct {
	mu         sync.Mutex
	refreshes  int
	rolledOver []string
	err        error
}

func (f *fakeJobs) RefreshMarks(context.Context) (model.MarkRefresh, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return model.MarkRefresh{}, f.err
}

func (f *fakeJobs) TodaysRealizedGain(_ context.Context, today string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rolledOver = append(f.rolledOver, today)
	return decimal.Zero, f.err
}

func TestNew(t *testing.T) {
	jobs := &fakeJobs{}
	today := func() string { return "2024-01-02" }

	t.Run("registers refresh and rollover", func(t *testing.T) {
		s, err := New(time.UTC, "@every 5m", jobs, jobs, today)
		if err != nil {
			t.Fatalf("New() returned unexpected error: %v", err)
		}
		if s.Entries() != 2 {
			t.Errorf("Expected 2 jobs, got %d", s.Entries())
		}
	})

	t.Run("empty refresh spec disables the refresh", func(t *testing.T) {
		s, err := New(time.UTC, "", jobs, jobs, today)
		if err != nil {
			t.Fatalf("New() returned unexpected error: %v", err)
		}
		if s.Entries() != 1 {
			t.Errorf("Expected only the rollover job, got %d", s.Entries())
		}
	})

	t.Run("rejects malformed spec", func(t *testing.T) {
		if _, err := New(time.UTC, "every tuesday", jobs, jobs, today); err == nil {
			t.Error("Expected error for malformed spec")
		}
	})
}

func TestJobs(t *testing.T) {
	jobs := &fakeJobs{}
	s, err := New(time.UTC, "", jobs, jobs, func() string { return "2024-01-02" })
	if err != nil {
		t.Fatalf("New() returned unexpected error: %v", err)
	}

	s.refreshJob(jobs)()
	s.rolloverJob(jobs)()

	// failures are logged, not propagated
	jobs.err = errors.New("database is locked")
	s.refreshJob(jobs)()
	s.rolloverJob(jobs)()

	if jobs.refreshes != 2 {
		t.Errorf("Expected 2 refreshes, got %d", jobs.refreshes)
	}
	if len(jobs.rolledOver) != 2 || jobs.rolledOver[0] != "2024-01-02" {
		t.Errorf("Expected rollover for 2024-01-02 twice, got %v", jobs.rolledOver)
	}
}

func TestStartStop(t *testing.T) {
	jobs := &fakeJobs{}
	s, err := New(time.UTC, "@every 1h", jobs, jobs, func() string { return "2024-01-02" })
	if err != nil {
		t.Fatalf("New() returned unexpected error: %v", err)
	}

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop() returned unexpected error: %v", err)
	}
}
