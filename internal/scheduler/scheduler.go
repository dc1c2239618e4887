// Package scheduler runs the periodic ledger jobs: re-marking held lots from
// fresh quotes and rolling the daily realized P&L over at midnight.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/pocketprofit-ledger/internal/model"
)

// RolloverSpec fires at midnight of the ledger time zone.
const RolloverSpec = "0 0 * * *"

// jobTimeout bounds a single job run.
const jobTimeout = 2 * time.Minute

// MarkRefresher re-marks every held symbol.
type MarkRefresher interface {
	RefreshMarks(ctx context.Context) (model.MarkRefresh, error)
}

// RealizedPnLRoller reads today's realized P&L, rolling a stale record over.
type RealizedPnLRoller interface {
	TodaysRealizedGain(ctx context.Context, today string) (decimal.Decimal, error)
}

// Scheduler owns the cron runner of the ledger jobs.
type Scheduler struct {
	cron  *cron.Cron
	today func() string
}

// New registers the mark refresh on refreshSpec and the P&L rollover at midnight of loc.
// An empty refreshSpec disables the mark refresh.
func New(loc *time.Location, refreshSpec string, refresher MarkRefresher, roller RealizedPnLRoller, today func() string) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	s := &Scheduler{cron: c, today: today}

	if refreshSpec != "" {
		if _, err := c.AddFunc(refreshSpec, s.refreshJob(refresher)); err != nil {
			return nil, fmt.Errorf("invalid mark refresh schedule %q: %w", refreshSpec, err)
		}
	}

	if _, err := c.AddFunc(RolloverSpec, s.rolloverJob(roller)); err != nil {
		return nil, fmt.Errorf("failed to schedule rollover: %w", err)
	}

	return s, nil
}

func (s *Scheduler) refreshJob(refresher MarkRefresher) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		refresh, err := refresher.RefreshMarks(ctx)
		if err != nil {
			slog.Warn("scheduled mark refresh failed", "err", err)
			return
		}
		slog.Info("scheduled mark refresh complete",
			"updated", len(refresh.Updated),
			"failed", len(refresh.Failed),
			"elapsed", time.Since(start),
		)
	}
}

func (s *Scheduler) rolloverJob(roller RealizedPnLRoller) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		today := s.today()
		if _, err := roller.TodaysRealizedGain(ctx, today); err != nil {
			slog.Error("daily realized P&L rollover failed", "date", today, "err", err)
			return
		}
		slog.Info("daily realized P&L rolled over", "date", today)
	}
}

// Start runs the jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
