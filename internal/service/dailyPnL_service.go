package service

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/pocketprofit-ledger/internal/model"
	"github.com/ndewijer/pocketprofit-ledger/internal/repository"
)

// DailyPnLService implements the day-rollover rules of the daily realized P&L record.
//
// The record is either absent or holds a (date, value) pair. A record dated
// before today is stale: reading it rolls it over to (today, 0), posting a gain
// to it seeds the new day with that gain. The service does no locking of its
// own; LedgerService serializes every call.
type DailyPnLService struct {
	dailyPnLRepo *repository.DailyPnLRepository
}

// NewDailyPnLService creates a new DailyPnLService with the provided repository dependencies.
func NewDailyPnLService(dailyPnLRepo *repository.DailyPnLRepository) *DailyPnLService {
	return &DailyPnLService{
		dailyPnLRepo: dailyPnLRepo,
	}
}

// WithTx returns a DailyPnLService whose reads and writes run inside tx.
func (s *DailyPnLService) WithTx(tx *sql.Tx) *DailyPnLService {
	return &DailyPnLService{
		dailyPnLRepo: s.dailyPnLRepo.WithTx(tx),
	}
}

// RecordedValueFor returns today's realized P&L.
// A stale record is overwritten with (today, 0) before zero is returned, so a
// caller on a new day never sees the previous day's figure.
func (s *DailyPnLService) RecordedValueFor(ctx context.Context, today string) (decimal.Decimal, error) {
	record, ok, err := s.dailyPnLRepo.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return decimal.Zero, nil
	}
	if record.Date == today {
		return record.Value, nil
	}

	if err := s.dailyPnLRepo.Put(ctx, model.DailyPnL{Date: today, Value: decimal.Zero}); err != nil {
		return decimal.Zero, err
	}
	return decimal.Zero, nil
}

// AddRealizedGain posts delta to today's realized P&L and returns the new value.
// A stale record is replaced by (today, delta) rather than reset to zero first.
func (s *DailyPnLService) AddRealizedGain(ctx context.Context, today string, delta decimal.Decimal) (decimal.Decimal, error) {
	record, ok, err := s.dailyPnLRepo.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	next := model.DailyPnL{Date: today, Value: delta}
	if ok && record.Date == today {
		next.Value = record.Value.Add(delta)
	}

	if err := s.dailyPnLRepo.Put(ctx, next); err != nil {
		return decimal.Zero, err
	}
	return next.Value, nil
}

// CurrentValue returns the stored value without checking its date.
func (s *DailyPnLService) CurrentValue(ctx context.Context) (decimal.Decimal, error) {
	record, ok, err := s.dailyPnLRepo.Get(ctx)
	if err != nil || !ok {
		return decimal.Zero, err
	}
	return record.Value, nil
}

// Record returns the raw record, for diagnostics and tests.
func (s *DailyPnLService) Record(ctx context.Context) (model.DailyPnL, bool, error) {
	return s.dailyPnLRepo.Get(ctx)
}

// Clear removes the record.
func (s *DailyPnLService) Clear(ctx context.Context) error {
	return s.dailyPnLRepo.Delete(ctx)
}
