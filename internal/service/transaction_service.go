package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/pocketprofit-ledger/internal/model"
	"github.com/ndewijer/pocketprofit-ledger/internal/repository"
)

// TransactionService handles the append-only transaction log.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
}

// NewTransactionService creates a new TransactionService with the provided repository dependencies.
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
	}
}

// WithTx returns a TransactionService whose writes run inside tx.
func (s *TransactionService) WithTx(tx *sql.Tx) *TransactionService {
	return &TransactionService{
		transactionRepo: s.transactionRepo.WithTx(tx),
	}
}

// Append records an executed order and returns it with its id and order id assigned.
func (s *TransactionService) Append(ctx context.Context, rec model.TransactionRecord) (model.TransactionRecord, error) {
	if !rec.Kind.Valid() {
		return model.TransactionRecord{}, fmt.Errorf("failed to append transaction: unknown order kind %q", rec.Kind)
	}
	return s.transactionRepo.Append(ctx, rec)
}

// All returns the full log, newest first.
func (s *TransactionService) All(ctx context.Context) ([]model.TransactionRecord, error) {
	return s.transactionRepo.All(ctx)
}

// AllForSymbol returns the log entries of symbol, newest first.
func (s *TransactionService) AllForSymbol(ctx context.Context, symbol string) ([]model.TransactionRecord, error) {
	return s.transactionRepo.AllForSymbol(ctx, symbol)
}

// IsEmpty reports whether no order has ever been recorded.
func (s *TransactionService) IsEmpty(ctx context.Context) (bool, error) {
	count, err := s.transactionRepo.Count(ctx, "")
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// HasHistory reports whether symbol has ever been traded, including fully sold positions.
func (s *TransactionService) HasHistory(ctx context.Context, symbol string) (bool, error) {
	count, err := s.transactionRepo.Count(ctx, symbol)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteAll empties the log.
func (s *TransactionService) DeleteAll(ctx context.Context) error {
	return s.transactionRepo.DeleteAll(ctx)
}

// Filter returns the log entries, newest first, that pass filters.
// An empty symbol lists every symbol.
func (s *TransactionService) Filter(ctx context.Context, symbol string, filters model.TransactionFilters) ([]model.TransactionRecord, error) {
	var (
		all []model.TransactionRecord
		err error
	)
	if symbol == "" {
		all, err = s.transactionRepo.All(ctx)
	} else {
		all, err = s.transactionRepo.AllForSymbol(ctx, symbol)
	}
	if err != nil {
		return nil, err
	}

	matched := []model.TransactionRecord{}
	for _, t := range all {
		if !filters.Match(t) {
			continue
		}
		matched = append(matched, t)
		if filters.Limit > 0 && len(matched) == filters.Limit {
			break
		}
	}
	return matched, nil
}
