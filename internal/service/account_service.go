package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/pocketprofit-ledger/internal/repository"
)

// AccountService handles the cash balance, the join date and the watchlist.
type AccountService struct {
	accountRepo  *repository.AccountRepository
	startingCash decimal.Decimal
	clock        Clock

	mu sync.Mutex
}

// NewAccountService creates a new AccountService.
// startingCash is the balance of a new or reset account.
func NewAccountService(accountRepo *repository.AccountRepository, startingCash decimal.Decimal, clock Clock) *AccountService {
	return &AccountService{
		accountRepo:  accountRepo,
		startingCash: startingCash,
		clock:        clock,
	}
}

// Initialize records the join date on first start. Later calls do nothing.
func (s *AccountService) Initialize(ctx context.Context) error {
	return s.accountRepo.PutSettingIfAbsent(ctx, repository.SettingDateJoined, s.clock.Today())
}

// Cash returns the current balance. An account that never traded holds the starting cash.
func (s *AccountService) Cash(ctx context.Context) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cash(ctx)
}

func (s *AccountService) cash(ctx context.Context) (decimal.Decimal, error) {
	value, ok, err := s.accountRepo.GetSetting(ctx, repository.SettingCash)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return s.startingCash, nil
	}

	cash, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse cash balance %q: %w", value, err)
	}
	return cash, nil
}

// AdjustCash adds delta to the balance and returns the new balance.
func (s *AccountService) AdjustCash(ctx context.Context, delta decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cash, err := s.cash(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	cash = cash.Add(delta)
	if err := s.accountRepo.PutSetting(ctx, repository.SettingCash, cash.String()); err != nil {
		return decimal.Zero, err
	}
	return cash, nil
}

// ResetCash restores the starting balance.
func (s *AccountService) ResetCash(ctx context.Context) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.accountRepo.PutSetting(ctx, repository.SettingCash, s.startingCash.String()); err != nil {
		return decimal.Zero, err
	}
	return s.startingCash, nil
}

// DateJoined returns the date the account was first started, "" before Initialize ran.
func (s *AccountService) DateJoined(ctx context.Context) (string, error) {
	value, _, err := s.accountRepo.GetSetting(ctx, repository.SettingDateJoined)
	return value, err
}

// Watchlist returns the watched symbols in alphabetical order.
func (s *AccountService) Watchlist(ctx context.Context) ([]string, error) {
	return s.accountRepo.Watchlist(ctx)
}

// OnWatchlist reports whether symbol is watched.
func (s *AccountService) OnWatchlist(ctx context.Context, symbol string) (bool, error) {
	return s.accountRepo.OnWatchlist(ctx, symbol)
}

// ToggleWatchlist adds symbol when it is not watched and removes it otherwise.
// Returns true when the symbol ends up on the watchlist.
func (s *AccountService) ToggleWatchlist(ctx context.Context, symbol string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	watched, err := s.accountRepo.OnWatchlist(ctx, symbol)
	if err != nil {
		return false, err
	}

	if watched {
		if err := s.accountRepo.RemoveFromWatchlist(ctx, symbol); err != nil {
			return false, err
		}
		slog.Info("symbol removed from watchlist", "symbol", symbol)
		return false, nil
	}

	if err := s.accountRepo.AddToWatchlist(ctx, symbol); err != nil {
		return false, err
	}
	slog.Info("symbol added to watchlist", "symbol", symbol)
	return true, nil
}

// Unwatch removes symbol from the watchlist if it is there.
func (s *AccountService) Unwatch(ctx context.Context, symbol string) error {
	return s.accountRepo.RemoveFromWatchlist(ctx, symbol)
}

// ClearWatchlist removes every symbol from the watchlist.
func (s *AccountService) ClearWatchlist(ctx context.Context) error {
	return s.accountRepo.ClearWatchlist(ctx)
}
