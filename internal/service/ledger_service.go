package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/pocketprofit-ledger/internal/apperrors"
	"github.com/ndewijer/pocketprofit-ledger/internal/metrics"
	"github.com/ndewijer/pocketprofit-ledger/internal/model"
	"github.com/ndewijer/pocketprofit-ledger/internal/repository"
)

// PurchaseOrder describes a buy to be recorded as a new lot.
// MarkPrice defaults to PricePaid when zero.
type PurchaseOrder struct {
	Name      string
	Symbol    string
	Quantity  int64
	PricePaid decimal.Decimal
	MarkPrice decimal.Decimal
	Date      string
}

// GrantOrder describes shares received for free. The lot has a zero cost basis;
// the log records MarkPrice so the receipt shows the market value.
type GrantOrder struct {
	Name      string
	Symbol    string
	Quantity  int64
	MarkPrice decimal.Decimal
	Date      string
}

// LedgerService owns the lot store, the transaction log and the daily realized P&L record.
//
// Mutations take the write lock and run inside one SQL transaction; aggregate
// reads take the read lock. A symbol on which stored state was found to violate
// a ledger invariant is quarantined: later liquidations of it are refused until
// the process restarts or the portfolio is reset.
type LedgerService struct {
	db                 *sql.DB
	lotRepo            *repository.LotRepository
	stockSplitRepo     *repository.StockSplitRepository
	transactionService *TransactionService
	dailyPnLService    *DailyPnLService

	mu          sync.RWMutex
	quarantined map[string]error
}

// NewLedgerService creates a new LedgerService with the provided repository dependencies.
func NewLedgerService(
	db *sql.DB,
	lotRepo *repository.LotRepository,
	stockSplitRepo *repository.StockSplitRepository,
	transactionService *TransactionService,
	dailyPnLService *DailyPnLService,
) *LedgerService {
	return &LedgerService{
		db:                 db,
		lotRepo:            lotRepo,
		stockSplitRepo:     stockSplitRepo,
		transactionService: transactionService,
		dailyPnLService:    dailyPnLService,
		quarantined:        make(map[string]error),
	}
}

// inTx runs fn inside a database transaction, committing when fn returns nil.
func (s *LedgerService) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to roll back ledger transaction", "err", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func validateOrder(symbol string, quantity int64, date string) error {
	if quantity <= 0 {
		return apperrors.ErrInvalidQuantity
	}
	if quantity > model.MaxPositionQuantity {
		return fmt.Errorf("%w: %d shares ordered, at most %d allowed", apperrors.ErrShareLimitExceeded, quantity, model.MaxPositionQuantity)
	}
	if strings.TrimSpace(symbol) == "" {
		return apperrors.ErrInvalidSymbol
	}
	if _, err := repository.ParseDate(date); err != nil {
		return apperrors.ErrInvalidDate
	}
	return nil
}

func reject(reason string, err error) error {
	metrics.OrderRejections.WithLabelValues(reason).Inc()
	slog.Warn("order rejected", "reason", reason, "err", err)
	return err
}

// Purchase records a buy: a new lot and a Market Buy entry, in one transaction.
// Nothing is written when the order is rejected.
func (s *LedgerService) Purchase(ctx context.Context, order PurchaseOrder) (model.Lot, model.TransactionRecord, error) {
	if err := validateOrder(order.Symbol, order.Quantity, order.Date); err != nil {
		return model.Lot{}, model.TransactionRecord{}, reject("invalid_order", err)
	}
	if order.PricePaid.IsNegative() || order.MarkPrice.IsNegative() {
		return model.Lot{}, model.TransactionRecord{}, reject("invalid_price", apperrors.ErrInvalidPrice)
	}

	mark := order.MarkPrice
	if mark.IsZero() {
		mark = order.PricePaid
	}

	lot := model.Lot{
		Name:         order.Name,
		Symbol:       order.Symbol,
		Quantity:     order.Quantity,
		PricePaid:    order.PricePaid,
		CurrentPrice: mark,
		Date:         order.Date,
	}
	rec := model.TransactionRecord{
		Name:     order.Name,
		Symbol:   order.Symbol,
		Kind:     model.OrderBuy,
		Quantity: order.Quantity,
		Price:    order.PricePaid,
		Date:     order.Date,
	}

	lot, rec, err := s.addLot(ctx, lot, rec)
	if err != nil {
		return model.Lot{}, model.TransactionRecord{}, err
	}

	slog.Info("lot purchased", "symbol", lot.Symbol, "lot", lot.ID, "quantity", lot.Quantity, "price", lot.PricePaid.String())
	return lot, rec, nil
}

// Grant records free shares: a lot with a zero cost basis and a Free Stock entry.
func (s *LedgerService) Grant(ctx context.Context, order GrantOrder) (model.Lot, model.TransactionRecord, error) {
	if err := validateOrder(order.Symbol, order.Quantity, order.Date); err != nil {
		return model.Lot{}, model.TransactionRecord{}, reject("invalid_order", err)
	}
	if order.MarkPrice.IsNegative() {
		return model.Lot{}, model.TransactionRecord{}, reject("invalid_price", apperrors.ErrInvalidPrice)
	}

	lot := model.Lot{
		Name:         order.Name,
		Symbol:       order.Symbol,
		Quantity:     order.Quantity,
		PricePaid:    decimal.Zero,
		CurrentPrice: order.MarkPrice,
		Date:         order.Date,
	}
	rec := model.TransactionRecord{
		Name:     order.Name,
		Symbol:   order.Symbol,
		Kind:     model.OrderFreeGrant,
		Quantity: order.Quantity,
		Price:    order.MarkPrice,
		Date:     order.Date,
	}

	lot, rec, err := s.addLot(ctx, lot, rec)
	if err != nil {
		return model.Lot{}, model.TransactionRecord{}, err
	}

	slog.Info("shares granted", "symbol", lot.Symbol, "lot", lot.ID, "quantity", lot.Quantity)
	return lot, rec, nil
}

func (s *LedgerService) addLot(ctx context.Context, lot model.Lot, rec model.TransactionRecord) (model.Lot, model.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		lotRepo := s.lotRepo.WithTx(tx)

		held, err := lotRepo.TotalQuantity(ctx, lot.Symbol)
		if err != nil {
			return err
		}
		if held > model.MaxPositionQuantity-lot.Quantity {
			return fmt.Errorf("%w: %d of %s held, %d ordered", apperrors.ErrShareLimitExceeded, held, lot.Symbol, lot.Quantity)
		}

		id, err := lotRepo.InsertLot(ctx, lot)
		if err != nil {
			return err
		}
		lot.ID = id

		rec, err = s.transactionService.WithTx(tx).Append(ctx, rec)
		return err
	})
	if errors.Is(err, apperrors.ErrShareLimitExceeded) {
		return model.Lot{}, model.TransactionRecord{}, reject("share_limit", err)
	}
	if err != nil {
		return model.Lot{}, model.TransactionRecord{}, err
	}

	metrics.OrdersTotal.WithLabelValues(string(rec.Kind)).Inc()
	return lot, rec, nil
}

// Liquidate sells sharesToSell shares of symbol oldest lot first and returns the proceeds.
//
// Every consumed unit is valued at its own lot's current price. The realized gain
// of a unit is measured against the price paid when its lot was bought today and
// against previousClose otherwise; the sum is posted to today's realized P&L.
// Rejections return a zero AmountReceived and leave all state untouched. The
// caller appends the Market Sell entry and credits cash.
func (s *LedgerService) Liquidate(ctx context.Context, symbol string, sharesToSell int64, previousClose decimal.Decimal, today string) (model.Liquidation, error) {
	result := model.Liquidation{
		Symbol:         symbol,
		AmountReceived: decimal.Zero,
		RealizedDelta:  decimal.Zero,
		Fills:          []model.LotFill{},
	}

	if sharesToSell <= 0 {
		return result, reject("invalid_quantity", apperrors.ErrInvalidQuantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.quarantined[symbol]; err != nil {
		return result, fmt.Errorf("%w: %s: %v", apperrors.ErrLedgerCorrupted, symbol, err)
	}

	var realizedToday decimal.Decimal
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		lotRepo := s.lotRepo.WithTx(tx)

		lots, err := lotRepo.LotsFor(ctx, symbol)
		if err != nil {
			return err
		}

		var held int64
		for _, l := range lots {
			if l.Quantity < 0 {
				return fmt.Errorf("%w: lot %d of %s has quantity %d", apperrors.ErrDataInconsistency, l.ID, symbol, l.Quantity)
			}
			held += l.Quantity
		}
		if held < sharesToSell {
			return apperrors.ErrInsufficientShares
		}

		fills := consumeFIFO(lots, sharesToSell)
		amount, delta := decimal.Zero, decimal.Zero
		for _, f := range fills {
			units := decimal.NewFromInt(f.Quantity)
			basis := previousClose
			if f.Date == today {
				basis = f.PricePaid
			}
			amount = amount.Add(units.Mul(f.MarkPrice))
			delta = delta.Add(units.Mul(f.MarkPrice.Sub(basis)))

			if err := lotRepo.SetQuantity(ctx, f.LotID, f.Remaining); err != nil {
				return err
			}
		}

		if _, err := lotRepo.DeleteZeroQuantityLots(ctx); err != nil {
			return err
		}

		realizedToday, err = s.dailyPnLService.WithTx(tx).AddRealizedGain(ctx, today, delta)
		if err != nil {
			return err
		}

		result.SharesSold = sharesToSell
		result.AmountReceived = amount
		result.RealizedDelta = delta
		result.Fills = fills
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrInsufficientShares):
		return emptyLiquidation(symbol), reject("insufficient_shares", err)
	case errors.Is(err, apperrors.ErrDataInconsistency):
		s.quarantined[symbol] = err
		metrics.LedgerInconsistencies.Inc()
		slog.Error("ledger inconsistency, symbol quarantined", "symbol", symbol, "err", err)
		return emptyLiquidation(symbol), err
	default:
		return emptyLiquidation(symbol), err
	}

	metrics.SharesLiquidated.Add(float64(result.SharesSold))
	metrics.LotsConsumed.Add(float64(len(result.Fills)))
	metrics.RealizedPnLToday.Set(realizedToday.InexactFloat64())
	slog.Info("shares liquidated",
		"symbol", symbol,
		"shares", result.SharesSold,
		"lots", len(result.Fills),
		"amount", result.AmountReceived.String(),
		"realized", result.RealizedDelta.String(),
	)
	return result, nil
}

func emptyLiquidation(symbol string) model.Liquidation {
	return model.Liquidation{
		Symbol:         symbol,
		AmountReceived: decimal.Zero,
		RealizedDelta:  decimal.Zero,
		Fills:          []model.LotFill{},
	}
}

// consumeFIFO takes shares from lots in order until shares is exhausted.
// lots must be ordered oldest first and hold at least shares in total.
func consumeFIFO(lots []model.Lot, shares int64) []model.LotFill {
	fills := []model.LotFill{}
	remaining := shares
	for _, l := range lots {
		if remaining == 0 {
			break
		}
		if l.Quantity == 0 {
			continue
		}

		consumed := min(remaining, l.Quantity)
		remaining -= consumed
		fills = append(fills, model.LotFill{
			LotID:     l.ID,
			Quantity:  consumed,
			Remaining: l.Quantity - consumed,
			MarkPrice: l.CurrentPrice,
			PricePaid: l.PricePaid,
			Date:      l.Date,
		})
	}
	return fills
}

// LotsBoughtToday returns the remaining lots of symbol bought on today, oldest first.
func (s *LedgerService) LotsBoughtToday(ctx context.Context, symbol, today string) ([]model.Lot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lotRepo.LotsBoughtOn(ctx, symbol, today)
}

// QuantityBoughtToday returns the remaining shares of symbol bought on today.
func (s *LedgerService) QuantityBoughtToday(ctx context.Context, symbol, today string) (int64, error) {
	lots, err := s.LotsBoughtToday(ctx, symbol, today)
	if err != nil {
		return 0, err
	}

	var quantity int64
	for _, l := range lots {
		quantity += l.Quantity
	}
	return quantity, nil
}

// SharesBoughtToday returns the price paid once per remaining unit of the lots of
// symbol bought on today, oldest lot first. The listing is bounded by
// model.MaxPositionQuantity.
func (s *LedgerService) SharesBoughtToday(ctx context.Context, symbol, today string) ([]decimal.Decimal, error) {
	lots, err := s.LotsBoughtToday(ctx, symbol, today)
	if err != nil {
		return nil, err
	}

	prices := []decimal.Decimal{}
	for _, l := range lots {
		for range l.Quantity {
			prices = append(prices, l.PricePaid)
		}
	}
	return prices, nil
}

// ShareCount returns the shares of symbol held.
func (s *LedgerService) ShareCount(ctx context.Context, symbol string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lotRepo.TotalQuantity(ctx, symbol)
}

// AverageCost returns the average price paid per held share, -1 when none are held.
func (s *LedgerService) AverageCost(ctx context.Context, symbol string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lotRepo.AverageCost(ctx, symbol)
}

// TotalCost returns Σ quantity × price paid over the lots of symbol.
func (s *LedgerService) TotalCost(ctx context.Context, symbol string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lotRepo.TotalCost(ctx, symbol)
}

// TotalEquity returns Σ quantity × current price over the lots of symbol.
func (s *LedgerService) TotalEquity(ctx context.Context, symbol string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lotRepo.TotalEquity(ctx, symbol)
}

// CurrentPrice returns the mark of the oldest lot of symbol, -1 when none are held.
func (s *LedgerService) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	position, err := s.Position(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return position.CurrentPrice, nil
}

// UserOwns reports whether any shares of symbol are held.
func (s *LedgerService) UserOwns(ctx context.Context, symbol string) (bool, error) {
	count, err := s.ShareCount(ctx, symbol)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasTransactionHistory reports whether symbol was ever traded.
func (s *LedgerService) HasTransactionHistory(ctx context.Context, symbol string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactionService.HasHistory(ctx, symbol)
}

// CompanyNameFor returns the name stored with the oldest lot of symbol, "" when none are held.
func (s *LedgerService) CompanyNameFor(ctx context.Context, symbol string) (string, error) {
	position, err := s.Position(ctx, symbol)
	if err != nil {
		return "", err
	}
	return position.Name, nil
}

// TotalEquityAllSymbols returns the market value of every held lot.
func (s *LedgerService) TotalEquityAllSymbols(ctx context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lotRepo.TotalEquityAllSymbols(ctx)
}

// DistinctSymbolsOwned lists held symbols in the order their oldest remaining lot was bought.
func (s *LedgerService) DistinctSymbolsOwned(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lotRepo.DistinctSymbolsOwned(ctx)
}

// Position returns all aggregates of symbol from a single read of its lots.
func (s *LedgerService) Position(ctx context.Context, symbol string) (model.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lots, err := s.lotRepo.LotsFor(ctx, symbol)
	if err != nil {
		return model.Position{}, err
	}
	return repository.Aggregate(symbol, lots), nil
}

// Positions returns the aggregates of every held symbol, ordered like DistinctSymbolsOwned.
func (s *LedgerService) Positions(ctx context.Context) ([]model.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lots, err := s.lotRepo.AllLots(ctx)
	if err != nil {
		return nil, err
	}

	order := []string{}
	bySymbol := make(map[string][]model.Lot)
	for _, l := range lots {
		if _, seen := bySymbol[l.Symbol]; !seen {
			order = append(order, l.Symbol)
		}
		bySymbol[l.Symbol] = append(bySymbol[l.Symbol], l)
	}

	positions := make([]model.Position, 0, len(order))
	for _, symbol := range order {
		positions = append(positions, repository.Aggregate(symbol, bySymbol[symbol]))
	}
	return positions, nil
}

// SetCurrentPrice marks every lot of symbol at price and returns the number of lots updated.
// A zero price is ignored.
func (s *LedgerService) SetCurrentPrice(ctx context.Context, symbol string, price decimal.Decimal) (int64, error) {
	if price.IsNegative() {
		return 0, apperrors.ErrInvalidPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lotRepo.SetCurrentPrice(ctx, symbol, price)
}

// TodaysRealizedGain returns today's realized P&L, rolling a stale record over to zero.
func (s *LedgerService) TodaysRealizedGain(ctx context.Context, today string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := s.dailyPnLService.RecordedValueFor(ctx, today)
	if err != nil {
		return decimal.Zero, err
	}
	metrics.RealizedPnLToday.Set(value.InexactFloat64())
	return value, nil
}

// RealizedGainSnapshot returns the stored realized P&L without a date check.
func (s *LedgerService) RealizedGainSnapshot(ctx context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dailyPnLService.CurrentValue(ctx)
}

// Reset clears lots, the transaction log, the daily realized P&L record and
// stock splits in one transaction, and lifts every quarantine.
func (s *LedgerService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.lotRepo.WithTx(tx).DeleteAll(ctx); err != nil {
			return err
		}
		if err := s.transactionService.WithTx(tx).DeleteAll(ctx); err != nil {
			return err
		}
		if err := s.dailyPnLService.WithTx(tx).Clear(ctx); err != nil {
			return err
		}
		return s.stockSplitRepo.WithTx(tx).DeleteAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to reset ledger: %w", err)
	}

	clear(s.quarantined)
	metrics.RealizedPnLToday.Set(0)
	slog.Info("ledger reset")
	return nil
}
