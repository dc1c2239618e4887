package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ndewijer/pocketprofit-ledger/internal/apperrors"
	"github.com/ndewijer/pocketprofit-ledger/internal/metrics"
	"github.com/ndewijer/pocketprofit-ledger/internal/model"
	"github.com/ndewijer/pocketprofit-ledger/internal/quote"
)

// quoteTimeout bounds one shared upstream quote request.
const quoteTimeout = 15 * time.Second

// QuoteService fetches quotes and re-marks held lots with them.
type QuoteService struct {
	provider      quote.Provider
	ledgerService *LedgerService
	clock         Clock
	concurrency   int

	group singleflight.Group
}

// NewQuoteService creates a new QuoteService.
// concurrency bounds the number of quote requests in flight during a refresh.
func NewQuoteService(provider quote.Provider, ledgerService *LedgerService, clock Clock, concurrency int) *QuoteService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &QuoteService{
		provider:      provider,
		ledgerService: ledgerService,
		clock:         clock,
		concurrency:   concurrency,
	}
}

// Quote returns the latest quote of symbol.
//
// Concurrent lookups of the same symbol share one upstream request. The shared
// request is not bound to any caller's ctx and runs under quoteTimeout; a caller
// whose ctx is done stops waiting without failing the others.
func (s *QuoteService) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	if err := ctx.Err(); err != nil {
		return model.Quote{}, err
	}

	ch := s.group.DoChan(symbol, func() (any, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), quoteTimeout)
		defer cancel()
		return s.provider.Quote(qctx, symbol)
	})

	select {
	case <-ctx.Done():
		return model.Quote{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			metrics.QuoteFailures.Inc()
			return model.Quote{}, res.Err
		}
		return res.Val.(model.Quote), nil
	}
}

// RefreshMarks quotes every held symbol and stores the price as the current
// price of its lots. A symbol whose quote fails keeps its previous mark and is
// reported in Failed; only cancellation of ctx aborts the refresh.
func (s *QuoteService) RefreshMarks(ctx context.Context) (model.MarkRefresh, error) {
	start := time.Now()
	defer func() {
		metrics.QuoteRefreshDuration.Observe(time.Since(start).Seconds())
	}()

	refresh := model.MarkRefresh{
		Updated:   []model.MarkUpdate{},
		Failed:    map[string]string{},
		DayChange: decimal.Zero,
	}

	symbols, err := s.ledgerService.DistinctSymbolsOwned(ctx)
	if err != nil {
		return refresh, err
	}

	today := s.clock.Today()
	updates := make([]*model.MarkUpdate, len(symbols))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, symbol := range symbols {
		g.Go(func() error {
			update, err := s.mark(gctx, symbol, today)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				slog.Warn("failed to refresh mark", "symbol", symbol, "err", err)
				mu.Lock()
				refresh.Failed[symbol] = err.Error()
				mu.Unlock()
				return nil
			}
			updates[i] = &update
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return refresh, err
	}

	for _, u := range updates {
		if u == nil {
			continue
		}
		refresh.Updated = append(refresh.Updated, *u)
		refresh.DayChange = refresh.DayChange.Add(u.DayChange)
	}

	slog.Info("marks refreshed", "symbols", len(symbols), "updated", len(refresh.Updated), "failed", len(refresh.Failed))
	return refresh, nil
}

func (s *QuoteService) mark(ctx context.Context, symbol, today string) (model.MarkUpdate, error) {
	q, err := s.Quote(ctx, symbol)
	if err != nil {
		return model.MarkUpdate{}, err
	}
	if !q.CurrentPrice.IsPositive() {
		return model.MarkUpdate{}, fmt.Errorf("%w: no current price for %s", apperrors.ErrSymbolNotFound, symbol)
	}

	lots, err := s.ledgerService.SetCurrentPrice(ctx, symbol, q.CurrentPrice)
	if err != nil {
		return model.MarkUpdate{}, err
	}

	change, err := s.DayChange(ctx, symbol, q.CurrentPrice, q.PreviousClose, today)
	if err != nil {
		return model.MarkUpdate{}, err
	}

	return model.MarkUpdate{
		Symbol:        symbol,
		Price:         q.CurrentPrice,
		PreviousClose: q.PreviousClose,
		Lots:          lots,
		DayChange:     change,
	}, nil
}

// DayChange returns today's unrealized change of the position in symbol at price.
// Units bought today count from their price paid, older units from previousClose.
func (s *QuoteService) DayChange(ctx context.Context, symbol string, price, previousClose decimal.Decimal, today string) (decimal.Decimal, error) {
	boughtToday, err := s.ledgerService.LotsBoughtToday(ctx, symbol, today)
	if err != nil {
		return decimal.Zero, err
	}

	held, err := s.ledgerService.ShareCount(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}

	change := decimal.Zero
	older := held
	for _, l := range boughtToday {
		change = change.Add(decimal.NewFromInt(l.Quantity).Mul(price.Sub(l.PricePaid)))
		older -= l.Quantity
	}

	change = change.Add(decimal.NewFromInt(older).Mul(price.Sub(previousClose)))
	return change, nil
}
