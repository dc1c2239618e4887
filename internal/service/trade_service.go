package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/pocketprofit-ledger/internal/api/request"
	"github.com/ndewijer/pocketprofit-ledger/internal/apperrors"
	"github.com/ndewijer/pocketprofit-ledger/internal/metrics"
	"github.com/ndewijer/pocketprofit-ledger/internal/model"
)

// TradeService executes orders against the ledger and settles them in cash.
// Orders are serialized so a cash check and its debit never interleave with another order.
type TradeService struct {
	ledgerService      *LedgerService
	accountService     *AccountService
	transactionService *TransactionService
	clock              Clock

	mu sync.Mutex
}

// NewTradeService creates a new TradeService with the provided service dependencies.
func NewTradeService(
	ledgerService *LedgerService,
	accountService *AccountService,
	transactionService *TransactionService,
	clock Clock,
) *TradeService {
	return &TradeService{
		ledgerService:      ledgerService,
		accountService:     accountService,
		transactionService: transactionService,
		clock:              clock,
	}
}

// Buy fills a market buy at req.Price.
//
// The order is rejected with ErrInvalidQuantity for fewer than one share and with
// ErrInsufficientFunds when the cost exceeds the cash balance. A bought symbol is
// taken off the watchlist. The receipt reports FirstTrade for the very first order.
func (s *TradeService) Buy(ctx context.Context, req request.BuyRequest) (model.TradeReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Quantity <= 0 {
		return model.TradeReceipt{}, reject("invalid_quantity", apperrors.ErrInvalidQuantity)
	}

	total := req.Price.Mul(decimal.NewFromInt(req.Quantity))
	cash, err := s.accountService.Cash(ctx)
	if err != nil {
		return model.TradeReceipt{}, err
	}
	if total.GreaterThan(cash) {
		return model.TradeReceipt{}, reject("insufficient_funds", apperrors.ErrInsufficientFunds)
	}

	firstTrade, err := s.transactionService.IsEmpty(ctx)
	if err != nil {
		return model.TradeReceipt{}, err
	}

	_, rec, err := s.ledgerService.Purchase(ctx, PurchaseOrder{
		Name:      req.Name,
		Symbol:    req.Symbol,
		Quantity:  req.Quantity,
		PricePaid: req.Price,
		MarkPrice: req.Price,
		Date:      s.clock.Today(),
	})
	if err != nil {
		return model.TradeReceipt{}, err
	}

	watched, err := s.accountService.OnWatchlist(ctx, req.Symbol)
	if err != nil {
		return model.TradeReceipt{}, err
	}
	if watched {
		if err := s.accountService.Unwatch(ctx, req.Symbol); err != nil {
			return model.TradeReceipt{}, err
		}
	}

	cash, err = s.accountService.AdjustCash(ctx, total.Neg())
	if err != nil {
		return model.TradeReceipt{}, fmt.Errorf("failed to debit cash for order %s: %w", rec.OrderID, err)
	}

	return model.TradeReceipt{
		Transaction: rec,
		Total:       total,
		Cash:        cash,
		FirstTrade:  firstTrade,
	}, nil
}

// Sell fills a market sell of req.Quantity shares, oldest lots first.
//
// Rejections, in order: ErrNoPosition when nothing is held, ErrInvalidQuantity for
// fewer than one share, ErrInsufficientShares when more shares are asked than held,
// ErrPreviousCloseRequired when req.PreviousClose is not positive and the oldest
// shares, which are sold first, were bought before today. Cash is credited with the liquidation proceeds and a Market Sell entry is recorded
// at req.Price.
func (s *TradeService) Sell(ctx context.Context, req request.SellRequest) (model.TradeReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	held, err := s.ledgerService.ShareCount(ctx, req.Symbol)
	if err != nil {
		return model.TradeReceipt{}, err
	}
	if held == 0 {
		return model.TradeReceipt{}, reject("no_position", apperrors.ErrNoPosition)
	}

	if req.Quantity <= 0 {
		return model.TradeReceipt{}, reject("invalid_quantity", apperrors.ErrInvalidQuantity)
	}
	if req.Quantity > held {
		return model.TradeReceipt{}, reject("insufficient_shares", apperrors.ErrInsufficientShares)
	}

	today := s.clock.Today()
	if !req.PreviousClose.IsPositive() {
		boughtToday, err := s.ledgerService.QuantityBoughtToday(ctx, req.Symbol, today)
		if err != nil {
			return model.TradeReceipt{}, err
		}
		if held > boughtToday {
			return model.TradeReceipt{}, reject("missing_previous_close", apperrors.ErrPreviousCloseRequired)
		}
	}

	liquidation, err := s.ledgerService.Liquidate(ctx, req.Symbol, req.Quantity, req.PreviousClose, today)
	if err != nil {
		return model.TradeReceipt{}, err
	}

	cash, err := s.accountService.AdjustCash(ctx, liquidation.AmountReceived)
	if err != nil {
		return model.TradeReceipt{}, fmt.Errorf("failed to credit cash for sale of %s: %w", req.Symbol, err)
	}

	rec, err := s.transactionService.Append(ctx, model.TransactionRecord{
		Name:     req.Name,
		Symbol:   req.Symbol,
		Kind:     model.OrderSell,
		Quantity: req.Quantity,
		Price:    req.Price,
		Date:     today,
	})
	if err != nil {
		return model.TradeReceipt{}, err
	}
	metrics.OrdersTotal.WithLabelValues(string(model.OrderSell)).Inc()

	return model.TradeReceipt{
		Transaction: rec,
		Total:       liquidation.AmountReceived,
		Cash:        cash,
		Liquidation: &liquidation,
	}, nil
}

// Grant adds free shares without moving cash.
func (s *TradeService) Grant(ctx context.Context, req request.GrantRequest) (model.TradeReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	firstTrade, err := s.transactionService.IsEmpty(ctx)
	if err != nil {
		return model.TradeReceipt{}, err
	}

	_, rec, err := s.ledgerService.Grant(ctx, GrantOrder{
		Name:      req.Name,
		Symbol:    req.Symbol,
		Quantity:  req.Quantity,
		MarkPrice: req.Price,
		Date:      s.clock.Today(),
	})
	if err != nil {
		return model.TradeReceipt{}, err
	}

	cash, err := s.accountService.Cash(ctx)
	if err != nil {
		return model.TradeReceipt{}, err
	}

	return model.TradeReceipt{
		Transaction: rec,
		Total:       decimal.Zero,
		Cash:        cash,
		FirstTrade:  firstTrade,
	}, nil
}

// ResetPortfolio wipes the ledger, restores the starting cash and clears the watchlist.
func (s *TradeService) ResetPortfolio(ctx context.Context) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledgerService.Reset(ctx); err != nil {
		return model.Account{}, err
	}

	cash, err := s.accountService.ResetCash(ctx)
	if err != nil {
		return model.Account{}, err
	}

	if err := s.accountService.ClearWatchlist(ctx); err != nil {
		return model.Account{}, err
	}

	joined, err := s.accountService.DateJoined(ctx)
	if err != nil {
		return model.Account{}, err
	}

	slog.Info("portfolio reset", "cash", cash.String())
	return model.Account{
		Cash:           cash,
		Equity:         decimal.Zero,
		PortfolioValue: cash,
		DateJoined:     joined,
	}, nil
}

// Account returns the cash balance, total equity and portfolio value.
func (s *TradeService) Account(ctx context.Context) (model.Account, error) {
	cash, err := s.accountService.Cash(ctx)
	if err != nil {
		return model.Account{}, err
	}

	equity, err := s.ledgerService.TotalEquityAllSymbols(ctx)
	if err != nil {
		return model.Account{}, err
	}

	joined, err := s.accountService.DateJoined(ctx)
	if err != nil {
		return model.Account{}, err
	}

	return model.Account{
		Cash:           cash,
		Equity:         equity,
		PortfolioValue: cash.Add(equity),
		DateJoined:     joined,
	}, nil
}

// Summary returns the account, every position and today's realized P&L.
func (s *TradeService) Summary(ctx context.Context) (model.LedgerSummary, error) {
	account, err := s.Account(ctx)
	if err != nil {
		return model.LedgerSummary{}, err
	}

	positions, err := s.ledgerService.Positions(ctx)
	if err != nil {
		return model.LedgerSummary{}, err
	}

	today := s.clock.Today()
	realized, err := s.ledgerService.TodaysRealizedGain(ctx, today)
	if err != nil {
		return model.LedgerSummary{}, err
	}

	return model.LedgerSummary{
		Date:             today,
		Account:          account,
		Positions:        positions,
		RealizedPnLToday: realized,
	}, nil
}
