package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/pocketprofit-ledger/internal/quote"
	"github.com/ndewijer/pocketprofit-ledger/internal/repository"
	"github.com/ndewijer/pocketprofit-ledger/internal/service"
)

// StartingCash is the cash balance of every test account.
var StartingCash = decimal.NewFromInt(15000)

// Services is a fully wired service graph over one test database.
type Services struct {
	Clock       service.Clock
	Ledger      *service.LedgerService
	DailyPnL    *service.DailyPnLService
	Transaction *service.TransactionService
	Account     *service.AccountService
	Trade       *service.TradeService
	Quote       *service.QuoteService
	System      *service.SystemService
}

// NewTestServices wires every service against db with today pinned to the given date.
// provider may be nil when quotes are not exercised.
func NewTestServices(t *testing.T, db *sql.DB, today string, provider quote.Provider) *Services {
	t.Helper()

	clock := service.FixedClock(today)
	transactionService := NewTestTransactionService(t, db)
	dailyPnLService := NewTestDailyPnLService(t, db)
	ledgerService := service.NewLedgerService(
		db,
		repository.NewLotRepository(db),
		repository.NewStockSplitRepository(db),
		transactionService,
		dailyPnLService,
	)
	accountService := service.NewAccountService(repository.NewAccountRepository(db), StartingCash, clock)

	if provider == nil {
		provider = NewMockQuoteProvider()
	}

	return &Services{
		Clock:       clock,
		Ledger:      ledgerService,
		DailyPnL:    dailyPnLService,
		Transaction: transactionService,
		Account:     accountService,
		Trade:       service.NewTradeService(ledgerService, accountService, transactionService, clock),
		Quote:       service.NewQuoteService(provider, ledgerService, clock, 2),
		System:      NewTestSystemService(t, db),
	}
}

func NewTestLedgerService(t *testing.T, db *sql.DB) *service.LedgerService {
	t.Helper()

	return service.NewLedgerService(
		db,
		repository.NewLotRepository(db),
		repository.NewStockSplitRepository(db),
		NewTestTransactionService(t, db),
		NewTestDailyPnLService(t, db),
	)
}

func NewTestDailyPnLService(t *testing.T, db *sql.DB) *service.DailyPnLService {
	t.Helper()

	return service.NewDailyPnLService(repository.NewDailyPnLRepository(db))
}

func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	return service.NewTransactionService(repository.NewTransactionRepository(db))
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, map[string]bool{"metrics": true})
}

// MakeSymbol generates a stock ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("AAPL")
//	// Returns: "AAPL1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakeCompanyName generates a unique company name for testing.
//
// Example usage:
//
//	name := testutil.MakeCompanyName("Tech Corp")
//	// Returns: "Tech Corp XYZ789"
func MakeCompanyName(base string) string {
	if base == "" {
		base = "Company"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

// Dec parses a decimal literal, failing the test on malformed input.
func Dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", value, err)
	}
	return d
}

// AssertDecimal fails the test when got and want differ numerically.
func AssertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()

	if !got.Equal(Dec(t, want)) {
		t.Errorf("Expected %s %s, got %s", name, want, got.String())
	}
}
