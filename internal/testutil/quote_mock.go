package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/pocketprofit-ledger/internal/apperrors"
	"github.com/ndewijer/pocketprofit-ledger/internal/model"
)

// MockQuoteProvider is a quote.Provider returning predefined quotes instead of calling an API.
type MockQuoteProvider struct {
	mu     sync.Mutex
	quotes map[string]model.Quote
	errors map[string]error
	holds  map[string]*hold
	// QueryCount tracks how many times Quote was called
	QueryCount int
}

// NewMockQuoteProvider creates a mock provider with no quotes.
// Unknown symbols return apperrors.ErrSymbolNotFound.
func NewMockQuoteProvider() *MockQuoteProvider {
	return &MockQuoteProvider{
		quotes: make(map[string]model.Quote),
		errors: make(map[string]error),
		holds:  make(map[string]*hold),
	}
}

type hold struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

// Hold makes lookups of symbol block until release is called or their context is done.
// entered is closed when the first held lookup starts.
//
// Example usage:
//
//	entered, release := provider.Hold("AAPL")
//	go svc.Quote(ctx, "AAPL")
//	<-entered
//	release()
func (m *MockQuoteProvider) Hold(symbol string) (entered <-chan struct{}, release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := &hold{entered: make(chan struct{}), release: make(chan struct{})}
	m.holds[symbol] = h
	var released sync.Once
	return h.entered, func() { released.Do(func() { close(h.release) }) }
}

// WithQuote registers a quote for symbol.
func (m *MockQuoteProvider) WithQuote(symbol string, price, previousClose float64) *MockQuoteProvider {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.quotes[symbol] = model.Quote{
		Symbol:          symbol,
		Name:            symbol + " Inc.",
		CurrentPrice:    decimal.NewFromFloat(price),
		PreviousClose:   decimal.NewFromFloat(previousClose),
		IsMarketOpen:    true,
		LatestTimestamp: time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC),
	}
	return m
}

// WithError makes lookups of symbol fail with err.
func (m *MockQuoteProvider) WithError(symbol string, err error) *MockQuoteProvider {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errors[symbol] = err
	return m
}

// Quote returns the registered quote or error for symbol.
func (m *MockQuoteProvider) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	m.mu.Lock()
	m.QueryCount++
	h := m.holds[symbol]
	m.mu.Unlock()

	if h != nil {
		h.once.Do(func() { close(h.entered) })
		select {
		case <-h.release:
		case <-ctx.Done():
			return model.Quote{}, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.errors[symbol]; ok {
		return model.Quote{}, err
	}
	q, ok := m.quotes[symbol]
	if !ok {
		return model.Quote{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}
	return q, nil
}

// Queries returns the number of Quote calls so far.
func (m *MockQuoteProvider) Queries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.QueryCount
}
