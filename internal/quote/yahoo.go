// Package quote fetches market prices used to mark lots and to value sales.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/pocketprofit-ledger/internal/apperrors"
	"github.com/ndewijer/pocketprofit-ledger/internal/model"
)

// Provider supplies the latest quote for a symbol.
type Provider interface {
	Quote(ctx context.Context, symbol string) (model.Quote, error)
}

// YahooClient provides quotes from the Yahoo Finance chart API.
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewYahooClient creates a new Yahoo Finance client.
// baseURL is the API root, e.g. https://query1.finance.yahoo.com.
func NewYahooClient(baseURL string, timeout time.Duration) *YahooClient {
	return &YahooClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Quote fetches the latest price and previous close of symbol.
//
// Returns apperrors.ErrSymbolNotFound when Yahoo has no chart for the symbol.
func (c *YahooClient) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.baseURL, url.PathEscape(symbol))

	response, err := c.queryYahoo(ctx, endpoint)
	if err != nil {
		return model.Quote{}, fmt.Errorf("failed to query quote for %s: %w", symbol, err)
	}
	if len(response.Chart.Result) == 0 {
		return model.Quote{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}

	return c.ParseQuote(response.Chart.Result[0].Meta), nil
}

// ParseQuote converts chart metadata into a Quote.
// The market is open when the current time falls inside the regular session.
func (c *YahooClient) ParseQuote(meta Meta) model.Quote {
	name := meta.LongName
	if name == "" {
		name = meta.Shortname
	}

	previousClose := meta.PreviousClose
	if previousClose == 0 {
		previousClose = meta.ChartPreviousClose
	}

	now := c.now().Unix()
	regular := meta.CurrentTradingPeriod.Regular

	return model.Quote{
		Symbol:          meta.Symbol,
		Name:            name,
		CurrentPrice:    decimal.NewFromFloat(meta.RegularMarketPrice),
		PreviousClose:   decimal.NewFromFloat(previousClose),
		IsMarketOpen:    regular.Start <= now && now < regular.End,
		LatestTimestamp: time.Unix(meta.RegularMarketTime, 0).UTC(),
	}
}

// queryYahoo executes a GET against the chart API and decodes the response.
// A 404 or a chart error with code "Not Found" maps to ErrSymbolNotFound.
func (c *YahooClient) queryYahoo(ctx context.Context, endpoint string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		if resp.StatusCode == http.StatusNotFound {
			return Response{}, apperrors.ErrSymbolNotFound
		}
		return Response{}, fmt.Errorf("unexpected response (status %d): %w", resp.StatusCode, err)
	}

	if response.Chart.Error != nil {
		if strings.EqualFold(response.Chart.Error.Code, "Not Found") {
			return response, apperrors.ErrSymbolNotFound
		}
		return response, fmt.Errorf("yahoo error: %s", response.Chart.Error.Description)
	}

	if resp.StatusCode != http.StatusOK {
		return response, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return response, nil
}
