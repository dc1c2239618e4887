package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Common validation errors
var (
	ErrInvalidSymbol = fmt.Errorf("invalid symbol format")
	ErrInvalidDate   = fmt.Errorf("invalid date format")
)

// symbolPattern accepts exchange tickers such as AAPL, BRK.B, ^GSPC and EURUSD=X.
var symbolPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^]{0,14}$`)

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidateSymbol checks if a normalized string is a plausible ticker symbol
func ValidateSymbol(symbol string) error {
	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return nil
}

// ValidateDate checks if a string is a YYYY-MM-DD calendar date
func ValidateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}
