package service

import (
	"time"

	"github.com/ndewijer/pocketprofit-ledger/internal/repository"
)

// Clock returns the current date key of the ledger time zone.
// Services take a Clock so tests can pin "today".
type Clock struct {
	now func() time.Time
	loc *time.Location
}

// NewClock creates a Clock reading the wall clock in loc.
func NewClock(loc *time.Location) Clock {
	return Clock{now: time.Now, loc: loc}
}

// FixedClock returns a Clock that always reports date.
// The date must be in 2006-01-02 layout.
func FixedClock(date string) Clock {
	t, err := repository.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return Clock{now: func() time.Time { return t }, loc: time.UTC}
}

// Today returns the current calendar day as a ledger date key.
func (c Clock) Today() string {
	now := c.now
	if now == nil {
		now = time.Now
	}
	return repository.DateKey(now(), c.loc)
}

// Location returns the ledger time zone.
func (c Clock) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}
