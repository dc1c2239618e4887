package apperrors

import "errors"

// Business rule rejections. The operation that returns one of these did not
// change any state and its numeric result is the zero/-1 sentinel.
var (
	// ErrInvalidQuantity indicates an order for zero or a negative number of shares.
	ErrInvalidQuantity = errors.New("quantity must be at least 1 share")

	// ErrInvalidPrice indicates a negative price on an order or mark update.
	ErrInvalidPrice = errors.New("price cannot be negative")

	// ErrInsufficientShares indicates that a sell order asks for more shares than are held.
	ErrInsufficientShares = errors.New("insufficient shares for sale")

	// ErrNoPosition indicates a sell order for a symbol with no shares held.
	ErrNoPosition = errors.New("no shares available to sell")

	// ErrInsufficientFunds indicates that the cash balance cannot cover a buy order.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrShareLimitExceeded indicates an order that would take a position past model.MaxPositionQuantity.
	ErrShareLimitExceeded = errors.New("order exceeds the share limit of a position")

	// ErrPreviousCloseRequired indicates a sell of shares bought before today without a previous close.
	ErrPreviousCloseRequired = errors.New("previous close is required to sell shares bought before today")

	// Validation errors for required fields
	ErrInvalidSymbol = errors.New("symbol is required")
	ErrInvalidDate   = errors.New("date must be in YYYY-MM-DD format")
)

// Lookup errors.
var (
	// ErrSymbolNotFound indicates that a price provider has no data for a symbol.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrPositionNotFound indicates that no lots exist for the requested symbol.
	ErrPositionNotFound = errors.New("position not found")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrDataInconsistency indicates that stored state violates a ledger invariant
	// (e.g., a lot with a negative quantity).
	ErrDataInconsistency = errors.New("data inconsistency detected")

	// ErrLedgerCorrupted indicates that liquidation is refused for a symbol on which
	// an inconsistency was detected earlier.
	ErrLedgerCorrupted = errors.New("ledger refuses to liquidate a corrupted symbol")
)

// Operation failure errors used as user-facing messages by the HTTP layer.
var (
	ErrFailedToRetrievePositions    = errors.New("failed to retrieve positions")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveAccount      = errors.New("failed to retrieve account")
	ErrFailedToRetrieveWatchlist    = errors.New("failed to retrieve watchlist")
	ErrFailedToRetrieveRealizedPnL  = errors.New("failed to retrieve realized profit/loss")
	ErrFailedToRetrieveQuote        = errors.New("failed to retrieve quote")
	ErrFailedToUpdateMarks          = errors.New("failed to update mark prices")
	ErrFailedToExecuteTrade         = errors.New("failed to execute trade")
	ErrFailedToResetPortfolio       = errors.New("failed to reset portfolio")
	ErrFailedToGetVersionInfo       = errors.New("failed to get version information")
)
