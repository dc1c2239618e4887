package request

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ndewijer/pocketprofit-ledger/internal/model"
)

// ParseTransactionFilters extracts and validates transaction log filters from query parameters.
// All parameters are optional.
//
// Validation rules:
//   - types: comma-separated order kinds ("Market Buy", "Market Sell", "Free Stock")
//   - startDate/endDate: YYYY-MM-DD, inclusive
//   - limit: between 1 and 500 (defaults to no limit)
func ParseTransactionFilters(typesParam, startDateParam, endDateParam, limitParam string) (*model.TransactionFilters, error) {
	filters := &model.TransactionFilters{}

	if typesParam != "" {
		for _, kind := range strings.Split(typesParam, ",") {
			kind = strings.TrimSpace(kind)
			if !model.OrderKind(kind).Valid() {
				return nil, fmt.Errorf("invalid order type: %s", kind)
			}
			filters.Kinds = append(filters.Kinds, model.OrderKind(kind))
		}
	}

	if startDateParam != "" {
		if _, err := time.Parse("2006-01-02", startDateParam); err != nil {
			return nil, fmt.Errorf("invalid startDate format: %w", err)
		}
		filters.StartDate = startDateParam
	}

	if endDateParam != "" {
		if _, err := time.Parse("2006-01-02", endDateParam); err != nil {
			return nil, fmt.Errorf("invalid endDate format: %w", err)
		}
		filters.EndDate = endDateParam
	}

	if filters.StartDate != "" && filters.EndDate != "" && filters.StartDate > filters.EndDate {
		return nil, fmt.Errorf("invalid date range: startDate is after endDate")
	}

	if limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil {
			return nil, fmt.Errorf("invalid limit: must be a number")
		}
		if limit < 1 || limit > 500 {
			return nil, fmt.Errorf("invalid limit: must be between 1 and 500")
		}
		filters.Limit = limit
	}

	return filters, nil
}
