package quote

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
// Only the meta block is read; it carries the latest price, the previous close and
// the current trading session.
type Response struct {
	Chart struct {
		Result []struct {
			Meta Meta `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Meta is the symbol metadata of a chart result.
type Meta struct {
	Currency             string      `json:"currency"`
	Symbol               string      `json:"symbol"`
	ExchangeName         string      `json:"exchangeName"`
	LongName             string      `json:"longName"`
	Shortname            string      `json:"shortName"`
	RegularMarketPrice   float64     `json:"regularMarketPrice"`
	ChartPreviousClose   float64     `json:"chartPreviousClose"`
	PreviousClose        float64     `json:"previousClose"`
	RegularMarketTime    int64       `json:"regularMarketTime"`
	CurrentTradingPeriod TradePeriod `json:"currentTradingPeriod"`
}

// TradePeriod holds the pre, regular and post sessions of the current trading day.
type TradePeriod struct {
	Pre     Session `json:"pre"`
	Regular Session `json:"regular"`
	Post    Session `json:"post"`
}

// Session is a trading session in Unix seconds.
type Session struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}
