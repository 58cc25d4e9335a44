package dto

// YahooChartResponse mirrors the v8 chart API payload, reduced to the fields
// the candle repository consumes.
type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []YahooQuote `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// YahooQuote is one column-oriented OHLCV block of the chart payload. The
// slices are not guaranteed to share a length with the timestamp array.
type YahooQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

// YahooQuoteSummaryResponse carries the fundamentals snapshot fields used by
// the investor style.
type YahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				TrailingPE YahooRawValue `json:"trailingPE"`
				ForwardPE  YahooRawValue `json:"forwardPE"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				PriceToBook YahooRawValue `json:"priceToBook"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				ReturnOnEquity YahooRawValue `json:"returnOnEquity"`
				DebtToEquity   YahooRawValue `json:"debtToEquity"`
				EarningsGrowth YahooRawValue `json:"earningsGrowth"`
			} `json:"financialData"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"quoteSummary"`
}

// YahooRawValue is Yahoo's {raw, fmt} number wrapper.
type YahooRawValue struct {
	Raw float64 `json:"raw"`
}
