package entity

// AvgPriceResponse is the exchange average-price payload, e.g.
// {"mins":5,"price":"3012.41"}.
type AvgPriceResponse struct {
	Mins  int64  `json:"mins"`
	Price string `json:"price"`
}

// TickerPriceResponse is the exchange last-price payload.
type TickerPriceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// YahooChartResponse is the subset of the Yahoo chart payload we read.
type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}
