package entity

// PortfolioRow is one derived output row. Recomputed from scratch every run.
type PortfolioRow struct {
	Symbol       string     `json:"symbol"`
	Amount       float64    `json:"amount"`
	Class        AssetClass `json:"class"`
	LocalValue   float64    `json:"local_value"`
	USDValue     float64    `json:"usd_value"`
	ETHValue     float64    `json:"eth_value,omitempty"`
	HasETHValue  bool       `json:"has_eth_value"`
	UnitPriceUSD float64    `json:"unit_price_usd"`
}

// PortfolioReport is the full valuation result of one aggregation pass.
type PortfolioReport struct {
	CryptoRows []PortfolioRow `json:"crypto_rows"`
	StockRows  []PortfolioRow `json:"stock_rows"`

	CryptoTotalUSD   float64 `json:"crypto_total_usd"`
	CryptoTotalLocal float64 `json:"crypto_total_local"`
	StockTotalLocal  float64 `json:"stock_total_local"`
	TotalUSD         float64 `json:"total_usd"`
	TotalLocal       float64 `json:"total_local"`

	CryptoInvestmentLocal float64 `json:"crypto_investment_local"`
	StockInvestmentLocal  float64 `json:"stock_investment_local"`

	CryptoProfitLocal float64 `json:"crypto_profit_local"`
	StockProfitLocal  float64 `json:"stock_profit_local"`
	TotalProfitLocal  float64 `json:"total_profit_local"`

	// ProfitPositive drives the display style of the profit row.
	ProfitPositive bool `json:"profit_positive"`

	LocalCurrency string  `json:"local_currency"`
	USDToLocal    float64 `json:"usd_to_local"`

	// HighlightPrices holds the resolved USD unit price of configured
	// highlight symbols for the notification message.
	HighlightPrices map[string]float64 `json:"highlight_prices,omitempty"`
}
