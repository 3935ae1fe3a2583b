package port

// FiatRateProvider supplies same-day fiat conversion rates.
type FiatRateProvider interface {
	// GetRate returns how many units of `to` one unit of `from` buys.
	GetRate(from, to string) (float64, error)
}
