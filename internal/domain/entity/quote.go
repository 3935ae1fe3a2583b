package entity

// QuotePair is a directional price pair: Base priced in terms of Quote.
type QuotePair struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

// QuoteSource identifies which pricing path produced a quote.
type QuoteSource string

const (
	SourceDirect      QuoteSource = "direct"
	SourceDEXScreener QuoteSource = "dex-screener"
	SourceAMMBest     QuoteSource = "amm-best"
)

// PriceQuote is a resolved price for a pair. Computed once per aggregation
// pass and never persisted.
type PriceQuote struct {
	Pair   QuotePair   `json:"pair"`
	Value  float64     `json:"value"`
	Source QuoteSource `json:"source"`
}

// QuoteKind tags the shape of an exchange quote result.
type QuoteKind string

const (
	// QuoteDirect is a plain last-trade price.
	QuoteDirect QuoteKind = "direct"
	// QuoteAveraged is a rolling average price over a short window.
	QuoteAveraged QuoteKind = "averaged"
)

// ExchangeQuote is a tagged price result from a centralized exchange endpoint.
type ExchangeQuote struct {
	Kind  QuoteKind
	Value float64
}

// PairPrice is one counter-asset observation from the pair-discovery service:
// the base token priced in the chain's native asset and in USD.
type PairPrice struct {
	Native float64
	USD    float64
}

// ExchangeVersion selects an AMM protocol version for a pool quote.
type ExchangeVersion string

const (
	ExchangeV2 ExchangeVersion = "v2"
	ExchangeV3 ExchangeVersion = "v3"
)

// TradeSide selects the direction of an AMM best-price computation.
type TradeSide string

const (
	SideSell TradeSide = "sell"
	SideBuy  TradeSide = "buy"
)

// PoolQuoteAttempt is the outcome of a single (version, feeTier, sizePercent)
// pool price query. A failed attempt keeps its Err and is discarded by the
// aggregation step, it never aborts the batch.
type PoolQuoteAttempt struct {
	Version     ExchangeVersion
	FeeTier     int64
	SizePercent int
	Price       float64
	OK          bool
	Err         error
}
