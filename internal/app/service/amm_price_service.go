package service

import (
	"context"
	"math"
	"math/big"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	v2FeeTiers = []int64{3000}
	v3FeeTiers = []int64{100, 300, 3000, 10000}
	// Quote sizes as a percent of the reference quantity. Full-size quotes
	// compete on their own; half-size quotes only compete as summed pairs,
	// modelling an order split across two pools.
	quoteSizePercents = []int{50, 100}
)

// AMMPriceService implements port.BestPriceSource by fanning out pool quote
// calls across protocol versions, fee tiers and order sizes, then picking the
// best executable candidate for the requested side.
type AMMPriceService struct {
	quoter        port.PoolQuoter
	maxConcurrent int
	logger        *zap.Logger
}

var _ port.BestPriceSource = (*AMMPriceService)(nil)

// NewAMMPriceService creates an AMMPriceService. maxConcurrent bounds the
// number of in-flight pool quote calls.
func NewAMMPriceService(quoter port.PoolQuoter, maxConcurrent int, logger *zap.Logger) *AMMPriceService {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &AMMPriceService{
		quoter:        quoter,
		maxConcurrent: maxConcurrent,
		logger:        logger.Named("amm_price_service"),
	}
}

type quoteAttemptSpec struct {
	version entity.ExchangeVersion
	feeTier int64
	percent int
}

func attemptSpecs() []quoteAttemptSpec {
	var specs []quoteAttemptSpec
	for _, pct := range quoteSizePercents {
		for _, fee := range v2FeeTiers {
			specs = append(specs, quoteAttemptSpec{version: entity.ExchangeV2, feeTier: fee, percent: pct})
		}
		for _, fee := range v3FeeTiers {
			specs = append(specs, quoteAttemptSpec{version: entity.ExchangeV3, feeTier: fee, percent: pct})
		}
	}
	return specs
}

// BestPrice implements port.BestPriceSource. The returned price is tokenA
// denominated in tokenB per one reference unit of tokenA. Selling picks the
// lowest candidate, buying the highest. The boolean is false when every pool
// attempt failed.
func (s *AMMPriceService) BestPrice(ctx context.Context, tokenA, tokenB entity.TokenMeta, side entity.TradeSide) (float64, bool) {
	specs := attemptSpecs()
	attempts := make([]entity.PoolQuoteAttempt, len(specs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for i, spec := range specs {
		g.Go(func() error {
			attempts[i] = s.runAttempt(gCtx, tokenA, tokenB, side, spec)
			return nil
		})
	}
	_ = g.Wait()

	var singles, splits []float64
	for _, a := range attempts {
		outcome := "ok"
		if !a.OK {
			outcome = "error"
			s.logger.Debug("Pool quote attempt failed",
				zap.String("version", string(a.Version)),
				zap.Int64("fee_tier", a.FeeTier),
				zap.Int("size_percent", a.SizePercent),
				zap.Error(a.Err))
		}
		metrics.PoolQuoteAttempts.WithLabelValues(string(a.Version), outcome).Inc()
		if !a.OK {
			continue
		}
		if a.SizePercent == 100 {
			singles = append(singles, a.Price)
		} else {
			splits = append(splits, a.Price)
		}
	}

	price, ok := bestCandidate(singles, splits, side)
	if !ok {
		s.logger.Warn("No pool produced a usable quote",
			zap.String("token_a", tokenA.Symbol),
			zap.String("token_b", tokenB.Symbol),
			zap.String("side", string(side)))
		return 0, false
	}

	s.logger.Debug("Best pool price selected",
		zap.String("token_a", tokenA.Symbol),
		zap.String("token_b", tokenB.Symbol),
		zap.String("side", string(side)),
		zap.Float64("price", price))
	return price, true
}

// runAttempt issues one pool quote. Selling quotes the output of tokenB for a
// sized amount of tokenA; buying quotes the tokenB input required to receive
// that amount of tokenA. Both directions are normalized by the full reference
// quantity of tokenB, so half-size quotes come out as half-prices.
func (s *AMMPriceService) runAttempt(ctx context.Context, tokenA, tokenB entity.TokenMeta, side entity.TradeSide, spec quoteAttemptSpec) entity.PoolQuoteAttempt {
	attempt := entity.PoolQuoteAttempt{
		Version:     spec.version,
		FeeTier:     spec.feeTier,
		SizePercent: spec.percent,
	}

	amountA := sizedReferenceQty(tokenA.Decimals, spec.percent)

	var amountB *big.Int
	var err error
	switch side {
	case entity.SideSell:
		amountB, err = s.quoter.QuoteExactInput(ctx, spec.version, tokenA.Address, tokenB.Address, amountA, spec.feeTier)
	default:
		amountB, err = s.quoter.QuoteExactOutput(ctx, spec.version, tokenB.Address, tokenA.Address, amountA, spec.feeTier)
	}
	if err != nil {
		attempt.Err = err
		return attempt
	}

	attempt.Price = normalizeAmount(amountB, tokenB.Decimals)
	attempt.OK = true
	return attempt
}

// sizedReferenceQty returns percent% of one whole token in raw units.
func sizedReferenceQty(decimals uint8, percent int) *big.Int {
	qty := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	qty.Mul(qty, big.NewInt(int64(percent)))
	return qty.Div(qty, big.NewInt(100))
}

func normalizeAmount(amount *big.Int, decimals uint8) float64 {
	f, _ := new(big.Float).SetInt(amount).Float64()
	return f / math.Pow10(int(decimals))
}

// bestCandidate picks the best executable price from full-size quotes and
// summed ordered pairs of distinct half-size quotes. Returns false when there
// are no candidates at all.
func bestCandidate(singles, splits []float64, side entity.TradeSide) (float64, bool) {
	candidates := make([]float64, 0, len(singles)+len(splits)*(len(splits)-1))
	candidates = append(candidates, singles...)
	for i := range splits {
		for j := range splits {
			if i == j {
				continue
			}
			candidates = append(candidates, splits[i]+splits[j])
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if side == entity.SideSell {
			if c < best {
				best = c
			}
		} else if c > best {
			best = c
		}
	}
	return best, true
}
