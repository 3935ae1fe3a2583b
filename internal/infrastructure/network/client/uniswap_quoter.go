package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Minimal ABI fragments for the pool quote calls.
const (
	v2RouterABI = `[
		{"name":"getAmountsOut","type":"function","stateMutability":"view","inputs":[{"name":"amountIn","type":"uint256"},{"name":"path","type":"address[]"}],"outputs":[{"name":"amounts","type":"uint256[]"}]},
		{"name":"getAmountsIn","type":"function","stateMutability":"view","inputs":[{"name":"amountOut","type":"uint256"},{"name":"path","type":"address[]"}],"outputs":[{"name":"amounts","type":"uint256[]"}]}
	]`
	v3QuoterABI = `[
		{"name":"quoteExactInputSingle","type":"function","stateMutability":"nonpayable","inputs":[{"name":"tokenIn","type":"address"},{"name":"tokenOut","type":"address"},{"name":"fee","type":"uint24"},{"name":"amountIn","type":"uint256"},{"name":"sqrtPriceLimitX96","type":"uint160"}],"outputs":[{"name":"amountOut","type":"uint256"}]},
		{"name":"quoteExactOutputSingle","type":"function","stateMutability":"nonpayable","inputs":[{"name":"tokenIn","type":"address"},{"name":"tokenOut","type":"address"},{"name":"fee","type":"uint24"},{"name":"amountOut","type":"uint256"},{"name":"sqrtPriceLimitX96","type":"uint160"}],"outputs":[{"name":"amountIn","type":"uint256"}]}
	]`
)

var (
	parsedQuoteABIs sync.Once
	parsedV2ABI     abi.ABI
	parsedV3ABI     abi.ABI
)

func initQuoteABIs() {
	parsedQuoteABIs.Do(func() {
		var err error
		parsedV2ABI, err = abi.JSON(strings.NewReader(v2RouterABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse v2 router ABI: %v", err))
		}
		parsedV3ABI, err = abi.JSON(strings.NewReader(v3QuoterABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse v3 quoter ABI: %v", err))
		}
	})
}

// UniswapQuoter implements port.PoolQuoter against the Uniswap v2 router and
// v3 quoter contracts via eth_call. Calls are rate limited so that a fan-out
// over many pools stays within the RPC provider's budget.
type UniswapQuoter struct {
	ethClient      *ethclient.Client
	v2Router       common.Address
	v3Quoter       common.Address
	rpcCallTimeout time.Duration
	limiter        *rate.Limiter
	logger         *zap.Logger
}

var _ port.PoolQuoter = (*UniswapQuoter)(nil)

// UniswapQuoterOptions configures the on-chain quoter.
type UniswapQuoterOptions struct {
	RPCURL             string
	V2RouterAddress    string
	V3QuoterAddress    string
	RPCCallTimeout     time.Duration
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// NewUniswapQuoter dials the RPC endpoint and builds a quoter.
func NewUniswapQuoter(ctx context.Context, opts UniswapQuoterOptions, logger *zap.Logger) (*UniswapQuoter, error) {
	initQuoteABIs()

	ethClient, err := ethclient.DialContext(ctx, opts.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC %s: %w", opts.RPCURL, err)
	}

	limit := rate.Limit(opts.RateLimitPerSecond)
	if opts.RateLimitPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := opts.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	return &UniswapQuoter{
		ethClient:      ethClient,
		v2Router:       common.HexToAddress(opts.V2RouterAddress),
		v3Quoter:       common.HexToAddress(opts.V3QuoterAddress),
		rpcCallTimeout: opts.RPCCallTimeout,
		limiter:        rate.NewLimiter(limit, burst),
		logger:         logger.Named("uniswap_quoter"),
	}, nil
}

// Close releases the underlying RPC connection.
func (q *UniswapQuoter) Close() {
	q.ethClient.Close()
}

// QuoteExactInput implements port.PoolQuoter. For v2 the fee tier is ignored
// since the protocol has a single fixed fee.
func (q *UniswapQuoter) QuoteExactInput(ctx context.Context, version entity.ExchangeVersion, tokenIn, tokenOut string, amountIn *big.Int, feeTier int64) (*big.Int, error) {
	switch version {
	case entity.ExchangeV2:
		return q.callV2(ctx, "getAmountsOut", amountIn, tokenIn, tokenOut, lastAmount)
	case entity.ExchangeV3:
		return q.callV3(ctx, "quoteExactInputSingle", tokenIn, tokenOut, feeTier, amountIn)
	default:
		return nil, fmt.Errorf("unknown exchange version %q", version)
	}
}

// QuoteExactOutput implements port.PoolQuoter.
func (q *UniswapQuoter) QuoteExactOutput(ctx context.Context, version entity.ExchangeVersion, tokenIn, tokenOut string, amountOut *big.Int, feeTier int64) (*big.Int, error) {
	switch version {
	case entity.ExchangeV2:
		return q.callV2(ctx, "getAmountsIn", amountOut, tokenIn, tokenOut, firstAmount)
	case entity.ExchangeV3:
		return q.callV3(ctx, "quoteExactOutputSingle", tokenIn, tokenOut, feeTier, amountOut)
	default:
		return nil, fmt.Errorf("unknown exchange version %q", version)
	}
}

func lastAmount(amounts []*big.Int) *big.Int  { return amounts[len(amounts)-1] }
func firstAmount(amounts []*big.Int) *big.Int { return amounts[0] }

func (q *UniswapQuoter) callV2(ctx context.Context, method string, amount *big.Int, tokenIn, tokenOut string, pick func([]*big.Int) *big.Int) (*big.Int, error) {
	path := []common.Address{common.HexToAddress(tokenIn), common.HexToAddress(tokenOut)}
	callData, err := parsedV2ABI.Pack(method, amount, path)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	output, err := q.ethCall(ctx, q.v2Router, callData)
	if err != nil {
		return nil, err
	}

	unpacked, err := parsedV2ABI.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	amounts, ok := unpacked[0].([]*big.Int)
	if !ok || len(amounts) == 0 {
		return nil, fmt.Errorf("unexpected %s result shape", method)
	}
	return pick(amounts), nil
}

func (q *UniswapQuoter) callV3(ctx context.Context, method string, tokenIn, tokenOut string, feeTier int64, amount *big.Int) (*big.Int, error) {
	callData, err := parsedV3ABI.Pack(method,
		common.HexToAddress(tokenIn),
		common.HexToAddress(tokenOut),
		big.NewInt(feeTier),
		amount,
		big.NewInt(0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	output, err := q.ethCall(ctx, q.v3Quoter, callData)
	if err != nil {
		return nil, err
	}

	unpacked, err := parsedV3ABI.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	result, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s result shape", method)
	}
	return result, nil
}

// ethCall performs a read-only contract call with the configured rate limit
// and per-call timeout. Quote contracts revert when no pool exists for the
// pair and fee tier; the revert surfaces here as a call error.
func (q *UniswapQuoter) ethCall(ctx context.Context, to common.Address, callData []byte) ([]byte, error) {
	if err := q.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait interrupted: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, q.rpcCallTimeout)
	defer cancel()

	output, err := q.ethClient.CallContract(callCtx, ethereum.CallMsg{To: &to, Data: callData}, nil)
	if err != nil {
		q.logger.Debug("Pool quote call failed", zap.String("contract", to.Hex()), zap.Error(err))
		return nil, fmt.Errorf("eth_call to %s failed: %w", to.Hex(), err)
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("eth_call to %s returned no data", to.Hex())
	}
	return output, nil
}
