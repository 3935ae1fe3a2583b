package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	wire "portfolio_tracker/internal/entity"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// YahooQuoteClient fetches the regular-market price for a US ticker,
// denominated in USD.
type YahooQuoteClient interface {
	QuotePrice(ctx context.Context, ticker string) (float64, error)
}

type yahooQuoteClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewYahooQuoteClient creates a new Yahoo finance quote client.
func NewYahooQuoteClient(baseURL string, timeout time.Duration, logger *zap.Logger) YahooQuoteClient {
	return &yahooQuoteClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("YahooQuoteClient"),
	}
}

// QuotePrice implements YahooQuoteClient.
func (c *yahooQuoteClientImpl) QuotePrice(ctx context.Context, ticker string) (float64, error) {
	if ticker == "" {
		return 0, fmt.Errorf("ticker cannot be empty")
	}

	requestURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", c.baseURL, ticker)
	c.logger.Debug("Requesting quote", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("User-Agent", "portfolio-tracker/1.0")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return 0, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			return 0, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return 0, fmt.Errorf("quote request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	var payload wire.YahooChartResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return 0, fmt.Errorf("failed to unmarshal quote response from %s: %w", requestURL, err)
	}
	if payload.Chart.Error != nil {
		return 0, fmt.Errorf("quote lookup for %s failed: %s", ticker, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return 0, fmt.Errorf("no quote result returned for ticker %s", ticker)
	}

	price := payload.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("non-positive quote %f returned for ticker %s", price, ticker)
	}
	return price, nil
}
