package client

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// NaverChartClient fetches the daily price chart for a Korean ticker and
// returns the most recent close, denominated in KRW.
type NaverChartClient interface {
	DailyClose(ctx context.Context, ticker string) (float64, error)
}

type naverChartClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewNaverChartClient creates a new Naver finance chart client.
func NewNaverChartClient(baseURL string, timeout time.Duration, logger *zap.Logger) NaverChartClient {
	return &naverChartClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("NaverChartClient"),
	}
}

// itemPattern matches <item data="date|open|high|low|close|volume"/> entries
// in the chart payload.
var itemPattern = regexp.MustCompile(`<item\s+data="([^"]+)"`)

// DailyClose implements NaverChartClient.
func (c *naverChartClientImpl) DailyClose(ctx context.Context, ticker string) (float64, error) {
	if ticker == "" {
		return 0, fmt.Errorf("ticker cannot be empty")
	}

	requestURL := fmt.Sprintf("%s/sise.nhn?symbol=%s&timeframe=day&count=2&requestType=0", c.baseURL, ticker)
	c.logger.Debug("Requesting daily chart", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)

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
		return 0, fmt.Errorf("chart request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	matches := itemPattern.FindAllStringSubmatch(string(resp.Body()), -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("no chart items returned for ticker %s", ticker)
	}

	// The last item is the most recent trading day.
	fields := strings.Split(matches[len(matches)-1][1], "|")
	if len(fields) < 5 {
		return 0, fmt.Errorf("malformed chart item for ticker %s: %q", ticker, matches[len(matches)-1][1])
	}

	closePrice, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse close price %q for ticker %s: %w", fields[4], ticker, err)
	}
	return closePrice, nil
}
