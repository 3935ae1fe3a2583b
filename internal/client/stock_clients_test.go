package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const naverChartBody = `<?xml version="1.0" encoding="EUC-KR" ?>
<protocol>
<chartdata symbol="005930" name="Samsung" count="2" timeframe="day" precision="0" origintime="20240101">
<item data="20240102|71000|72900|71000|72700|12345678"/>
<item data="20240103|72800|73400|72500|73200|23456789"/>
</chartdata>
</protocol>`

func TestNaverDailyClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sise.nhn", r.URL.Path)
		assert.Equal(t, "005930", r.URL.Query().Get("symbol"))
		_, _ = w.Write([]byte(naverChartBody))
	}))
	defer srv.Close()

	c := NewNaverChartClient(srv.URL, 2*time.Second, zap.NewNop())
	price, err := c.DailyClose(context.Background(), "005930")
	require.NoError(t, err)
	assert.InDelta(t, 73200.0, price, 1e-9, "most recent item's close must win")
}

func TestNaverDailyCloseNoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<protocol></protocol>`))
	}))
	defer srv.Close()

	c := NewNaverChartClient(srv.URL, 2*time.Second, zap.NewNop())
	_, err := c.DailyClose(context.Background(), "005930")
	assert.Error(t, err)
}

func TestYahooQuotePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/VOO", r.URL.Path)
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"VOO","currency":"USD","regularMarketPrice":512.34}}],"error":null}}`))
	}))
	defer srv.Close()

	c := NewYahooQuoteClient(srv.URL, 2*time.Second, zap.NewNop())
	price, err := c.QuotePrice(context.Background(), "VOO")
	require.NoError(t, err)
	assert.InDelta(t, 512.34, price, 1e-9)
}

func TestYahooQuotePriceAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[],"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	c := NewYahooQuoteClient(srv.URL, 2*time.Second, zap.NewNop())
	_, err := c.QuotePrice(context.Background(), "NOPE")
	assert.Error(t, err)
}
