package fiatrates

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"portfolio_tracker/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ratesCSV = "Date, USD, JPY, KRW, GBP, \n" +
	"2024-05-03, 1.0765, 164.28, 1462.45, N/A, \n" +
	"2024-05-02, 1.0715, 166.90, 1458.11, 0.8561, \n"

func buildArchive(t *testing.T, csvBody string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("eurofxref-hist.csv")
	require.NoError(t, err)
	_, err = f.Write([]byte(csvBody))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newArchiveServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()

	archive := buildArchive(t, ratesCSV)
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(archive)
	}))
}

func newTestProvider(t *testing.T, url, cacheDir string) *Provider {
	t.Helper()

	p, err := NewProvider(Options{
		ArchiveURL:     url,
		CacheDir:       cacheDir,
		RequestTimeout: 2 * time.Second,
	}, logger.NewAdapter())
	require.NoError(t, err)
	return p
}

func TestProviderDownloadsAndComputesRates(t *testing.T) {
	var hits atomic.Int64
	srv := newArchiveServer(t, &hits)
	defer srv.Close()

	p := newTestProvider(t, srv.URL, t.TempDir())

	rate, err := p.GetRate("USD", "KRW")
	require.NoError(t, err)
	assert.InDelta(t, 1462.45/1.0765, rate, 1e-9)

	rate, err = p.GetRate("EUR", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 1.0765, rate, 1e-9)

	assert.Equal(t, "2024-05-03", p.RateDate())
	assert.Equal(t, int64(1), hits.Load())
}

func TestProviderUsesFreshCache(t *testing.T) {
	var hits atomic.Int64
	srv := newArchiveServer(t, &hits)
	defer srv.Close()

	cacheDir := t.TempDir()
	newTestProvider(t, srv.URL, cacheDir)
	newTestProvider(t, srv.URL, cacheDir)

	assert.Equal(t, int64(1), hits.Load())
}

func TestProviderRefreshesStaleCacheAndCleansUp(t *testing.T) {
	var hits atomic.Int64
	srv := newArchiveServer(t, &hits)
	defer srv.Close()

	cacheDir := t.TempDir()
	old := filepath.Join(cacheDir, "ecb-2020-01-01.csv")
	require.NoError(t, os.WriteFile(old, []byte("Date, USD, \n2020-01-01, 1.12, \n"), 0o644))

	current := cacheFilePath(cacheDir)
	require.NoError(t, os.WriteFile(current, []byte("stale"), 0o644))
	expired := time.Now().Add(-25 * time.Hour)
	require.NoError(t, os.Chtimes(current, expired, expired))

	p := newTestProvider(t, srv.URL, cacheDir)

	rate, err := p.GetRate("USD", "JPY")
	require.NoError(t, err)
	assert.InDelta(t, 164.28/1.0765, rate, 1e-9)
	assert.Equal(t, int64(1), hits.Load())

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err), "dated cache file from an earlier day should be removed")
}

func TestProviderFailsWithoutCacheOrRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	srv.Close()

	_, err := NewProvider(Options{
		ArchiveURL:     srv.URL,
		CacheDir:       t.TempDir(),
		RequestTimeout: time.Second,
	}, logger.NewAdapter())
	require.Error(t, err)
}

func TestProviderRejectsUnknownCurrency(t *testing.T) {
	var hits atomic.Int64
	srv := newArchiveServer(t, &hits)
	defer srv.Close()

	p := newTestProvider(t, srv.URL, t.TempDir())

	_, err := p.GetRate("USD", "XXX")
	require.Error(t, err)

	// GBP is N/A on the most recent row, so it must not resolve.
	_, err = p.GetRate("USD", "GBP")
	require.Error(t, err)
}
