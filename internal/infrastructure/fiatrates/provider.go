package fiatrates

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"

	"github.com/valyala/fasthttp"
)

const (
	cacheFilePrefix = "ecb-"
	cacheFileSuffix = ".csv"
	cacheTTL        = 24 * time.Hour
)

// Options configures the fiat rate provider.
type Options struct {
	ArchiveURL     string
	CacheDir       string
	RequestTimeout time.Duration
}

// Provider implements port.FiatRateProvider on top of the ECB historical-rate
// archive. The most recent row is cached to a dated CSV file; a cached file
// younger than 24 hours (by modification time) is served without touching the
// network. Rates are quoted against EUR, the archive base.
type Provider struct {
	rates  map[string]float64
	date   string
	logger port.Logger
}

var _ port.FiatRateProvider = (*Provider)(nil)

// NewProvider builds a Provider, downloading the archive if the cached file
// is missing or stale. An unreachable remote with no fresh cache is fatal.
func NewProvider(opts Options, logger port.Logger) (*Provider, error) {
	path, err := ensureFreshFile(opts, logger)
	if err != nil {
		return nil, err
	}

	rates, date, err := parseMostRecentRow(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cached rate file %s: %w", path, err)
	}

	logger.Info("Fiat rates loaded", "date", date, "currencies", len(rates))
	return &Provider{rates: rates, date: date, logger: logger}, nil
}

// GetRate implements port.FiatRateProvider: one unit of `from` expressed in
// `to`, computed as the ratio of the two EUR-based columns.
func (p *Provider) GetRate(from, to string) (float64, error) {
	fromRate, err := p.eurRate(from)
	if err != nil {
		return 0, err
	}
	toRate, err := p.eurRate(to)
	if err != nil {
		return 0, err
	}
	if fromRate == 0 {
		return 0, fmt.Errorf("%w: zero rate for %s", entity.ErrRateUnavailable, from)
	}
	return toRate / fromRate, nil
}

// RateDate returns the date of the archive row in use.
func (p *Provider) RateDate() string {
	return p.date
}

func (p *Provider) eurRate(code string) (float64, error) {
	code = strings.ToUpper(code)
	if code == "EUR" {
		return 1.0, nil
	}
	rate, ok := p.rates[code]
	if !ok {
		return 0, fmt.Errorf("%w: no rate column for %s on %s", entity.ErrRateUnavailable, code, p.date)
	}
	return rate, nil
}

func cacheFilePath(cacheDir string) string {
	name := cacheFilePrefix + time.Now().Format("2006-01-02") + cacheFileSuffix
	return filepath.Join(cacheDir, name)
}

// ensureFreshFile returns the path to a rate file no older than the cache
// TTL, downloading and extracting the archive when needed. After a
// successful download every other dated cache file is deleted.
func ensureFreshFile(opts Options, logger port.Logger) (string, error) {
	path := cacheFilePath(opts.CacheDir)

	if fi, err := os.Stat(path); err == nil && time.Since(fi.ModTime()) < cacheTTL {
		logger.Debug("Using cached fiat rate file", "path", path)
		return path, nil
	}

	logger.Info("Fiat rate cache is missing or stale, downloading fresh archive", "url", opts.ArchiveURL)
	csvData, err := downloadArchive(opts.ArchiveURL, opts.RequestTimeout)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrRateUnavailable, err)
	}

	if err := os.MkdirAll(opts.CacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache dir %s: %w", opts.CacheDir, err)
	}
	if err := os.WriteFile(path, csvData, 0o644); err != nil {
		return "", fmt.Errorf("failed to write rate file %s: %w", path, err)
	}

	removeStaleFiles(opts.CacheDir, path, logger)
	return path, nil
}

func downloadArchive(url string, timeout time.Duration) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	client := &fasthttp.Client{}
	if err := client.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("failed to download rate archive from %s: %w", url, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("rate archive request to %s failed with status %d", url, resp.StatusCode())
	}

	body := resp.Body()
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to open rate archive: %w", err)
	}
	if len(zr.File) == 0 {
		return nil, fmt.Errorf("rate archive from %s contains no files", url)
	}

	f, err := zr.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open archived rate file: %w", err)
	}
	defer f.Close()

	return io.ReadAll(f)
}

func removeStaleFiles(cacheDir, keep string, logger port.Logger) {
	pattern := filepath.Join(cacheDir, cacheFilePrefix+"*"+cacheFileSuffix)
	stale, err := filepath.Glob(pattern)
	if err != nil {
		return
	}
	for _, f := range stale {
		if f == keep {
			continue
		}
		if err := os.Remove(f); err != nil {
			logger.Warn("Failed to remove stale rate file", "path", f, "error", err)
			continue
		}
		logger.Debug("Removed stale rate file", "path", f)
	}
}

// parseMostRecentRow reads the archive CSV (header of currency codes, rows of
// daily rates, most recent first) and returns the first data row keyed by
// currency code.
func parseMostRecentRow(path string) (map[string]float64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read header row: %w", err)
	}
	row, err := r.Read()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read most recent rate row: %w", err)
	}

	rates := make(map[string]float64, len(header))
	date := ""
	for i, code := range header {
		code = strings.TrimSpace(code)
		if i >= len(row) || code == "" {
			continue
		}
		value := strings.TrimSpace(row[i])
		if strings.EqualFold(code, "Date") {
			date = value
			continue
		}
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			// ECB marks unavailable rates as "N/A"; skip those columns.
			continue
		}
		rates[strings.ToUpper(code)] = rate
	}

	if len(rates) == 0 {
		return nil, "", fmt.Errorf("rate file %s has no parsable rates", path)
	}
	return rates, date, nil
}
