package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9000\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "https://api.dexscreener.com", cfg.DEXScreener.BaseURL)
	assert.Equal(t, "https://api.mexc.com", cfg.Exchange.BaseURL)
	assert.Equal(t, "KRW", cfg.FiatRates.LocalCurrency)
	assert.Equal(t, 10, cfg.AMM.MaxConcurrentQuotes)
	assert.Equal(t, []string{"TAO", "ETH"}, cfg.Notify.HighlightSymbols)
	assert.Equal(t, 60, cfg.Cache.QuoteTTLSeconds)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	body := `
dexScreener:
  baseURL: "http://localhost:9999"
fiatRates:
  localCurrency: "EUR"
  currencySign: "€"
notify:
  highlightSymbols: ["BTC"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", cfg.DEXScreener.BaseURL)
	assert.Equal(t, "EUR", cfg.FiatRates.LocalCurrency)
	assert.Equal(t, []string{"BTC"}, cfg.Notify.HighlightSymbols)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.test/hook")
	t.Setenv("MEXC_API_KEY", "key123")

	var cfg Config
	ApplyEnv(&cfg)

	assert.Equal(t, "https://discord.test/hook", cfg.Notify.WebhookURL)
	assert.Equal(t, "key123", cfg.Exchange.APIKey)
}
