package holdingsloader

import (
	"os"
	"path/filepath"
	"testing"

	"portfolio_tracker/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHoldingsFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "holdings.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGetHoldingsParsesAllColumns(t *testing.T) {
	path := writeHoldingsFile(t, ""+
		"ASSET,AMOUNT,CLASS,SUBTYPE,ADDRESS,DECIMALS,TICKER\n"+
		"eth,2.5,crypto,dex,,,\n"+
		"PEPE,\"1,250,000.5\",crypto,dex,0x6982508145454Ce325dDbE47a25d4ec3d2311933,18,\n"+
		"inv,\"30,000,000\",crypto,inv,,,\n"+
		"SAMSUNG,10,stock,kr,,,005930\n"+
		"AAPL,3,stock,us,,,AAPL\n")

	loader := NewHoldingsFileLoader(path, nil, nil)
	holdings, err := loader.GetHoldings()
	require.NoError(t, err)
	require.Len(t, holdings, 5)

	assert.Equal(t, entity.Holding{Symbol: "ETH", Amount: 2.5, Class: entity.AssetClassCrypto, Subtype: entity.SubtypeDEX}, holdings[0])

	pepe := holdings[1]
	assert.Equal(t, "PEPE", pepe.Symbol)
	assert.InDelta(t, 1250000.5, pepe.Amount, 1e-9)
	assert.Equal(t, "0x6982508145454Ce325dDbE47a25d4ec3d2311933", pepe.Address)
	assert.Equal(t, uint8(18), pepe.Decimals)

	assert.Equal(t, entity.SubtypeInvestment, holdings[2].Subtype)
	assert.InDelta(t, 30000000.0, holdings[2].Amount, 1e-9)

	assert.Equal(t, entity.SubtypeKRStock, holdings[3].Subtype)
	assert.Equal(t, "005930", holdings[3].Ticker)
	assert.Equal(t, entity.SubtypeUSStock, holdings[4].Subtype)
}

func TestGetHoldingsSkipsInvalidRows(t *testing.T) {
	path := writeHoldingsFile(t, ""+
		"ASSET,AMOUNT,CLASS,SUBTYPE\n"+
		"# commented out,1,crypto,dex\n"+
		"ETH,not-a-number,crypto,dex\n"+
		"ETH,1,bond,dex\n"+
		"ETH,1,crypto,kr\n"+
		"ETH,-1,crypto,dex\n"+
		"BTC,0.5,crypto,dex\n")

	var warned int
	loader := NewHoldingsFileLoader(path, nil, func(msg string, args ...any) { warned++ })

	holdings, err := loader.GetHoldings()
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "BTC", holdings[0].Symbol)
	assert.Equal(t, 4, warned)
}

func TestGetHoldingsMissingFile(t *testing.T) {
	loader := NewHoldingsFileLoader(filepath.Join(t.TempDir(), "nope.csv"), nil, nil)
	_, err := loader.GetHoldings()
	require.Error(t, err)
}
