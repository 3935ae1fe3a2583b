package holdingsloader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"

	"github.com/shopspring/decimal"
)

const defaultHoldingsFilePath = "data/holdings.csv"

// HoldingsFileLoader implements the port.HoldingsProvider interface by loading
// portfolio rows from a CSV file with the columns
// ASSET,AMOUNT,CLASS,SUBTYPE,ADDRESS,DECIMALS,TICKER.
type HoldingsFileLoader struct {
	filePath   string
	loggerInfo func(msg string, args ...any)
	loggerWarn func(msg string, args ...any)
}

// NewHoldingsFileLoader creates a new HoldingsFileLoader reading from filePath,
// falling back to the default path when filePath is empty.
func NewHoldingsFileLoader(filePath string, loggerInfo, loggerWarn func(msg string, args ...any)) port.HoldingsProvider {
	if filePath == "" {
		filePath = defaultHoldingsFilePath
	}
	return &HoldingsFileLoader{
		filePath:   filePath,
		loggerInfo: loggerInfo,
		loggerWarn: loggerWarn,
	}
}

// GetHoldings reads and validates all portfolio rows from the configured file.
func (l *HoldingsFileLoader) GetHoldings() ([]entity.Holding, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open holdings file %s: %w", l.filePath, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var holdings []entity.Holding
	lineNum := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading holdings file %s: %w", l.filePath, err)
		}
		lineNum++

		if lineNum == 1 && isHeaderRow(record) {
			continue
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" || strings.HasPrefix(strings.TrimSpace(record[0]), "#") {
			continue
		}

		holding, err := parseRecord(record)
		if err != nil {
			if l.loggerWarn != nil {
				l.loggerWarn("Skipping invalid holdings row", "file", l.filePath, "line_number", lineNum, "error", err)
			}
			continue
		}
		holdings = append(holdings, holding)
	}

	if l.loggerInfo != nil {
		l.loggerInfo("Holdings loaded successfully from file", "count", len(holdings), "path", l.filePath)
	}
	return holdings, nil
}

func isHeaderRow(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "ASSET")
}

func parseRecord(record []string) (entity.Holding, error) {
	if len(record) < 4 {
		return entity.Holding{}, fmt.Errorf("expected at least 4 columns, got %d", len(record))
	}

	symbol := strings.ToUpper(strings.TrimSpace(record[0]))

	amount, err := parseAmount(record[1])
	if err != nil {
		return entity.Holding{}, fmt.Errorf("invalid amount %q: %w", record[1], err)
	}

	class, err := parseClass(record[2])
	if err != nil {
		return entity.Holding{}, err
	}
	subtype, err := parseSubtype(record[3], class)
	if err != nil {
		return entity.Holding{}, err
	}

	holding := entity.Holding{
		Symbol:  symbol,
		Amount:  amount,
		Class:   class,
		Subtype: subtype,
	}

	if len(record) > 4 {
		holding.Address = strings.TrimSpace(record[4])
	}
	if len(record) > 5 && strings.TrimSpace(record[5]) != "" {
		decimals, err := strconv.ParseUint(strings.TrimSpace(record[5]), 10, 8)
		if err != nil {
			return entity.Holding{}, fmt.Errorf("invalid decimals %q: %w", record[5], err)
		}
		holding.Decimals = uint8(decimals)
	}
	if len(record) > 6 {
		holding.Ticker = strings.TrimSpace(record[6])
	}

	return holding, nil
}

// parseAmount accepts human-formatted quantities with thousands separators,
// e.g. "1,250,000.5".
func parseAmount(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount must not be negative")
	}
	return d.InexactFloat64(), nil
}

func parseClass(raw string) (entity.AssetClass, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(entity.AssetClassCrypto):
		return entity.AssetClassCrypto, nil
	case string(entity.AssetClassStock):
		return entity.AssetClassStock, nil
	default:
		return "", fmt.Errorf("unknown asset class %q", raw)
	}
}

func parseSubtype(raw string, class entity.AssetClass) (entity.AssetSubtype, error) {
	subtype := entity.AssetSubtype(strings.ToLower(strings.TrimSpace(raw)))
	if subtype == entity.SubtypeInvestment {
		// Both classes may carry an invested-amount row.
		return subtype, nil
	}
	switch class {
	case entity.AssetClassCrypto:
		if subtype == entity.SubtypeDEX {
			return subtype, nil
		}
	case entity.AssetClassStock:
		if subtype == entity.SubtypeKRStock || subtype == entity.SubtypeUSStock {
			return subtype, nil
		}
	}
	return "", fmt.Errorf("subtype %q is not valid for asset class %q", raw, class)
}
