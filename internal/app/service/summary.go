package service

import (
	"fmt"
	"strings"

	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/utils"
)

// BuildSummaryMessage renders a report as a short notification text: the
// portfolio total, the signed profit and the unit price of each highlight
// symbol. currencySign prefixes local-currency amounts.
func BuildSummaryMessage(report *entity.PortfolioReport, currencySign string, highlightSymbols []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Portfolio total: %s%s\n", currencySign, utils.FormatGrouped(report.TotalLocal, 3, 0))
	fmt.Fprintf(&b, "Crypto: %s%s (%s)\n",
		currencySign, utils.FormatGrouped(report.CryptoTotalLocal, 3, 0),
		signedAmount(report.CryptoProfitLocal, currencySign))
	fmt.Fprintf(&b, "Stocks: %s%s (%s)\n",
		currencySign, utils.FormatGrouped(report.StockTotalLocal, 3, 0),
		signedAmount(report.StockProfitLocal, currencySign))
	fmt.Fprintf(&b, "Profit: %s", signedAmount(report.TotalProfitLocal, currencySign))

	for _, symbol := range highlightSymbols {
		symbol = strings.ToUpper(symbol)
		price, ok := report.HighlightPrices[symbol]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n%s: $%s", symbol, utils.FormatGrouped(price, 3, 2))
	}

	return b.String()
}

// signedAmount renders an amount with an explicit sign ahead of the currency
// symbol, e.g. "+₩1,234" or "-₩1,234".
func signedAmount(v float64, currencySign string) string {
	s := utils.FormatGrouped(v, 3, 0)
	if strings.HasPrefix(s, "-") {
		return "-" + currencySign + strings.TrimPrefix(s, "-")
	}
	return "+" + currencySign + s
}
