package console

import (
	"fmt"
	"strings"

	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/utils"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
	investmentStyle = cellStyle.Foreground(lipgloss.Color("13"))
	profitUpStyle   = cellStyle.Foreground(lipgloss.Color("10"))
	profitDownStyle = cellStyle.Foreground(lipgloss.Color("9"))
)

// Renderer renders a portfolio report as a styled terminal table.
type Renderer struct {
	currencySign string
}

// NewRenderer creates a Renderer. currencySign prefixes local-currency
// amounts.
func NewRenderer(currencySign string) *Renderer {
	return &Renderer{currencySign: currencySign}
}

// Render returns the report as a bordered table followed by the exchange-rate
// footer line.
func (r *Renderer) Render(report *entity.PortfolioReport) string {
	var rows [][]string
	styled := map[int]lipgloss.Style{}

	for _, row := range report.CryptoRows {
		rows = append(rows, r.assetRow(row))
	}
	for _, row := range report.StockRows {
		rows = append(rows, r.assetRow(row))
	}

	investment := report.CryptoInvestmentLocal + report.StockInvestmentLocal
	styled[len(rows)] = investmentStyle
	rows = append(rows, []string{"INVESTMENT", "", r.local(investment), "", "", ""})

	rows = append(rows, []string{
		"TOTAL", "",
		r.local(report.TotalLocal),
		utils.FormatGrouped(report.TotalUSD, 3, 2),
		"", "",
	})

	profitStyle := profitDownStyle
	if report.ProfitPositive {
		profitStyle = profitUpStyle
	}
	styled[len(rows)] = profitStyle
	rows = append(rows, []string{"PROFIT", "", r.signedLocal(report.TotalProfitLocal), "", "", ""})

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TYPE", "AMOUNT", report.LocalCurrency, "USD", "ETH", "PRICE(USD)").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if s, ok := styled[row]; ok {
				return s
			}
			return cellStyle
		})

	var b strings.Builder
	b.WriteString(t.Render())
	fmt.Fprintf(&b, "\n1 USD = %s %s\n",
		utils.FormatGrouped(report.USDToLocal, 3, 2), report.LocalCurrency)
	return b.String()
}

func (r *Renderer) assetRow(row entity.PortfolioRow) []string {
	eth := ""
	if row.HasETHValue {
		eth = utils.FormatGrouped(row.ETHValue, 3, 4)
	}
	return []string{
		row.Symbol,
		utils.FormatGrouped(row.Amount, 3, 2),
		r.local(row.LocalValue),
		utils.FormatGrouped(row.USDValue, 3, 2),
		eth,
		utils.FormatGrouped(row.UnitPriceUSD, 3, 2),
	}
}

func (r *Renderer) local(v float64) string {
	return r.currencySign + utils.FormatGrouped(v, 3, 0)
}

// signedLocal always carries an explicit sign, with the sign ahead of the
// currency symbol.
func (r *Renderer) signedLocal(v float64) string {
	s := utils.FormatGrouped(v, 3, 0)
	if strings.HasPrefix(s, "-") {
		return "-" + r.currencySign + strings.TrimPrefix(s, "-")
	}
	return "+" + r.currencySign + s
}
