package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// dashboardHTML is a self-contained page: it fetches the report and chart
// endpoints and renders a valuation table plus an allocation pie on a canvas.
const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Portfolio</title>
<style>
  body { font-family: monospace; background: #111; color: #ddd; margin: 2rem; }
  table { border-collapse: collapse; margin-bottom: 2rem; }
  th, td { border: 1px solid #444; padding: 4px 10px; text-align: right; }
  th:first-child, td:first-child { text-align: left; }
  .profit-up { color: #4caf50; }
  .profit-down { color: #ef5350; }
  .investment { color: #ba68c8; }
</style>
</head>
<body>
<h2>Portfolio</h2>
<table id="report"><thead><tr>
  <th>TYPE</th><th>AMOUNT</th><th id="local-ccy">LOCAL</th><th>USD</th><th>ETH</th><th>PRICE(USD)</th>
</tr></thead><tbody></tbody></table>
<canvas id="pie" width="320" height="320"></canvas>
<script>
const fmt = (v, d = 0) => v.toLocaleString(undefined, {minimumFractionDigits: d, maximumFractionDigits: d});

function addRow(tbody, cells, cls) {
  const tr = document.createElement("tr");
  if (cls) tr.className = cls;
  for (const c of cells) {
    const td = document.createElement("td");
    td.textContent = c;
    tr.appendChild(td);
  }
  tbody.appendChild(tr);
}

async function loadReport() {
  const res = await fetch("/api/v1/report");
  const body = await res.json();
  const r = body.data.report;
  document.getElementById("local-ccy").textContent = r.local_currency;

  const tbody = document.querySelector("#report tbody");
  for (const row of [...r.crypto_rows, ...r.stock_rows]) {
    addRow(tbody, [
      row.symbol, fmt(row.amount, 2), fmt(row.local_value), fmt(row.usd_value, 2),
      row.has_eth_value ? fmt(row.eth_value, 4) : "", fmt(row.unit_price_usd, 2),
    ]);
  }
  addRow(tbody, ["INVESTMENT", "", fmt(r.crypto_investment_local + r.stock_investment_local), "", "", ""], "investment");
  addRow(tbody, ["TOTAL", "", fmt(r.total_local), fmt(r.total_usd, 2), "", ""]);
  const sign = r.profit_positive ? "+" : "";
  addRow(tbody, ["PROFIT", "", sign + fmt(r.total_profit_local), "", "", ""],
    r.profit_positive ? "profit-up" : "profit-down");
}

async function loadChart() {
  const res = await fetch("/api/v1/report/chart");
  const body = await res.json();
  const slices = body.data.slices || [];
  const total = slices.reduce((s, x) => s + x.local_value, 0);
  if (total <= 0) return;

  const ctx = document.getElementById("pie").getContext("2d");
  const colors = ["#4caf50", "#42a5f5", "#ba68c8", "#ffb74d", "#ef5350", "#26c6da", "#d4e157", "#8d6e63"];
  let angle = -Math.PI / 2;
  slices.forEach((s, i) => {
    const sweep = (s.local_value / total) * Math.PI * 2;
    ctx.beginPath();
    ctx.moveTo(160, 160);
    ctx.arc(160, 160, 150, angle, angle + sweep);
    ctx.closePath();
    ctx.fillStyle = colors[i % colors.length];
    ctx.fill();
    angle += sweep;
  });
}

loadReport().then(loadChart);
</script>
</body>
</html>`

// DashboardHandler serves the static dashboard page.
func DashboardHandler(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(dashboardHTML))
}
