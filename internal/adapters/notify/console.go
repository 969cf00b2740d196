package notify

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/tmbacktest/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el resumen de la ejecución en el modo configurado.
func (c *Console) Notify(_ context.Context, s domain.Summary) error {
	if c.table {
		c.printFull(s)
	} else {
		c.printCompact(s)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(s domain.Summary) {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "[%s] %d records → %d trades, %d rejected | win %s | dd %s | capital $%.2f → $%.2f (%s)\n",
		now, s.Records, s.TotalTrades(), len(s.Rejected),
		fmtRate(s.WinRate), fmtPct(s.MaxDrawdownPct),
		s.InitialCapital, s.FinalCapital, fmtSignedPct(s.TotalReturnPct))
}

// printFull imprime el trade log, los rechazos y el bloque de métricas.
func (c *Console) printFull(s domain.Summary) {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] %d records evaluated → %d trades, %d rejected\n\n",
		now, s.Records, s.TotalTrades(), len(s.Rejected))

	if s.HasTrades() {
		c.printTrades(s.Trades)
	} else {
		fmt.Fprintln(c.out, "  No trades executed: no record matched any strategy.")
	}

	if len(s.Rejected) > 0 {
		c.printRejections(s.Rejected)
	}

	c.printMetrics(s)

	if breakdown := s.PerStrategy(); len(breakdown) > 0 {
		c.printBreakdown(breakdown)
	}
}

// printTrades imprime el trade log en orden de ejecución.
func (c *Console) printTrades(trades []domain.Trade) {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Token", "Strategy", "Entry", "Exit", "Alloc", "Return", "PnL", "Days")

	for i, t := range trades {
		table.Append(
			fmt.Sprintf("%d", i+1),
			t.Symbol,
			fmt.Sprintf("%s %s", t.Strategy.Icon(), t.Strategy.Label()),
			fmt.Sprintf("$%.2f", t.EntryPrice),
			fmt.Sprintf("$%.2f", t.ExitPrice),
			fmt.Sprintf("$%.2f", t.CapitalAllocated),
			fmtSignedPct(t.ReturnPct),
			fmt.Sprintf("$%.2f", t.PnL),
			fmt.Sprintf("%d", t.Strategy.HoldingDays()),
		)
	}
	table.Render()
}

// printRejections imprime los registros que no pudieron operarse.
func (c *Console) printRejections(rejected []domain.RejectedTrade) {
	fmt.Fprintf(c.out, "\n  REJECTED (%d):\n", len(rejected))
	table := tablewriter.NewWriter(c.out)
	table.Header("Token", "Strategy", "Reason")
	for _, r := range rejected {
		sym := r.Symbol
		if sym == "" {
			sym = "?"
		}
		table.Append(sym, r.Strategy.Icon(), reason(r.Err))
	}
	table.Render()
}

// printMetrics imprime el bloque agregado de la ejecución.
func (c *Console) printMetrics(s domain.Summary) {
	fmt.Fprintf(c.out, "\n  --- PERFORMANCE ---\n")
	fmt.Fprintf(c.out, "  Initial capital:  $%.2f\n", s.InitialCapital)
	fmt.Fprintf(c.out, "  Final capital:    $%.2f\n", s.FinalCapital)
	fmt.Fprintf(c.out, "  Total return:     %s\n", fmtSignedPct(s.TotalReturnPct))
	fmt.Fprintf(c.out, "  Win rate:         %s (%dW/%dL)\n", fmtRate(s.WinRate), s.Wins, s.Losses)
	fmt.Fprintf(c.out, "  Avg win:          %s\n", fmtAvg(s.AvgWinPct, s.Wins))
	fmt.Fprintf(c.out, "  Avg loss:         %s\n", fmtAvg(s.AvgLossPct, s.Losses))
	fmt.Fprintf(c.out, "  Profit factor:    %s\n", fmtFactor(s.ProfitFactor))
	fmt.Fprintf(c.out, "  Max drawdown:     %s\n", fmtPct(s.MaxDrawdownPct))
}

// printBreakdown imprime el agregado por estrategia.
func (c *Console) printBreakdown(stats []domain.StrategyStats) {
	fmt.Fprintf(c.out, "\n  BY STRATEGY:\n")
	table := tablewriter.NewWriter(c.out)
	table.Header("Strategy", "Trades", "Wins", "PnL", "Avg return")
	for _, st := range stats {
		table.Append(
			fmt.Sprintf("%s %s", st.Strategy.Icon(), st.Strategy.Label()),
			fmt.Sprintf("%d", st.Trades),
			fmt.Sprintf("%d", st.Wins),
			fmt.Sprintf("$%.2f", st.TotalPnL),
			fmtSignedPct(st.AvgReturn),
		)
	}
	table.Render()
	fmt.Fprintln(c.out)
}

// PrintValidation imprime la clasificación criterio a criterio de cada
// registro. Es la vista del flag -validate.
func (c *Console) PrintValidation(records []domain.MetricsRecord) {
	fmt.Fprintln(c.out, "\n=== VALIDATION: classification step-by-step ===")

	for i, rec := range records {
		fmt.Fprintf(c.out, "\n--- #%d: %s (grade %.2f, holding %.4f, signal %.4f, trend %t) ---\n",
			i+1, rec.Symbol, rec.Grade, rec.HoldingReturn, rec.SignalReturn, rec.TrendPositive)

		if err := rec.Validate(); err != nil {
			fmt.Fprintf(c.out, "  INVALID: %s\n", reason(err))
			continue
		}

		for _, check := range domain.Explain(rec) {
			fmt.Fprintf(c.out, "  %s %s\n", check.Strategy.Icon(), check.Strategy.Label())
			for _, crit := range check.Criteria {
				mark := "✗"
				if crit.Pass {
					mark = "✓"
				}
				fmt.Fprintf(c.out, "      %s %-24s %s\n", mark, crit.Name, crit.Actual)
			}
		}

		if strat, ok := domain.Classify(rec); ok {
			fmt.Fprintf(c.out, "  >>> SELECTED: %s %s\n", strat.Icon(), strat.Label())
		} else {
			fmt.Fprintf(c.out, "  >>> SELECTED: none\n")
		}
	}
	fmt.Fprintln(c.out)
}

// PrintHistory imprime las ejecuciones persistidas más recientes.
func (c *Console) PrintHistory(runs []domain.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "  No stored runs yet.")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("When", "Dataset", "Records", "Trades", "Rejected", "Return", "Win rate", "Drawdown", "Final")
	for _, r := range runs {
		table.Append(
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Dataset,
			fmt.Sprintf("%d", r.Records),
			fmt.Sprintf("%d", r.Trades),
			fmt.Sprintf("%d", r.Rejected),
			fmtSignedPct(r.TotalReturnPct),
			fmtRate(r.WinRate),
			fmtPct(r.MaxDrawdownPct),
			fmt.Sprintf("$%.2f", r.FinalCapital),
		)
	}
	table.Render()
}

// --- helpers ---

// fmtPct formatea una fracción como porcentaje sin signo (0.1532 → "15.32%").
func fmtPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// fmtSignedPct formatea una fracción como porcentaje con signo explícito.
func fmtSignedPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v*100)
}

// fmtRate formatea el win rate; NaN significa que no hubo trades.
func fmtRate(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}

// fmtFactor formatea el profit factor (inf sin pérdidas, n/a sin trades).
func fmtFactor(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", v)
}

// fmtAvg formatea un retorno medio, n/a cuando no hay trades en ese lado.
func fmtAvg(v float64, n int) string {
	if n == 0 {
		return "n/a"
	}
	return fmtSignedPct(v)
}

// reason devuelve el texto del error de rechazo.
func reason(err error) string {
	if err == nil {
		return "-"
	}
	return err.Error()
}
