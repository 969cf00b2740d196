package domain

import "time"

// RejectedTrade records a record the run could not trade. Rejections stay in
// the summary so a bad row is visible instead of silently dropped.
type RejectedTrade struct {
	Symbol   string
	Strategy Strategy // StrategyNone when the record failed before classification
	Err      error
}

// Summary is the outcome of one backtest run. Every return and drawdown
// figure is fractional (1.0 = +100%); rendering as two-decimal percentages
// belongs to the reporters, never to the core.
type Summary struct {
	InitialCapital float64
	FinalCapital   float64
	TotalReturnPct float64
	WinRate        float64 // NaN when no trade executed (reported as n/a)
	MaxDrawdownPct float64 // largest peak-to-trough fraction of the capital curve
	ProfitFactor   float64 // gross wins / gross losses; +Inf without losses, NaN without trades
	AvgWinPct      float64 // mean fractional return of winning trades, 0 when none
	AvgLossPct     float64 // mean fractional return of losing trades, 0 when none

	Records int // records evaluated, matched or not
	Wins    int // trades with return > 0
	Losses  int // trades with return < 0

	Trades   []Trade
	Rejected []RejectedTrade
}

// TotalTrades devuelve el número de trades ejecutados.
func (s Summary) TotalTrades() int { return len(s.Trades) }

// HasTrades indica si la ejecución cerró algún trade. Cuando es false,
// WinRate y ProfitFactor son NaN y los reporters imprimen "n/a".
func (s Summary) HasTrades() bool { return len(s.Trades) > 0 }

// StrategyStats agrega los trades ejecutados de una estrategia.
type StrategyStats struct {
	Strategy  Strategy
	Trades    int
	Wins      int
	TotalPnL  float64
	AvgReturn float64 // retorno fraccional medio de los trades de la estrategia
}

// PerStrategy devuelve las estadísticas agregadas de cada estrategia con
// trades ejecutados, en orden de prioridad.
func (s Summary) PerStrategy() []StrategyStats {
	var out []StrategyStats
	for _, st := range Strategies() {
		agg := StrategyStats{Strategy: st}
		var retSum float64
		for _, t := range s.Trades {
			if t.Strategy != st {
				continue
			}
			agg.Trades++
			if t.Win() {
				agg.Wins++
			}
			agg.TotalPnL += t.PnL
			retSum += t.ReturnPct
		}
		if agg.Trades == 0 {
			continue
		}
		agg.AvgReturn = retSum / float64(agg.Trades)
		out = append(out, agg)
	}
	return out
}

// RunRecord es la vista persistida de una ejecución completada, tal y como
// se lee de vuelta del almacenamiento.
type RunRecord struct {
	ID             string
	CreatedAt      time.Time
	Dataset        string
	InitialCapital float64
	FinalCapital   float64
	TotalReturnPct float64
	WinRate        float64 // NaN cuando la ejecución no cerró trades
	MaxDrawdownPct float64
	Records        int
	Trades         int
	Rejected       int
}
