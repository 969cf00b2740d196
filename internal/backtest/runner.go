package backtest

import (
	"fmt"
	"math"

	"github.com/alejandrodnm/tmbacktest/internal/domain"
)

// Runner ejecuta una pasada completa: clasifica cada registro, dimensiona la
// posición, resuelve precios y simula como máximo un trade por registro.
// Sin estado entre ejecuciones: cada Run parte de un portfolio limpio y
// devuelve el Summary completo, así que dos pasadas sobre el mismo input
// producen exactamente el mismo resultado.
type Runner struct {
	Prices PriceFunc
	Sizing AllocationPolicy
}

// New crea un runner con el modelo de precios y el sizing por defecto.
func New() Runner {
	return Runner{
		Prices: PriceModel{Base: DefaultBasePrice}.Prices,
		Sizing: DefaultAllocation(),
	}
}

// portfolio es el estado de capital de una única ejecución. Vive solo
// dentro de Run; el drawdown se actualiza pico a valle con cada trade.
type portfolio struct {
	capital     float64
	peak        float64
	maxDrawdown float64
}

func newPortfolio(initial float64) *portfolio {
	return &portfolio{capital: initial, peak: initial}
}

// apply suma el pnl del trade y actualiza pico y drawdown máximo.
func (p *portfolio) apply(pnl float64) {
	p.capital += pnl
	if p.capital > p.peak {
		p.peak = p.capital
		return
	}
	if dd := (p.peak - p.capital) / p.peak; dd > p.maxDrawdown {
		p.maxDrawdown = dd
	}
}

// Run recorre los registros en orden de entrada y devuelve el resumen.
// Los fallos por registro (InvalidInput, OverAllocation) nunca abortan el
// batch: quedan en Summary.Rejected y la pasada continúa. Solo un parámetro
// de ejecución inválido devuelve error.
func (r Runner) Run(records []domain.MetricsRecord, initialCapital float64) (domain.Summary, error) {
	if !finite(initialCapital) || initialCapital <= 0 {
		return domain.Summary{}, fmt.Errorf("backtest.Run: initial capital %.2f: %w", initialCapital, domain.ErrInvalidInput)
	}

	prices := r.Prices
	if prices == nil {
		prices = PriceModel{Base: DefaultBasePrice}.Prices
	}

	sum := domain.Summary{InitialCapital: initialCapital}
	pf := newPortfolio(initialCapital)

	for _, rec := range records {
		sum.Records++

		if err := rec.Validate(); err != nil {
			sum.Rejected = append(sum.Rejected, domain.RejectedTrade{Symbol: rec.Symbol, Err: err})
			continue
		}

		strat, ok := domain.Classify(rec)
		if !ok {
			continue
		}

		alloc := pf.capital * r.Sizing.Fraction(strat)
		if alloc > pf.capital {
			err := fmt.Errorf("backtest.Run: %s needs %.2f with %.2f available: %w",
				rec.Symbol, alloc, pf.capital, domain.ErrOverAllocation)
			sum.Rejected = append(sum.Rejected, domain.RejectedTrade{Symbol: rec.Symbol, Strategy: strat, Err: err})
			continue
		}

		entry, exit := prices(rec, strat)
		trade, err := domain.Simulate(entry, exit, alloc)
		if err != nil {
			sum.Rejected = append(sum.Rejected, domain.RejectedTrade{Symbol: rec.Symbol, Strategy: strat, Err: err})
			continue
		}
		trade.Symbol = rec.Symbol
		trade.Strategy = strat

		sum.Trades = append(sum.Trades, trade)
		pf.apply(trade.PnL)
	}

	finalize(&sum, pf)
	return sum, nil
}

// finalize calcula las métricas agregadas a partir del log de trades.
// Los trades con retorno exactamente cero cuentan en el total pero ni como
// ganadores ni como perdedores.
func finalize(s *domain.Summary, pf *portfolio) {
	s.FinalCapital = pf.capital
	s.MaxDrawdownPct = pf.maxDrawdown
	s.TotalReturnPct = (pf.capital - s.InitialCapital) / s.InitialCapital

	var grossWin, grossLoss, winRet, lossRet float64
	for _, t := range s.Trades {
		switch {
		case t.ReturnPct > 0:
			s.Wins++
			grossWin += t.PnL
			winRet += t.ReturnPct
		case t.ReturnPct < 0:
			s.Losses++
			grossLoss -= t.PnL
			lossRet += t.ReturnPct
		}
	}

	if n := s.TotalTrades(); n > 0 {
		s.WinRate = float64(s.Wins) / float64(n)
	} else {
		s.WinRate = math.NaN()
	}
	if s.Wins > 0 {
		s.AvgWinPct = winRet / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLossPct = lossRet / float64(s.Losses)
	}
	switch {
	case !s.HasTrades():
		s.ProfitFactor = math.NaN()
	case grossLoss == 0:
		s.ProfitFactor = math.Inf(1)
	default:
		s.ProfitFactor = grossWin / grossLoss
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
