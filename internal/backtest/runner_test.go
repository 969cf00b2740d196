package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/tmbacktest/internal/domain"
)

func sampleRecords() []domain.MetricsRecord {
	return []domain.MetricsRecord{
		{Symbol: "REQ", Grade: 88.21, HoldingReturn: 3.7339, SignalReturn: -0.8131, TrendPositive: true},
		{Symbol: "CRV", Grade: 85, HoldingReturn: -0.9423, SignalReturn: 6.8534, TrendPositive: true},
		{Symbol: "GURU", Grade: 81.27, HoldingReturn: 1.4655, SignalReturn: 2.8072, TrendPositive: true},
		{Symbol: "ISLAND", Grade: 73.72, HoldingReturn: -0.8191, SignalReturn: -0.0489, TrendPositive: true},
		{Symbol: "SUAI", Grade: 72.41, HoldingReturn: 1.9017, SignalReturn: 0.1487, TrendPositive: true},
	}
}

func TestRun_SampleDataset(t *testing.T) {
	sum, err := New().Run(sampleRecords(), 10000)
	require.NoError(t, err)

	// REQ  → hold:     alloc 0.15×10000.00 = 1500.00, ret +373.39% → pnl 5600.85, capital 15600.85
	// CRV  → reversal: alloc 0.05×15600.85 =  780.04, ret +685.34% → pnl 5345.94, capital 20946.79
	// GURU → trend:    alloc 0.08×20946.79 = 1675.74, ret +280.72% → pnl 4704.15, capital 25650.94
	// ISLAND y SUAI no cumplen ninguna estrategia
	require.Len(t, sum.Trades, 3)
	assert.Empty(t, sum.Rejected)
	assert.Equal(t, 5, sum.Records)

	assert.Equal(t, "REQ", sum.Trades[0].Symbol)
	assert.Equal(t, domain.StrategyLongTermHold, sum.Trades[0].Strategy)
	assert.InDelta(t, 1500.0, sum.Trades[0].CapitalAllocated, 1e-6)
	assert.InDelta(t, 3.7339, sum.Trades[0].ReturnPct, 1e-9)
	assert.InDelta(t, 5600.85, sum.Trades[0].PnL, 1e-6)

	assert.Equal(t, "CRV", sum.Trades[1].Symbol)
	assert.Equal(t, domain.StrategySignalReversal, sum.Trades[1].Strategy)
	assert.InDelta(t, 780.0425, sum.Trades[1].CapitalAllocated, 1e-6)
	assert.InDelta(t, 6.8534, sum.Trades[1].ReturnPct, 1e-9)
	assert.InDelta(t, 5345.9433, sum.Trades[1].PnL, 1e-3)

	assert.Equal(t, "GURU", sum.Trades[2].Symbol)
	assert.Equal(t, domain.StrategyTrendFollowing, sum.Trades[2].Strategy)
	assert.InDelta(t, 1675.7435, sum.Trades[2].CapitalAllocated, 1e-3)
	assert.InDelta(t, 2.8072, sum.Trades[2].ReturnPct, 1e-9)
	assert.InDelta(t, 4704.1470, sum.Trades[2].PnL, 1e-3)

	assert.InDelta(t, 25650.9403, sum.FinalCapital, 1e-3)
	assert.InDelta(t, 1.5650940, sum.TotalReturnPct, 1e-6)
	assert.Equal(t, 3, sum.Wins)
	assert.Equal(t, 0, sum.Losses)
	assert.InDelta(t, 1.0, sum.WinRate, 1e-9)
	assert.Zero(t, sum.MaxDrawdownPct)
	assert.True(t, math.IsInf(sum.ProfitFactor, 1), "sin pérdidas el profit factor es infinito")
	assert.InDelta(t, 4.4648333, sum.AvgWinPct, 1e-6)
	assert.Zero(t, sum.AvgLossPct)
}

func TestRun_ReversalScenario(t *testing.T) {
	// grade 85, holding -50%, signal +250%: reversal. Salida 100 → 350,
	// retorno del trade +250%, pnl 0.05 × 10000 × 2.5 = 1250.
	records := []domain.MetricsRecord{
		{Symbol: "CRV", Grade: 85, HoldingReturn: -0.50, SignalReturn: 2.5, TrendPositive: true},
	}

	sum, err := New().Run(records, 10000)
	require.NoError(t, err)

	require.Len(t, sum.Trades, 1)
	assert.Equal(t, domain.StrategySignalReversal, sum.Trades[0].Strategy)
	assert.InDelta(t, 100.0, sum.Trades[0].EntryPrice, 1e-9)
	assert.InDelta(t, 350.0, sum.Trades[0].ExitPrice, 1e-9)
	assert.InDelta(t, 2.5, sum.Trades[0].ReturnPct, 1e-9)
	assert.InDelta(t, 1250.0, sum.Trades[0].PnL, 1e-9)
	assert.InDelta(t, 0.125, sum.TotalReturnPct, 1e-9)
}

func TestRun_Idempotent(t *testing.T) {
	r := New()
	first, err := r.Run(sampleRecords(), 10000)
	require.NoError(t, err)
	second, err := r.Run(sampleRecords(), 10000)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_NoMatches(t *testing.T) {
	records := []domain.MetricsRecord{
		{Symbol: "ISLAND", Grade: 73.72, HoldingReturn: -0.8191, SignalReturn: -0.0489, TrendPositive: true},
		{Symbol: "SUAI", Grade: 72.41, HoldingReturn: 1.9017, SignalReturn: 0.1487, TrendPositive: true},
	}

	sum, err := New().Run(records, 10000)
	require.NoError(t, err)

	assert.Empty(t, sum.Trades)
	assert.Empty(t, sum.Rejected, "no clasificar no es un rechazo")
	assert.Equal(t, 2, sum.Records)
	assert.InDelta(t, 10000.0, sum.FinalCapital, 1e-9)
	assert.Zero(t, sum.TotalReturnPct)
	assert.Zero(t, sum.MaxDrawdownPct)
	assert.True(t, math.IsNaN(sum.WinRate), "sin trades el win rate no aplica")
	assert.True(t, math.IsNaN(sum.ProfitFactor))
}

func TestRun_EmptyBatch(t *testing.T) {
	sum, err := New().Run(nil, 10000)
	require.NoError(t, err)
	assert.Zero(t, sum.Records)
	assert.True(t, math.IsNaN(sum.WinRate))
}

func TestRun_InvalidRecordDoesNotAbortBatch(t *testing.T) {
	records := []domain.MetricsRecord{
		{Symbol: "BAD", Grade: 150, HoldingReturn: 1, SignalReturn: 1, TrendPositive: true},
		{Symbol: "REQ", Grade: 88.21, HoldingReturn: 3.7339, SignalReturn: -0.8131, TrendPositive: true},
	}

	sum, err := New().Run(records, 10000)
	require.NoError(t, err)

	require.Len(t, sum.Rejected, 1)
	assert.Equal(t, "BAD", sum.Rejected[0].Symbol)
	assert.Equal(t, domain.StrategyNone, sum.Rejected[0].Strategy)
	assert.ErrorIs(t, sum.Rejected[0].Err, domain.ErrInvalidInput)

	require.Len(t, sum.Trades, 1)
	assert.Equal(t, "REQ", sum.Trades[0].Symbol)
	assert.Equal(t, 2, sum.Records)
}

func TestRun_NonPositiveExitRejected(t *testing.T) {
	// signal -120% sobre base 100 da salida -20: imposible de simular.
	// El rechazo preserva la estrategia asignada y el capital no se toca.
	records := []domain.MetricsRecord{
		{Symbol: "RUG", Grade: 80, HoldingReturn: -1.8, SignalReturn: -1.2, TrendPositive: true},
	}

	sum, err := New().Run(records, 10000)
	require.NoError(t, err)

	assert.Empty(t, sum.Trades)
	require.Len(t, sum.Rejected, 1)
	assert.Equal(t, "RUG", sum.Rejected[0].Symbol)
	assert.Equal(t, domain.StrategyTrendFollowing, sum.Rejected[0].Strategy)
	assert.ErrorIs(t, sum.Rejected[0].Err, domain.ErrInvalidInput)
	assert.InDelta(t, 10000.0, sum.FinalCapital, 1e-9)
}

func TestRun_OverAllocationRejectedAndBatchContinues(t *testing.T) {
	r := New()
	r.Sizing = AllocationPolicy{SignalReversal: 0.05, LongTermHold: 2.0, TrendFollowing: 0.08}

	records := []domain.MetricsRecord{
		{Symbol: "REQ", Grade: 88.21, HoldingReturn: 3.7339, SignalReturn: -0.8131, TrendPositive: true},
		{Symbol: "CRV", Grade: 85, HoldingReturn: -0.9423, SignalReturn: 6.8534, TrendPositive: true},
	}

	sum, err := r.Run(records, 10000)
	require.NoError(t, err)

	// REQ pediría 2.0 × 10000 = 20000 con solo 10000 disponibles
	require.Len(t, sum.Rejected, 1)
	assert.Equal(t, "REQ", sum.Rejected[0].Symbol)
	assert.Equal(t, domain.StrategyLongTermHold, sum.Rejected[0].Strategy)
	assert.ErrorIs(t, sum.Rejected[0].Err, domain.ErrOverAllocation)

	// CRV opera sobre el capital intacto
	require.Len(t, sum.Trades, 1)
	assert.Equal(t, "CRV", sum.Trades[0].Symbol)
	assert.InDelta(t, 500.0, sum.Trades[0].CapitalAllocated, 1e-9)
}

func TestRun_MixedWinLossDrawdown(t *testing.T) {
	records := []domain.MetricsRecord{
		{Symbol: "REQ", Grade: 88.21, HoldingReturn: 3.7339, SignalReturn: -0.8131, TrendPositive: true},
		{Symbol: "DOWN", Grade: 80, HoldingReturn: -0.9, SignalReturn: -0.5, TrendPositive: true},
	}

	sum, err := New().Run(records, 10000)
	require.NoError(t, err)
	require.Len(t, sum.Trades, 2)

	// REQ:  capital 10000.00 → 15600.85 (pico)
	// DOWN → trend: alloc 0.08×15600.85 = 1248.068, ret -50% → pnl -624.034
	// drawdown = 624.034 / 15600.85 = 0.04 exacto (0.08 × 0.50)
	assert.InDelta(t, -624.034, sum.Trades[1].PnL, 1e-6)
	assert.InDelta(t, 14976.816, sum.FinalCapital, 1e-6)
	assert.InDelta(t, 0.04, sum.MaxDrawdownPct, 1e-9)

	assert.Equal(t, 1, sum.Wins)
	assert.Equal(t, 1, sum.Losses)
	assert.InDelta(t, 0.5, sum.WinRate, 1e-9)
	assert.InDelta(t, 3.7339, sum.AvgWinPct, 1e-9)
	assert.InDelta(t, -0.5, sum.AvgLossPct, 1e-9)
	// 5600.85 / 624.034 = 8.97523
	assert.InDelta(t, 8.97523, sum.ProfitFactor, 1e-3)
}

func TestRun_ZeroReturnTradeCountsNeitherSide(t *testing.T) {
	records := []domain.MetricsRecord{
		{Symbol: "FLAT", Grade: 80, HoldingReturn: -0.5, SignalReturn: 0, TrendPositive: true},
	}

	sum, err := New().Run(records, 10000)
	require.NoError(t, err)

	require.Len(t, sum.Trades, 1)
	assert.Zero(t, sum.Trades[0].ReturnPct)
	assert.Equal(t, 0, sum.Wins)
	assert.Equal(t, 0, sum.Losses)
	assert.Zero(t, sum.WinRate, "0 ganadores de 1 trade")
	assert.InDelta(t, 10000.0, sum.FinalCapital, 1e-9)
}

func TestRun_InvalidInitialCapital(t *testing.T) {
	_, err := New().Run(sampleRecords(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New().Run(sampleRecords(), -100)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New().Run(sampleRecords(), math.NaN())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRun_CustomPriceFunc(t *testing.T) {
	r := New()
	r.Prices = func(_ domain.MetricsRecord, _ domain.Strategy) (float64, float64) {
		return 10, 20
	}

	records := sampleRecords()[:1] // solo REQ
	sum, err := r.Run(records, 10000)
	require.NoError(t, err)

	require.Len(t, sum.Trades, 1)
	assert.InDelta(t, 1.0, sum.Trades[0].ReturnPct, 1e-9)
	assert.InDelta(t, 11500.0, sum.FinalCapital, 1e-9)
}

// --- modelo de precios por defecto ---

func TestPriceModel_HoldUsesHoldingReturn(t *testing.T) {
	rec := domain.MetricsRecord{Symbol: "REQ", HoldingReturn: 3.7339, SignalReturn: -0.8131}
	entry, exit := PriceModel{Base: 100}.Prices(rec, domain.StrategyLongTermHold)
	assert.InDelta(t, 100.0, entry, 1e-9)
	assert.InDelta(t, 473.39, exit, 1e-9)
}

func TestPriceModel_SignalStrategiesUseSignalReturn(t *testing.T) {
	rec := domain.MetricsRecord{Symbol: "CRV", HoldingReturn: -0.9423, SignalReturn: 6.8534}
	_, exit := PriceModel{Base: 100}.Prices(rec, domain.StrategySignalReversal)
	assert.InDelta(t, 785.34, exit, 1e-9)

	_, exit = PriceModel{Base: 100}.Prices(rec, domain.StrategyTrendFollowing)
	assert.InDelta(t, 785.34, exit, 1e-9)
}

func TestPriceModel_ZeroBaseFallsBack(t *testing.T) {
	rec := domain.MetricsRecord{Symbol: "X", SignalReturn: 0.5}
	entry, exit := PriceModel{}.Prices(rec, domain.StrategyTrendFollowing)
	assert.InDelta(t, DefaultBasePrice, entry, 1e-9)
	assert.InDelta(t, 150.0, exit, 1e-9)
}

// --- sizing ---

func TestAllocationPolicy_Fractions(t *testing.T) {
	p := DefaultAllocation()
	assert.InDelta(t, 0.05, p.Fraction(domain.StrategySignalReversal), 1e-9)
	assert.InDelta(t, 0.15, p.Fraction(domain.StrategyLongTermHold), 1e-9)
	assert.InDelta(t, 0.08, p.Fraction(domain.StrategyTrendFollowing), 1e-9)
	assert.Zero(t, p.Fraction(domain.StrategyNone))
}
