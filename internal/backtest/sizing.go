package backtest

import "github.com/alejandrodnm/tmbacktest/internal/domain"

// AllocationPolicy fija la fracción del capital actual que se asigna a cada
// trade según su estrategia. Las fracciones compuestas sobre capital actual
// hacen que los trades posteriores hereden las ganancias de los anteriores.
type AllocationPolicy struct {
	SignalReversal float64
	LongTermHold   float64
	TrendFollowing float64
}

// DefaultAllocation devuelve el sizing por defecto: 5% reversal, 15% hold,
// 8% trend.
func DefaultAllocation() AllocationPolicy {
	return AllocationPolicy{
		SignalReversal: 0.05,
		LongTermHold:   0.15,
		TrendFollowing: 0.08,
	}
}

// Fraction devuelve la fracción configurada para la estrategia.
// Una fracción > 1 no se recorta aquí: el runner la rechaza por registro
// como OverAllocation y el batch continúa.
func (p AllocationPolicy) Fraction(s domain.Strategy) float64 {
	switch s {
	case domain.StrategySignalReversal:
		return p.SignalReversal
	case domain.StrategyLongTermHold:
		return p.LongTermHold
	case domain.StrategyTrendFollowing:
		return p.TrendFollowing
	default:
		return 0
	}
}
