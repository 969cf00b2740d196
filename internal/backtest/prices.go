package backtest

import "github.com/alejandrodnm/tmbacktest/internal/domain"

// DefaultBasePrice es el precio de entrada normalizado de la simulación.
const DefaultBasePrice = 100.0

// PriceFunc resuelve el par entrada/salida a simular para un registro ya
// clasificado. La fuente de precios es un colaborador del runner: el core
// solo consume el par resultante.
type PriceFunc func(rec domain.MetricsRecord, strat domain.Strategy) (entry, exit float64)

// PriceModel deriva los precios de los retornos del propio registro sobre
// un precio base fijo. La salida depende de la estrategia: hold realiza el
// retorno por holding, reversal y trend realizan el retorno por señales.
type PriceModel struct {
	Base float64
}

// Prices implementa PriceFunc.
func (m PriceModel) Prices(rec domain.MetricsRecord, strat domain.Strategy) (float64, float64) {
	base := m.Base
	if base <= 0 {
		base = DefaultBasePrice
	}
	// Un retorno <= -100% produce una salida <= 0; Simulate la rechaza.
	switch strat {
	case domain.StrategyLongTermHold:
		return base, base * (1 + rec.HoldingReturn)
	default:
		return base, base * (1 + rec.SignalReturn)
	}
}
