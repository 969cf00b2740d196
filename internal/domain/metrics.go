package domain

import (
	"fmt"
	"math"
)

// MetricsRecord es la vista normalizada de las métricas de un activo.
// Inmutable una vez construido: se crea desde la fuente de datos y nunca se muta.
type MetricsRecord struct {
	Symbol        string  // ticker del token (REQ, CRV, ...)
	Grade         float64 // trader grade, escala 0-100
	HoldingReturn float64 // retorno fraccional por hold pasivo (-0.5 = -50%)
	SignalReturn  float64 // retorno fraccional siguiendo las señales
	TrendPositive bool    // tendencia del token al alza
}

// Validate comprueba que el registro puede clasificarse y simularse.
// Un registro malformado (campo ausente o no finito, grade fuera de escala)
// devuelve ErrInvalidInput con el detalle del campo.
func (r MetricsRecord) Validate() error {
	if r.Symbol == "" {
		return fmt.Errorf("record without symbol: %w", ErrInvalidInput)
	}
	if !isFinite(r.Grade) || !isFinite(r.HoldingReturn) || !isFinite(r.SignalReturn) {
		return fmt.Errorf("%s: non-finite metric: %w", r.Symbol, ErrInvalidInput)
	}
	if r.Grade < 0 || r.Grade > 100 {
		return fmt.Errorf("%s: grade %.2f outside [0,100]: %w", r.Symbol, r.Grade, ErrInvalidInput)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
