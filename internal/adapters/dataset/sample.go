package dataset

import (
	"context"

	"github.com/alejandrodnm/tmbacktest/internal/domain"
)

// SampleSource sirve el dataset de ejemplo embebido. Se usa cuando no se
// configura ningún archivo de datos.
type SampleSource struct{}

// Name implementa ports.RecordSource.
func (SampleSource) Name() string { return "sample" }

// Records implementa ports.RecordSource.
func (SampleSource) Records(_ context.Context) ([]domain.MetricsRecord, error) {
	return Sample(), nil
}

// Sample devuelve cinco tokens con métricas de julio de 2025. Cubre los
// tres perfiles de estrategia y dos registros que ninguna acepta.
func Sample() []domain.MetricsRecord {
	return []domain.MetricsRecord{
		{Symbol: "REQ", Grade: 88.21, HoldingReturn: 3.7339, SignalReturn: -0.8131, TrendPositive: true},
		{Symbol: "CRV", Grade: 85, HoldingReturn: -0.9423, SignalReturn: 6.8534, TrendPositive: true},
		{Symbol: "GURU", Grade: 81.27, HoldingReturn: 1.4655, SignalReturn: 2.8072, TrendPositive: true},
		{Symbol: "ISLAND", Grade: 73.72, HoldingReturn: -0.8191, SignalReturn: -0.0489, TrendPositive: true},
		{Symbol: "SUAI", Grade: 72.41, HoldingReturn: 1.9017, SignalReturn: 0.1487, TrendPositive: true},
	}
}
