package ports

import (
	"context"

	"github.com/alejandrodnm/tmbacktest/internal/domain"
)

// RecordSource entrega el dataset de métricas a evaluar.
type RecordSource interface {
	// Records devuelve los registros en el orden en que deben evaluarse.
	Records(ctx context.Context) ([]domain.MetricsRecord, error)

	// Name identifica el dataset para reporting y persistencia.
	Name() string
}
