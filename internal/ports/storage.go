package ports

import (
	"context"

	"github.com/alejandrodnm/tmbacktest/internal/domain"
)

// RunStore persiste los resultados de cada ejecución de backtest.
type RunStore interface {
	// SaveRun persiste el resumen completo (trades y rechazos incluidos)
	// y devuelve el id asignado a la ejecución.
	SaveRun(ctx context.Context, dataset string, s domain.Summary) (string, error)

	// ListRuns devuelve las ejecuciones más recientes, la última primero.
	ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Prune conserva solo las keep ejecuciones más recientes.
	Prune(ctx context.Context, keep int) error

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
