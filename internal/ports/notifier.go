package ports

import (
	"context"

	"github.com/alejandrodnm/tmbacktest/internal/domain"
)

// Notifier presenta el resultado de una ejecución al usuario.
type Notifier interface {
	// Notify muestra el resumen de la ejecución.
	// En la implementación de consola imprime tablas formateadas.
	Notify(ctx context.Context, s domain.Summary) error
}
