package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/tmbacktest/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id               TEXT PRIMARY KEY,
    created_at       DATETIME NOT NULL,
    dataset          TEXT NOT NULL,
    initial_capital  REAL NOT NULL,
    final_capital    REAL NOT NULL,
    total_return_pct REAL NOT NULL,
    win_rate         REAL,
    max_drawdown_pct REAL NOT NULL,
    records          INTEGER NOT NULL,
    trades           INTEGER NOT NULL,
    rejected         INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
    id                TEXT PRIMARY KEY,
    run_id            TEXT NOT NULL REFERENCES runs(id),
    seq               INTEGER NOT NULL,
    symbol            TEXT NOT NULL,
    strategy          TEXT NOT NULL,
    entry_price       REAL NOT NULL,
    exit_price        REAL NOT NULL,
    capital_allocated REAL NOT NULL,
    return_pct        REAL NOT NULL,
    pnl               REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS rejections (
    id       TEXT PRIMARY KEY,
    run_id   TEXT NOT NULL REFERENCES runs(id),
    symbol   TEXT NOT NULL,
    strategy TEXT NOT NULL,
    reason   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);
CREATE INDEX IF NOT EXISTS idx_rejections_run ON rejections(run_id);
`

// SQLiteStorage implementa ports.RunStore sobre un fichero sqlite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos y aplica el esquema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %s: %w", path, err)
	}

	// modernc.org/sqlite no soporta escrituras concurrentes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// SaveRun persiste el resumen completo de una ejecución y devuelve su id.
// El win rate NaN (ejecución sin trades) se guarda como NULL.
func (s *SQLiteStorage) SaveRun(ctx context.Context, dataset string, sum domain.Summary) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	runID := uuid.New().String()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, dataset, initial_capital, final_capital,
			total_return_pct, win_rate, max_drawdown_pct, records, trades, rejected)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC(), dataset,
		sum.InitialCapital, sum.FinalCapital, sum.TotalReturnPct,
		nullFloat(sum.WinRate), sum.MaxDrawdownPct,
		sum.Records, sum.TotalTrades(), len(sum.Rejected))
	if err != nil {
		return "", fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}

	if len(sum.Trades) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO trades (id, run_id, seq, symbol, strategy, entry_price,
				exit_price, capital_allocated, return_pct, pnl)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return "", fmt.Errorf("storage.SaveRun: prepare trades: %w", err)
		}
		defer stmt.Close()

		for i, t := range sum.Trades {
			_, err = stmt.ExecContext(ctx,
				uuid.New().String(), runID, i+1, t.Symbol, t.Strategy.String(),
				t.EntryPrice, t.ExitPrice, t.CapitalAllocated, t.ReturnPct, t.PnL)
			if err != nil {
				return "", fmt.Errorf("storage.SaveRun: insert trade %s: %w", t.Symbol, err)
			}
		}
	}

	if len(sum.Rejected) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO rejections (id, run_id, symbol, strategy, reason)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return "", fmt.Errorf("storage.SaveRun: prepare rejections: %w", err)
		}
		defer stmt.Close()

		for _, r := range sum.Rejected {
			reason := ""
			if r.Err != nil {
				reason = r.Err.Error()
			}
			_, err = stmt.ExecContext(ctx,
				uuid.New().String(), runID, r.Symbol, r.Strategy.String(), reason)
			if err != nil {
				return "", fmt.Errorf("storage.SaveRun: insert rejection %s: %w", r.Symbol, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return runID, nil
}

// ListRuns devuelve las ejecuciones más recientes primero. El orden sale
// del rowid: crece con cada inserción, sin depender del formato de fechas.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, dataset, initial_capital, final_capital,
			total_return_pct, win_rate, max_drawdown_pct, records, trades, rejected
		FROM runs
		ORDER BY rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.ListRuns: query: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord
	for rows.Next() {
		var r domain.RunRecord
		var winRate sql.NullFloat64
		err := rows.Scan(&r.ID, &r.CreatedAt, &r.Dataset,
			&r.InitialCapital, &r.FinalCapital, &r.TotalReturnPct,
			&winRate, &r.MaxDrawdownPct, &r.Records, &r.Trades, &r.Rejected)
		if err != nil {
			return nil, fmt.Errorf("storage.ListRuns: scan: %w", err)
		}
		if winRate.Valid {
			r.WinRate = winRate.Float64
		} else {
			r.WinRate = math.NaN()
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.ListRuns: rows: %w", err)
	}
	return runs, nil
}

// Prune conserva las `keep` ejecuciones más recientes y borra el resto
// junto con sus trades y rechazos.
func (s *SQLiteStorage) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.Prune: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM runs
		WHERE id NOT IN (SELECT id FROM runs ORDER BY rowid DESC LIMIT ?)`, keep)
	if err != nil {
		return fmt.Errorf("storage.Prune: delete runs: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM trades WHERE run_id NOT IN (SELECT id FROM runs)`); err != nil {
		return fmt.Errorf("storage.Prune: delete trades: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rejections WHERE run_id NOT IN (SELECT id FROM runs)`); err != nil {
		return fmt.Errorf("storage.Prune: delete rejections: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.Prune: commit: %w", err)
	}
	return nil
}

// Close cierra la conexión.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// nullFloat convierte NaN en NULL para columnas opcionales.
func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
