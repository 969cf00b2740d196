package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del backtester.
type Config struct {
	Backtest BacktestConfig `yaml:"backtest"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Storage  StorageConfig  `yaml:"storage"`
	Chart    ChartConfig    `yaml:"chart"`
	Log      LogConfig      `yaml:"log"`
}

// BacktestConfig controla el capital y el modelo de precios de la simulación.
type BacktestConfig struct {
	InitialCapital float64          `yaml:"initial_capital"`
	BasePrice      float64          `yaml:"base_price"` // precio de entrada sintético
	Allocation     AllocationConfig `yaml:"allocation"`
}

// AllocationConfig es la fracción del capital disponible por estrategia.
type AllocationConfig struct {
	SignalReversal float64 `yaml:"signal_reversal"`
	LongTermHold   float64 `yaml:"long_term_hold"`
	TrendFollowing float64 `yaml:"trend_following"`
}

// DatasetConfig apunta al dataset de métricas a evaluar.
type DatasetConfig struct {
	Path string `yaml:"path"` // JSON con los registros; vacío usa el dataset de ejemplo
}

// StorageConfig controla dónde se persisten las ejecuciones.
type StorageConfig struct {
	DSN      string `yaml:"dsn"`       // ruta al archivo SQLite, o ":memory:"
	KeepRuns int    `yaml:"keep_runs"` // ejecuciones retenidas al hacer prune
}

// ChartConfig controla la curva de capital generada tras cada ejecución.
type ChartConfig struct {
	Path string `yaml:"path"` // HTML de salida; vacío desactiva el gráfico
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
// Un archivo de configuración ausente no es un error: se usan los defaults.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	case os.IsNotExist(err):
		// sin fichero: solo env + defaults
	default:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TMB_DATASET"); v != "" {
		cfg.Dataset.Path = v
	}
	if v := os.Getenv("TMB_STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("TMB_INITIAL_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Backtest.InitialCapital = f
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Backtest.InitialCapital <= 0 {
		cfg.Backtest.InitialCapital = 10000
	}
	if cfg.Backtest.BasePrice <= 0 {
		cfg.Backtest.BasePrice = 100
	}
	if cfg.Backtest.Allocation.SignalReversal <= 0 {
		cfg.Backtest.Allocation.SignalReversal = 0.05
	}
	if cfg.Backtest.Allocation.LongTermHold <= 0 {
		cfg.Backtest.Allocation.LongTermHold = 0.15
	}
	if cfg.Backtest.Allocation.TrendFollowing <= 0 {
		cfg.Backtest.Allocation.TrendFollowing = 0.08
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "tmbacktest.db"
	}
	if cfg.Storage.KeepRuns <= 0 {
		cfg.Storage.KeepRuns = 50
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
