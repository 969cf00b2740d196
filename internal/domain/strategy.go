package domain

import "fmt"

// Strategy identifica la estrategia asignada a un registro de métricas.
// El set es cerrado: exactamente tres estrategias, con un orden de
// prioridad fijo cuando más de un predicado acepta el mismo registro.
type Strategy int

const (
	StrategyNone           Strategy = iota // ninguna estrategia acepta el registro
	StrategySignalReversal                 // señal fuerte con precio rezagado
	StrategyLongTermHold                   // el hold pasivo ya capturó el valor
	StrategyTrendFollowing                 // las señales baten al hold con tendencia al alza
)

func (s Strategy) String() string {
	switch s {
	case StrategySignalReversal:
		return "signal_reversal"
	case StrategyLongTermHold:
		return "long_term_hold"
	case StrategyTrendFollowing:
		return "trend_following"
	default:
		return "none"
	}
}

// Label devuelve el nombre de presentación de la estrategia.
func (s Strategy) Label() string {
	switch s {
	case StrategySignalReversal:
		return "TM Signal-Driven Reversal"
	case StrategyLongTermHold:
		return "TM Grade & Long-Term Hold"
	case StrategyTrendFollowing:
		return "TM Trend-Aligned Signal Following"
	default:
		return "-"
	}
}

func (s Strategy) Icon() string {
	switch s {
	case StrategySignalReversal:
		return "[R]"
	case StrategyLongTermHold:
		return "[H]"
	case StrategyTrendFollowing:
		return "[T]"
	default:
		return "[ ]"
	}
}

// HoldingDays devuelve el horizonte de la posición en días.
func (s Strategy) HoldingDays() int {
	switch s {
	case StrategySignalReversal:
		return 30
	case StrategyLongTermHold:
		return 180
	case StrategyTrendFollowing:
		return 14
	default:
		return 0
	}
}

// Umbrales de entrada por estrategia. Todos los límites declarados con >=
// son inclusivos y los retornos son fraccionales (1.00 = +100%):
//
//	SignalReversal: grade >= 80, holding < 0.10, signal >= 1.00
//	  activos fundamentalmente fuertes cuyo precio no refleja la señal
//	LongTermHold:   grade >= 88, holding >= 1.00, signal < 0.5 × holding
//	  el hold pasivo ya capturó el valor y las señales van por detrás
//	TrendFollowing: grade >= 75, tendencia positiva, signal > holding
//	  el momentum de las señales supera al hold pasivo
const (
	reversalMinGrade   = 80.0
	reversalMaxHolding = 0.10
	reversalMinSignal  = 1.00

	holdMinGrade   = 88.0
	holdMinHolding = 1.00

	trendMinGrade = 75.0
)

// Matches evalúa el predicado de entrada de la estrategia sobre el registro.
// Ningún predicado muta el registro; varios pueden aceptar el mismo registro
// a la vez, la selección única la hace Classify.
func (s Strategy) Matches(r MetricsRecord) bool {
	switch s {
	case StrategySignalReversal:
		return decGTE(r.Grade, reversalMinGrade) &&
			decLT(r.HoldingReturn, reversalMaxHolding) &&
			decGTE(r.SignalReturn, reversalMinSignal)
	case StrategyLongTermHold:
		return decGTE(r.Grade, holdMinGrade) &&
			decGTE(r.HoldingReturn, holdMinHolding) &&
			belowHalf(r.SignalReturn, r.HoldingReturn)
	case StrategyTrendFollowing:
		return decGTE(r.Grade, trendMinGrade) &&
			r.TrendPositive &&
			decGT(r.SignalReturn, r.HoldingReturn)
	default:
		return false
	}
}

// Strategies devuelve las tres estrategias en su orden de prioridad:
// reversal primero, hold después, trend al final.
func Strategies() []Strategy {
	return []Strategy{StrategySignalReversal, StrategyLongTermHold, StrategyTrendFollowing}
}

// Classify devuelve la primera estrategia cuyo predicado acepta el registro
// siguiendo el orden de prioridad. Como máximo una estrategia por registro;
// ok es false cuando ninguna lo acepta.
func Classify(r MetricsRecord) (Strategy, bool) {
	for _, s := range Strategies() {
		if s.Matches(r) {
			return s, true
		}
	}
	return StrategyNone, false
}

// Criterion es el resultado de evaluar una condición de entrada concreta.
type Criterion struct {
	Name   string // condición legible ("grade >= 80")
	Actual string // valor observado, ya formateado
	Pass   bool
}

// StrategyCheck agrupa la evaluación criterio a criterio de una estrategia.
type StrategyCheck struct {
	Strategy Strategy
	Criteria []Criterion
	Matched  bool
}

// Explain evalúa las tres estrategias en orden de prioridad y devuelve el
// detalle de cada criterio. Es la base del modo validate de la consola.
func Explain(r MetricsRecord) []StrategyCheck {
	checks := make([]StrategyCheck, 0, 3)
	for _, s := range Strategies() {
		var crits []Criterion
		switch s {
		case StrategySignalReversal:
			crits = []Criterion{
				{Name: fmt.Sprintf("grade >= %.0f", reversalMinGrade), Actual: fmt.Sprintf("%.2f", r.Grade), Pass: decGTE(r.Grade, reversalMinGrade)},
				{Name: fmt.Sprintf("holding < %.2f", reversalMaxHolding), Actual: fmt.Sprintf("%.4f", r.HoldingReturn), Pass: decLT(r.HoldingReturn, reversalMaxHolding)},
				{Name: fmt.Sprintf("signal >= %.2f", reversalMinSignal), Actual: fmt.Sprintf("%.4f", r.SignalReturn), Pass: decGTE(r.SignalReturn, reversalMinSignal)},
			}
		case StrategyLongTermHold:
			crits = []Criterion{
				{Name: fmt.Sprintf("grade >= %.0f", holdMinGrade), Actual: fmt.Sprintf("%.2f", r.Grade), Pass: decGTE(r.Grade, holdMinGrade)},
				{Name: fmt.Sprintf("holding >= %.2f", holdMinHolding), Actual: fmt.Sprintf("%.4f", r.HoldingReturn), Pass: decGTE(r.HoldingReturn, holdMinHolding)},
				{Name: "signal < 0.5 x holding", Actual: fmt.Sprintf("%.4f vs %.4f", r.SignalReturn, 0.5*r.HoldingReturn), Pass: belowHalf(r.SignalReturn, r.HoldingReturn)},
			}
		case StrategyTrendFollowing:
			crits = []Criterion{
				{Name: fmt.Sprintf("grade >= %.0f", trendMinGrade), Actual: fmt.Sprintf("%.2f", r.Grade), Pass: decGTE(r.Grade, trendMinGrade)},
				{Name: "trend positive", Actual: fmt.Sprintf("%t", r.TrendPositive), Pass: r.TrendPositive},
				{Name: "signal > holding", Actual: fmt.Sprintf("%.4f vs %.4f", r.SignalReturn, r.HoldingReturn), Pass: decGT(r.SignalReturn, r.HoldingReturn)},
			}
		}
		checks = append(checks, StrategyCheck{Strategy: s, Criteria: crits, Matched: s.Matches(r)})
	}
	return checks
}
