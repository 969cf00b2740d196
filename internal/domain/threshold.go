package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Los umbrales de clasificación son inclusivos: un grade de exactamente 80
// debe contar como >= 80 también cuando el valor viene de parsear JSON.
// Las comparaciones pasan por decimal para no depender de epsilons ad hoc.
// NaN e Inf colapsan a cero; Validate los rechaza antes de clasificar.

var decHalf = decimal.NewFromFloat(0.5)

func decFromFloat(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func decCmp(a, b float64) int {
	return decFromFloat(a).Cmp(decFromFloat(b))
}

func decGTE(a, b float64) bool { return decCmp(a, b) >= 0 }
func decGT(a, b float64) bool  { return decCmp(a, b) > 0 }
func decLT(a, b float64) bool  { return decCmp(a, b) < 0 }

// belowHalf indica si signal < 0.5 × holding, con la multiplicación hecha
// en decimal para que el límite sea exacto.
func belowHalf(signal, holding float64) bool {
	return decFromFloat(signal).Cmp(decFromFloat(holding).Mul(decHalf)) < 0
}
