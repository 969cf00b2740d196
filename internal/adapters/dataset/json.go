package dataset

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/alejandrodnm/tmbacktest/internal/domain"
)

// File carga registros de métricas desde un archivo JSON. Acepta un array
// en la raíz o un objeto {"data": [...]}, y por elemento tanto las keys en
// mayúsculas del proveedor (TOKEN_SYMBOL, TM_TRADER_GRADE, HOLDING_RETURNS,
// TRADING_SIGNALS_RETURNS, TOKEN_TREND) como sus equivalentes en minúsculas
// (symbol, grade, holding_return, signal_return, trend).
type File struct {
	Path string
}

// NewFile crea una fuente de registros sobre la ruta dada.
func NewFile(path string) File {
	return File{Path: path}
}

// Name implementa ports.RecordSource.
func (f File) Name() string {
	return filepath.Base(f.Path)
}

// Records implementa ports.RecordSource.
func (f File) Records(_ context.Context) ([]domain.MetricsRecord, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("dataset.Records: read %q: %w", f.Path, err)
	}
	recs, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("dataset.Records: %q: %w", f.Path, err)
	}
	return recs, nil
}

// Parse extrae los registros de un documento JSON. Un documento ilegible es
// error; un elemento malformado NO lo es: sus campos ausentes o no numéricos
// quedan como NaN y caen en el log de rechazos al validar, de forma que una
// fila mala nunca tira el dataset entero.
func Parse(raw []byte) ([]domain.MetricsRecord, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("dataset.Parse: invalid JSON")
	}

	list := gjson.ParseBytes(raw)
	if list.IsObject() {
		data := list.Get("data")
		if !data.Exists() || !data.IsArray() {
			return nil, fmt.Errorf("dataset.Parse: root object has no data array")
		}
		list = data
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("dataset.Parse: root must be an array or a data object")
	}

	var recs []domain.MetricsRecord
	list.ForEach(func(_, el gjson.Result) bool {
		recs = append(recs, fromElement(el))
		return true
	})
	return recs, nil
}

// fromElement mapea un elemento JSON a MetricsRecord sin fallar nunca.
func fromElement(el gjson.Result) domain.MetricsRecord {
	return domain.MetricsRecord{
		Symbol:        pick(el, "TOKEN_SYMBOL", "symbol").String(),
		Grade:         num(pick(el, "TM_TRADER_GRADE", "grade")),
		HoldingReturn: num(pick(el, "HOLDING_RETURNS", "holding_return")),
		SignalReturn:  num(pick(el, "TRADING_SIGNALS_RETURNS", "signal_return")),
		TrendPositive: pick(el, "TOKEN_TREND", "trend").Bool(),
	}
}

// pick devuelve el primer campo presente de la lista de keys.
func pick(el gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := el.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// num convierte un campo a float64. Campos ausentes, no numéricos o con
// strings no parseables devuelven NaN: el marcador que Validate rechaza.
func num(v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		return v.Num
	case gjson.String:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
