// Package usecase contiene los casos de uso por entidad: CRUD sobre colecciones tipadas
// más los filtros y reglas que aplicaban las pantallas.
package usecase

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/litio-erp/internal/domain"
)

const dateLayout = "2006-01-02"

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s es obligatorio", domain.ErrInvalidInput, field)
	}
	return nil
}

func validDate(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return fmt.Errorf("%w: %s debe tener formato YYYY-MM-DD", domain.ErrInvalidInput, field)
	}
	return nil
}

// distinct devuelve los valores no vacíos sin repetir, ordenados.
func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// withoutKeys copia patch sin los campos que el cliente no puede escribir.
func withoutKeys(patch map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(patch))
	for k, v := range patch {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// numeric lee un número de un patch decodificado de JSON (float64) o armado en código (int).
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// decimalField lee un monto de un patch (número o texto). ok=false si la clave no viene.
func decimalField(patch map[string]any, key string) (d decimal.Decimal, ok bool, err error) {
	v, present := patch[key]
	if !present || v == nil {
		return decimal.Zero, false, nil
	}
	raw, err := json.Marshal(v)
	if err == nil {
		err = d.UnmarshalJSON(raw)
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: %s debe ser un monto", domain.ErrInvalidInput, key)
	}
	return d, true, nil
}
