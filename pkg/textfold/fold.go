// Package textfold normaliza texto para búsquedas: minúsculas y sin tildes,
// de modo que "Administración" coincide con "administracion".
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold devuelve s en minúsculas, sin marcas diacríticas y sin espacios en los extremos.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Contains informa si query (ya plegada o no) aparece en alguno de los campos.
// Una query vacía coincide con todo.
func Contains(query string, fields ...string) bool {
	q := Fold(query)
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(Fold(f), q) {
			return true
		}
	}
	return false
}

// Equal compara dos valores ignorando mayúsculas y tildes.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}
