// Package textfold normaliza cadenas para comparaciones insensibles a
// mayúsculas y acentos ("Concluída" == "concluida").
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

// Key como Fold, pero además colapsa espacios y guiones a "_".
func Key(s string) string {
	f := Fold(s)
	return strings.Join(strings.FieldsFunc(f, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	}), "_")
}

// Equal compara dos cadenas plegadas.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}
