// Package locale valida códigos de país (ISO-3166) y moneda (ISO-4217) con golang.org/x/text.
package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// Country valida un código de país ISO-3166 alpha-2 y lo devuelve en mayúsculas.
// Acepta minúsculas ("co" -> "CO"); rechaza códigos de 3 letras y regiones que no son países.
func Country(code string) (string, error) {
	code = strings.TrimSpace(code)
	if len(code) != 2 {
		return "", fmt.Errorf("locale: país inválido %q", code)
	}
	r, err := language.ParseRegion(code)
	if err != nil || !r.IsCountry() {
		return "", fmt.Errorf("locale: país inválido %q", code)
	}
	return r.String(), nil
}

// Currency valida un código de moneda ISO-4217 y lo devuelve en mayúsculas.
func Currency(code string) (string, error) {
	code = strings.TrimSpace(code)
	if len(code) != 3 {
		return "", fmt.Errorf("locale: moneda inválida %q", code)
	}
	u, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("locale: moneda inválida %q", code)
	}
	return u.String(), nil
}
