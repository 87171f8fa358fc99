package spreadsheet

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents removes combining marks: "Função" -> "Funcao"
func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// fold lower-cases, strips accents and trims, for header matching
func fold(s string) string {
	return strings.TrimSpace(stripAccents(strings.ToLower(s)))
}

// NormalizeCargoKey groups job titles that differ only in case, accents,
// spacing, or a final feminine "a" of the whole title: "Técnica" and
// "TECNICO" share the key "TECNICO". Only the last letter is rewritten, so
// "Técnica de Segurança" becomes "TECNICA DE SEGURANCO".
func NormalizeCargoKey(cargo string) string {
	s := stripAccents(strings.ToUpper(strings.TrimSpace(cargo)))
	s = strings.Join(strings.Fields(s), " ")
	if strings.HasSuffix(s, "A") {
		s = s[:len(s)-1] + "O"
	}
	return s
}
