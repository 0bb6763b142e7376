package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent normalizes an identifier for comparison.
// The pipeline:
// 1. Tokenize CamelCase.
// 2. Case-fold to lower.
// 3. Strip separators (_, -, spaces).
//
// "ScaleFactor", "scale_factor", and "scalefactor" all normalize identically.
func NormalizeIdent(s string) string {
	tokens := tokenizeCamelCase(s)

	joined := strings.Join(tokens, "")
	joined = strings.ToLower(joined)
	joined = stripSeparators(joined)

	return joined
}

// SameIdent reports whether two identifiers are equal after normalization.
// This is the equality used by automatic field-projection derivation.
func SameIdent(a, b string) bool {
	return NormalizeIdent(a) == NormalizeIdent(b)
}

// tokenizeCamelCase splits a CamelCase or camelCase string into tokens.
// Examples:
//   - "ScaleFactor" -> ["Scale", "Factor"]
//   - "circleArea" -> ["circle", "Area"]
//   - "XMLParser" -> ["XML", "Parser"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i := range runes {
		r := runes[i]

		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if unicode.IsUpper(r) && current.Len() > 0 {
			prev := runes[i-1]

			// Boundary: lower->Upper, or end of an acronym run (Upper followed
			// by Upper+lower, e.g. the "P" in "XMLParser").
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || (unicode.IsUpper(prev) && nextLower) {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if isSeparator(r) {
			return -1
		}

		return r
	}, s)
}
