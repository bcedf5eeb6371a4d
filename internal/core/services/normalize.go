package services

import (
	"strings"
	"unicode"
)

// creditTokens are dropped from artist names before matching.
var creditTokens = map[string]struct{}{
	"feat":      {},
	"featuring": {},
	"ft":        {},
}

// normalizeArtist lowercases name, drops bracketed segments and credit
// words, and collapses punctuation into single spaces.
func normalizeArtist(name string) string {
	if name == "" {
		return ""
	}

	tokens := strings.Fields(cleanSeparators(stripBracketed(strings.ToLower(name))))
	kept := tokens[:0]
	for _, token := range tokens {
		if _, drop := creditTokens[token]; drop {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}

func stripBracketed(input string) string {
	var out strings.Builder
	depth := 0
	for _, r := range input {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				out.WriteRune(r)
			}
		}
	}
	return out.String()
}

func cleanSeparators(input string) string {
	var out strings.Builder
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out.WriteRune(r)
			continue
		}
		out.WriteRune(' ')
	}
	return out.String()
}
