// Package similarity holds the string primitives used to compare provider
// records: normalizers for names, phones and websites, and a Levenshtein based
// similarity ratio.
package similarity

import (
	"strings"
	"unicode"

	"provider-matching-workers/internal/models"
)

// NormalizeName lowercases a company name, drops punctuation and collapses
// whitespace. Only ASCII letters, digits and underscores survive as word
// characters.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case isWordRune(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// NormalizePhone keeps only the digits of a phone number.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeWebsite lowercases a URL and strips the scheme, a leading "www."
// and one trailing slash.
func NormalizeWebsite(website string) string {
	w := strings.ToLower(website)
	if strings.HasPrefix(w, "https://") {
		w = w[len("https://"):]
	} else if strings.HasPrefix(w, "http://") {
		w = w[len("http://"):]
	}
	w = strings.TrimPrefix(w, "www.")
	return strings.TrimSuffix(w, "/")
}

// Levenshtein returns the edit distance between a and b, counted in runes.
// Comparison is case sensitive.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// StringSimilarity is 1 - distance/max(len). Either side empty yields 0.
func StringSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	return 1 - float64(Levenshtein(a, b))/float64(max(la, lb))
}

// AddressSimilarity compares "{address} {city} {country}" lowercased. A
// location with no known component yields 0.
func AddressSimilarity(a, b models.Location) float64 {
	if a.IsZero() || b.IsZero() {
		return 0
	}
	return StringSimilarity(addressLine(a), addressLine(b))
}

func addressLine(l models.Location) string {
	return strings.ToLower(l.Address + " " + l.City + " " + l.Country)
}
