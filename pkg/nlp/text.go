package nlp

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)
var multiSpace = regexp.MustCompile(`\s+`)

// Normalize lowercases s and replaces every non-letter, non-digit run with one space.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = nonWord.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokens returns the unique tokens of a normalized string.
func Tokens(normalized string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range TokensList(normalized) {
		out[t] = struct{}{}
	}
	return out
}

// TokensList splits a normalized string into tokens.
func TokensList(normalized string) []string {
	if normalized == "" {
		return []string{}
	}
	return strings.Split(normalized, " ")
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "i": {}, "in": {}, "is": {}, "it": {},
	"its": {}, "me": {}, "my": {}, "of": {}, "on": {}, "or": {}, "our": {}, "that": {},
	"the": {}, "their": {}, "this": {}, "to": {}, "was": {}, "we": {}, "with": {},
	"you": {}, "your": {},
}

// TermCounts counts non-stopword tokens of free text.
func TermCounts(text string) map[string]int {
	out := map[string]int{}
	for _, t := range TokensList(Normalize(text)) {
		if _, skip := stopwords[t]; skip || len(t) < 2 {
			continue
		}
		out[t]++
	}
	return out
}

// ContainsPhrase reports whether a normalized phrase occurs as whole words.
// "credit card" is found in "... credit card ..." but not in "... credit cards ...".
func ContainsPhrase(normalizedText, normalizedPhrase string) bool {
	if normalizedPhrase == "" {
		return false
	}
	hay := " " + normalizedText + " "
	needle := " " + normalizedPhrase + " "
	return strings.Contains(hay, needle)
}
