package nlp

import "strings"

// FinancialKeywords are the interest areas looked for in user-written text.
var FinancialKeywords = []string{
	"invest", "save", "budget", "finance", "money", "loan", "debt", "mortgage",
	"retirement", "stock", "bond", "fund", "bank", "credit", "tax",
}

// keywordAliases maps common tokens onto the keyword they imply.
var keywordAliases = []struct{ alias, keyword string }{
	{"401k", "retirement"},
	{"ira", "retirement"},
	{"pension", "retirement"},
	{"etf", "fund"},
	{"etfs", "fund"},
	{"savings", "save"},
	{"saving", "save"},
	{"investing", "invest"},
	{"investment", "invest"},
	{"stocks", "stock"},
	{"bonds", "bond"},
	{"taxes", "tax"},
	{"home loan", "mortgage"},
}

// FinancialInterests returns keywords found in texts in first-seen order.
// Keywords match as substrings of the lowercased text; aliases match as whole words.
func FinancialInterests(texts ...string) []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(k string) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	for _, text := range texts {
		lower := strings.ToLower(text)
		norm := Normalize(text)
		for _, kw := range FinancialKeywords {
			if strings.Contains(lower, kw) {
				add(kw)
			}
		}
		for _, a := range keywordAliases {
			if ContainsPhrase(norm, a.alias) {
				add(a.keyword)
			}
		}
	}
	return out
}
