package recommendation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	rerankSystem = "You are a financial advisor assistant that provides personalized product recommendations."

	defaultConfidence = 70.0
	paddingScore      = 65.0
	paddingReason     = "This product may also be suitable based on your financial profile."
	topN              = 3
	candidateCount    = 5
)

func rerankPrompt(metaPrompt string, candidates []Match) string {
	var products strings.Builder
	for i, m := range candidates {
		fmt.Fprintf(&products, "%d. %s: %s\n\n", i+1, m.Product.Name, m.Product.Description)
	}
	return fmt.Sprintf(`Based on the user profile below, recommend the top 3 most suitable financial products from the list provided.
For each recommendation, provide a clear explanation why it fits this specific user's needs and financial situation.

USER PROFILE:
%s

AVAILABLE PRODUCTS:
%s
INSTRUCTIONS:
- Rank products from most to least suitable for this user
- For each product, write a personalized explanation (2-3 sentences) explaining why it meets their specific needs
- Focus on how the product features align with the user's financial situation, goals, and behavior
- Be specific and reference details from their profile
- Provide a confidence score (0-100) for each recommendation

FORMAT YOUR RESPONSE AS:
1. [Product Name]
   Reason: [Personalized explanation]
   Confidence: [Score]
2. [Product Name]
   Reason: [Personalized explanation]
   Confidence: [Score]
3. [Product Name]
   Reason: [Personalized explanation]
   Confidence: [Score]
`, metaPrompt, products.String())
}

var (
	reItemStart = regexp.MustCompile(`(?m)^\s*\d+[.)]\s*`)
	reNumber    = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// parseRerank reads the numbered answer format. Items naming a product that
// is not among the candidates, or naming one twice, are dropped.
func parseRerank(text string, candidates []Match) []Item {
	var out []Item
	seen := map[string]bool{}
	for _, section := range reItemStart.Split(text, -1) {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}
		lines := strings.Split(section, "\n")
		cand, ok := findCandidate(cleanName(lines[0]), candidates)
		if !ok || seen[cand.Product.Name] {
			continue
		}
		seen[cand.Product.Name] = true

		item := Item{
			ProductID:   cand.Product.ID,
			Name:        cand.Product.Name,
			Description: cand.Product.Description,
			Score:       defaultConfidence,
		}
		for _, line := range lines[1:] {
			line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "-*"))
			switch {
			case hasLabel(line, "reason:"):
				item.Reason = strings.TrimSpace(line[len("reason:"):])
			case hasLabel(line, "confidence:"):
				if n := reNumber.FindString(line); n != "" {
					if f, err := strconv.ParseFloat(n, 64); err == nil {
						item.Score = clampScore(f)
					}
				}
			}
		}
		out = append(out, item)
	}
	return out
}

func hasLabel(line, label string) bool {
	return len(line) >= len(label) && strings.EqualFold(line[:len(label)], label)
}

func cleanName(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "[]*#:"))
}

func findCandidate(name string, candidates []Match) (Match, bool) {
	if name == "" {
		return Match{}, false
	}
	for _, c := range candidates {
		if strings.EqualFold(c.Product.Name, name) {
			return c, true
		}
	}
	lower := strings.ToLower(name)
	for _, c := range candidates {
		if strings.Contains(lower, strings.ToLower(c.Product.Name)) {
			return c, true
		}
	}
	return Match{}, false
}

// pad fills items up to topN with remaining candidates in similarity order.
func pad(items []Item, candidates []Match) []Item {
	for _, c := range candidates {
		if len(items) >= topN {
			break
		}
		dup := false
		for _, it := range items {
			if it.Name == c.Product.Name {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		items = append(items, Item{
			ProductID:   c.Product.ID,
			Name:        c.Product.Name,
			Description: c.Product.Description,
			Reason:      paddingReason,
			Score:       paddingScore,
		})
	}
	if len(items) > topN {
		items = items[:topN]
	}
	return items
}

func clampScore(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 100:
		return 100
	default:
		return f
	}
}
