package nlp

const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "happy": {}, "excited": {}, "confident": {}, "glad": {},
	"love": {}, "thanks": {}, "thank": {}, "awesome": {}, "excellent": {}, "growth": {},
	"profit": {}, "gain": {}, "gains": {}, "win": {}, "proud": {}, "hopeful": {},
	"optimistic": {}, "secure": {}, "saved": {}, "raise": {}, "bonus": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "worried": {}, "worry": {}, "stress": {}, "stressed": {}, "afraid": {},
	"scared": {}, "anxious": {}, "loss": {}, "losses": {}, "lost": {}, "broke": {},
	"debt": {}, "overdue": {}, "late": {}, "fees": {}, "hate": {}, "terrible": {},
	"crash": {}, "struggling": {}, "unemployed": {}, "laid": {}, "expensive": {},
}

// Sentiment classifies text with a small lexicon.
func Sentiment(text string) string {
	score := 0
	for _, t := range TokensList(Normalize(text)) {
		if _, ok := positiveWords[t]; ok {
			score++
		}
		if _, ok := negativeWords[t]; ok {
			score--
		}
	}
	switch {
	case score > 0:
		return Positive
	case score < 0:
		return Negative
	default:
		return Neutral
	}
}
