package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "high yield savings 4 5", Normalize("  High-Yield  Savings (4.5%)!"))
}

func TestContainsPhrase(t *testing.T) {
	assert.True(t, ContainsPhrase("apply for a credit card today", "credit card"))
	assert.False(t, ContainsPhrase("two credit cards", "credit card"))
	assert.False(t, ContainsPhrase("anything", ""))
}

func TestTermCountsDropsStopwords(t *testing.T) {
	got := TermCounts("Save for the house, save for my retirement")
	assert.Equal(t, 2, got["save"])
	assert.Equal(t, 1, got["retirement"])
	_, hasThe := got["the"]
	assert.False(t, hasThe)
}

func TestFinancialInterests(t *testing.T) {
	got := FinancialInterests("Maxed out my 401k this year", "Thinking about investing in ETFs")
	assert.Equal(t, []string{"retirement", "invest", "fund"}, got)
	assert.Empty(t, FinancialInterests("weekend hiking photos"))
}

func TestSentiment(t *testing.T) {
	assert.Equal(t, Positive, Sentiment("So happy, got a bonus and feeling confident"))
	assert.Equal(t, Negative, Sentiment("I'm worried about my debt and late fees"))
	assert.Equal(t, Neutral, Sentiment("What is an index fund?"))
}
