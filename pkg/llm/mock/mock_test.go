package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/finadvisor/pkg/llm"
)

func user(s string) []llm.Message { return []llm.Message{{Role: llm.RoleUser, Content: s}} }

func TestGenerateInvestMentionsDiversify(t *testing.T) {
	out, err := New().Generate(context.Background(), user("How should I invest my bonus?"))
	require.NoError(t, err)
	assert.Contains(t, out, "diversify")
}

func TestReplyTable(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"I have too much credit card DEBT", "high-interest debt"},
		{"when can I retire?", "401(k)s or IRAs"},
		{"help me budget", "50/30/20"},
		{"I want to save more", "3-6 months"},
		{"I'm a new user", "financial goals"},
		{"How do I get started investing?", "diversify"},
		{"My financial goal is to invest for retirement", "diversify"},
		{"I am a new user, where should I invest?", "diversify"},
		{"my timeline is 5 years", "risk tolerance"},
		{"what is the weather like", DefaultResponse},
		{"thank you", "completing the onboarding"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Contains(t, Reply(user(tc.in)), tc.want)
		})
	}
}

func TestReplyEmptyHistory(t *testing.T) {
	assert.Equal(t, Greeting, Reply(nil))
}

func TestReplyUsesLatestUserTurn(t *testing.T) {
	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a financial advisor. Ask about the budget."},
		{Role: llm.RoleUser, Content: "where should I invest?"},
		{Role: llm.RoleSystem, Content: "ask the next question"},
	}
	assert.Contains(t, Reply(msgs), "diversify")
}

func TestReplyFallsBackToLastMessageWithoutUserTurn(t *testing.T) {
	msgs := []llm.Message{{Role: llm.RoleSystem, Content: "Please ask about their financial goals"}}
	assert.Contains(t, Reply(msgs), "Welcome!")
}

func TestReplyDefault(t *testing.T) {
	assert.Equal(t, DefaultResponse, Reply(user("hello there")))
}
