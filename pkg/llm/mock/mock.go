// Package mock answers with canned financial guidance picked by keyword.
// It is the last provider in the chain and never fails.
package mock

import (
	"context"
	"strings"

	"github.com/artem13815/finadvisor/pkg/llm"
)

const (
	Greeting        = "I'm here to help with your financial questions!"
	DefaultResponse = "I understand. Could you tell me more about your financial situation so I can better assist you?"
)

type rule struct {
	keywords []string
	reply    string
}

// Rules are checked in order; the first match wins, so advice topics
// take precedence over onboarding phrases.
var rules = []rule{
	{
		keywords: []string{"invest", "portfolio", "stock"},
		reply:    "Based on general investment principles, it's usually a good idea to diversify your portfolio. Consider a mix of stocks, bonds, and other assets based on your risk tolerance and time horizon.",
	},
	{
		keywords: []string{"debt", "loan"},
		reply:    "When managing debt, it's often recommended to prioritize high-interest debt first while making minimum payments on others. Consider the avalanche method (highest interest first) or snowball method (smallest balance first).",
	},
	{
		keywords: []string{"retire"},
		reply:    "For retirement planning, consider maximizing contributions to tax-advantaged accounts like 401(k)s or IRAs. The earlier you start, the more you can benefit from compound growth.",
	},
	{
		keywords: []string{"budget"},
		reply:    "A popular budgeting approach is the 50/30/20 rule: 50% for needs, 30% for wants, and 20% for savings and debt repayment. Tracking your expenses is the first step to creating an effective budget.",
	},
	{
		keywords: []string{"save", "saving"},
		reply:    "Building an emergency fund should be a priority. Aim to save 3-6 months of essential expenses in an easily accessible account before focusing on other financial goals.",
	},
	{
		keywords: []string{"onboard", "new user", "get started", "financial goal"},
		reply:    "Welcome! Let's start by understanding your financial goals. What are you hoping to achieve in the next few years? For example, are you saving for a home, planning for retirement, or working on paying down debt?",
	},
	{
		keywords: []string{"timeline", "years", "long term", "short term"},
		reply:    "Thanks for sharing your timeline. How would you describe your risk tolerance: are you comfortable with market ups and downs, or do you prefer steadier, lower-risk options?",
	},
	{
		keywords: []string{"risk", "conservative", "aggressive", "moderate"},
		reply:    "That helps me understand your comfort with risk. With your goals, timeline, and risk tolerance in mind, I can suggest a personalized plan. Is there anything else about your finances you'd like me to know?",
	},
	{
		keywords: []string{"complete", "thank", "done"},
		reply:    "Thank you for completing the onboarding. I now have a good picture of your financial situation and goals, and I'm ready to give you personalized advice whenever you need it.",
	},
}

// Generator is a keyword-table model that needs no network access.
type Generator struct{}

func New() *Generator { return &Generator{} }

func (g *Generator) Name() string  { return "mock" }
func (g *Generator) Model() string { return "mock-keywords" }

// Generate never returns an error.
func (g *Generator) Generate(_ context.Context, messages []llm.Message) (string, error) {
	return Reply(messages), nil
}

// Reply picks a canned answer for the most recent user message.
func Reply(messages []llm.Message) string {
	if len(messages) == 0 {
		return Greeting
	}
	text := llm.LastUserMessage(messages)
	if text == "" {
		text = messages[len(messages)-1].Content
	}
	text = strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.reply
			}
		}
	}
	return DefaultResponse
}
