package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingModel struct{ got []Message }

func (m *recordingModel) Generate(_ context.Context, msgs []Message) (string, error) {
	m.got = msgs
	return "ok", nil
}

func TestGenerateForPrompt(t *testing.T) {
	m := &recordingModel{}
	out, err := GenerateForPrompt(context.Background(), m, "first question", "be brief")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, []Message{{Role: RoleSystem, Content: "be brief"}, {Role: RoleUser, Content: "first question"}}, m.got)

	_, err = GenerateForPrompt(context.Background(), m, "only prompt", "")
	require.NoError(t, err)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "only prompt"}}, m.got)
}

func TestStatusErrorTemporary(t *testing.T) {
	assert.True(t, (&StatusError{Code: 429}).Temporary())
	assert.True(t, (&StatusError{Code: 503}).Temporary())
	assert.False(t, (&StatusError{Code: 400}).Temporary())
	assert.False(t, (&StatusError{Code: 401}).Temporary())
}

func TestLastUserMessage(t *testing.T) {
	msgs := []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "first"},
		{Role: RoleAssistant, Content: "reply"},
		{Role: RoleUser, Content: "second"},
		{Role: RoleSystem, Content: "follow-up instruction"},
	}
	assert.Equal(t, "second", LastUserMessage(msgs))
	assert.Equal(t, "", LastUserMessage(nil))
}

func TestTranscript(t *testing.T) {
	out := Transcript([]Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: " hello "},
	})
	assert.Equal(t, "System: be brief\n\nUser: hello\n\nAssistant:", out)
}
