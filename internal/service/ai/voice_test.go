package ai

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceReplyWithPersona(t *testing.T) {
	m := &scriptedModel{replies: []*schema.Message{schema.AssistantMessage("Era uma vez uma estrela. ", nil)}}
	voice, err := NewVoice(context.Background(), m, 120)
	require.NoError(t, err)

	out, err := voice.Reply(context.Background(), "You are Luna, a kids' storyteller.", "conte uma história")
	require.NoError(t, err)
	assert.Equal(t, "Era uma vez uma estrela.", out)

	calls := m.calls()
	require.Len(t, calls, 1)
	input := calls[0]
	require.Len(t, input, 3)
	assert.Equal(t, voiceGuard, input[0].Content)
	assert.Equal(t, "Character: You are Luna, a kids' storyteller.", input[1].Content)
	assert.Equal(t, schema.User, input[2].Role)

	require.NotNil(t, m.options[0].MaxTokens)
	assert.Equal(t, 120, *m.options[0].MaxTokens)
}

func TestVoiceReplyWithoutPersona(t *testing.T) {
	m := &scriptedModel{replies: []*schema.Message{schema.AssistantMessage("Oi!", nil)}}
	voice, err := NewVoice(context.Background(), m, 0)
	require.NoError(t, err)

	_, err = voice.Reply(context.Background(), "  ", "olá")
	require.NoError(t, err)

	input := m.calls()[0]
	require.Len(t, input, 2)
	assert.Equal(t, schema.System, input[0].Role)
	assert.Equal(t, "olá", input[1].Content)
	assert.Nil(t, m.options[0].MaxTokens)
}

func TestVoiceReplyRejectsEmptyMessage(t *testing.T) {
	voice, err := NewVoice(context.Background(), &scriptedModel{}, 120)
	require.NoError(t, err)

	_, err = voice.Reply(context.Background(), "", " ")
	require.ErrorIs(t, err, ErrMessageRequired)
}
