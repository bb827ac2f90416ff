package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

const voiceGuard = "You are a concise assistant. Keep answers to 1-2 short sentences. " +
	"Refuse complex, unsafe, or overly technical topics with a brief, friendly explanation and suggest a simpler alternative. " +
	"Always remain in the provided character and style if one is supplied."

// Voice produces short, persona-styled replies for the speech demo. It keeps
// no conversation state.
type Voice struct {
	chain     compose.Runnable[map[string]any, *schema.Message]
	maxTokens int
}

// NewVoice compiles the guard + persona + message chain.
func NewVoice(ctx context.Context, chatModel model.ChatModel, maxTokens int) (*Voice, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{guard}"),
		schema.MessagesPlaceholder("persona", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile voice chain: %w", err)
	}

	return &Voice{chain: runnable, maxTokens: maxTokens}, nil
}

// Reply answers message in the style described by persona, which may be empty.
func (v *Voice) Reply(ctx context.Context, persona, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrMessageRequired
	}

	input := map[string]any{
		"guard": voiceGuard,
		"query": message,
	}
	if persona = strings.TrimSpace(persona); persona != "" {
		input["persona"] = []*schema.Message{schema.SystemMessage("Character: " + persona)}
	}

	var opts []compose.Option
	if v.maxTokens > 0 {
		opts = append(opts, compose.WithChatModelOption(model.WithMaxTokens(v.maxTokens)))
	}

	response, err := v.chain.Invoke(ctx, input, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to run voice chain: %w", err)
	}
	return strings.TrimSpace(response.Content), nil
}
