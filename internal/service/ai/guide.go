package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/time-guide/backend/internal/model/chat"
	"github.com/zhouzirui/time-guide/backend/internal/model/event"
	chatService "github.com/zhouzirui/time-guide/backend/internal/service/chat"
	"github.com/zhouzirui/time-guide/backend/internal/service/timelog"
	"github.com/zhouzirui/time-guide/backend/internal/service/tools"
)

var (
	ErrMessageRequired = errors.New("message is required")
	ErrStepLimit       = errors.New("tool-calling step limit reached")
)

// Hooks observe the progress of a turn. Any field may be nil.
type Hooks struct {
	OnThinking  func(step int)
	OnToolStart func(name, arguments string)
	OnToolEnd   func(name, result string, err error)
}

func (h *Hooks) thinking(step int) {
	if h != nil && h.OnThinking != nil {
		h.OnThinking(step)
	}
}

func (h *Hooks) toolStart(name, arguments string) {
	if h != nil && h.OnToolStart != nil {
		h.OnToolStart(name, arguments)
	}
}

func (h *Hooks) toolEnd(name, result string, err error) {
	if h != nil && h.OnToolEnd != nil {
		h.OnToolEnd(name, result, err)
	}
}

// Options tune the conversation loop.
type Options struct {
	MaxSteps     int
	HistoryLimit int
	TurnTimeout  time.Duration
	Now          func() time.Time
}

// Reply is the outcome of one conversational turn.
type Reply struct {
	SessionID string           `json:"sessionId"`
	Output    string           `json:"output"`
	Travel    chat.TravelState `json:"travel"`
	Steps     int              `json:"-"`
}

// Guide runs the time-travel guide conversation: it offers the tools to the
// chat model, executes the calls it makes and records the finished turn.
type Guide struct {
	chatModel model.BaseChatModel
	template  prompt.ChatTemplate
	sessions  *chatService.Service
	timelog   *timelog.Service
	opts      Options
}

// NewGuide binds the tool definitions to chatModel.
func NewGuide(chatModel model.ChatModel, sessions *chatService.Service, timeline *timelog.Service, opts Options) (*Guide, error) {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 6
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	bound, err := bindTools(chatModel, tools.Infos())
	if err != nil {
		return nil, fmt.Errorf("failed to bind tools: %w", err)
	}

	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	return &Guide{
		chatModel: bound,
		template:  template,
		sessions:  sessions,
		timelog:   timeline,
		opts:      opts,
	}, nil
}

func bindTools(chatModel model.ChatModel, infos []*schema.ToolInfo) (model.BaseChatModel, error) {
	if tc, ok := chatModel.(model.ToolCallingChatModel); ok {
		return tc.WithTools(infos)
	}
	if err := chatModel.BindTools(infos); err != nil {
		return nil, err
	}
	return chatModel, nil
}

// Respond handles one user message. An empty sessionID starts a new
// conversation; an expired one is replaced by a fresh identifier.
func (g *Guide) Respond(ctx context.Context, sessionID, message string, hooks *Hooks) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrMessageRequired
	}

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = chatService.NewSessionID()
	}

	if g.opts.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.TurnTimeout)
		defer cancel()
	}

	reply, err := g.respond(ctx, sessionID, message, hooks)
	if errors.Is(err, chatService.ErrSessionExpired) {
		fresh := chatService.NewSessionID()
		log.Printf("[guide] session=%s expired, continuing as %s", sessionID, fresh)
		return g.respond(ctx, fresh, message, hooks)
	}
	return reply, err
}

// Locate resolves the event a reply left the traveller at.
func (g *Guide) Locate(state chat.TravelState) (string, bool) {
	e, ok := g.timelog.Locate(state)
	if !ok {
		return "", false
	}
	return e.Name, true
}

func (g *Guide) respond(ctx context.Context, sessionID, message string, hooks *Hooks) (Reply, error) {
	reply := Reply{SessionID: sessionID}

	err := g.sessions.Do(ctx, sessionID, func(tx *chatService.Tx) error {
		var location *event.Event
		if e, ok := g.timelog.Locate(tx.TravelState()); ok {
			location = &e
		}

		messages, err := g.template.Format(ctx, map[string]any{
			"system":  buildGuidePrompt(location, g.opts.Now()),
			"history": buildHistoryMessages(tx.Transcript(), g.opts.HistoryLimit),
			"query":   message,
		})
		if err != nil {
			return fmt.Errorf("failed to format prompt: %w", err)
		}

		registry := tools.NewRegistry(g.timelog, tx, g.opts.Now)
		output, steps, err := g.run(ctx, tx, registry, messages, hooks)
		if err != nil {
			return err
		}

		if _, err := tx.AppendTurn(chat.RoleUser, message); err != nil {
			return err
		}
		if _, err := tx.AppendTurn(chat.RoleAssistant, output); err != nil {
			return err
		}

		reply.Output = output
		reply.Steps = steps
		reply.Travel = tx.TravelState()
		return nil
	})
	if err != nil {
		return Reply{SessionID: sessionID}, err
	}

	log.Printf("[guide] session=%s steps=%d length=%d", sessionID, reply.Steps, len(reply.Output))
	return reply, nil
}

// run alternates model calls and tool executions until the model answers
// without requesting a tool.
func (g *Guide) run(ctx context.Context, tx *chatService.Tx, registry *tools.Registry, messages []*schema.Message, hooks *Hooks) (string, int, error) {
	sessionID := tx.Session().ID

	for step := 1; step <= g.opts.MaxSteps; step++ {
		hooks.thinking(step)

		response, err := g.chatModel.Generate(ctx, messages)
		if err != nil {
			return "", step, fmt.Errorf("failed to run chat model: %w", err)
		}
		if response == nil {
			return "", step, fmt.Errorf("chat model returned no message")
		}

		if len(response.ToolCalls) == 0 {
			return strings.TrimSpace(response.Content), step, nil
		}

		messages = append(messages, response)
		for _, call := range response.ToolCalls {
			name, arguments := call.Function.Name, call.Function.Arguments
			hooks.toolStart(name, arguments)

			result, toolErr := registry.Dispatch(ctx, name, arguments)
			switch {
			case tx.Verbose():
				log.Printf("[guide] session=%s tool=%s args=%s result=%s", sessionID, name, arguments, result)
			case toolErr != nil:
				log.Printf("[guide] session=%s tool=%s failed: %v", sessionID, name, toolErr)
			}

			hooks.toolEnd(name, result, toolErr)
			messages = append(messages, schema.ToolMessage(result, call.ID))
		}
	}

	return "", g.opts.MaxSteps, ErrStepLimit
}

// buildHistoryMessages keeps at most limit messages, cut at a turn boundary so
// the window never opens with an assistant reply.
func buildHistoryMessages(messages []chat.Message, limit int) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	if limit > 0 {
		limit -= limit % 2
		if limit == 0 {
			limit = 2
		}
	}

	startIdx := 0
	if limit > 0 && len(messages) > limit {
		startIdx = len(messages) - limit
	}
	for startIdx < len(messages) && messages[startIdx].Role != chat.RoleUser {
		startIdx++
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}
