package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/time-guide/backend/internal/model/chat"
	"github.com/zhouzirui/time-guide/backend/internal/service/timelog"
)

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// State is the session-scoped state the tools may read or mutate. The caller
// must hold the session lock for as long as the registry is in use.
type State interface {
	TravelState() chat.TravelState
	SetTravelState(chat.TravelState)
	SetVerbose(bool)
}

// Registry is the closed dispatch table of tools for one conversational turn.
type Registry struct {
	tools map[string]tool.InvokableTool
}

// NewRegistry binds every tool to the event log and to one session's state.
func NewRegistry(log *timelog.Service, state State, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		tools: map[string]tool.InvokableTool{
			ListEvents:    &listEventsTool{log: log},
			EventDetails:  &eventDetailsTool{log: log},
			TravelToEvent: &travelTool{log: log, state: state, now: now},
			ToggleVerbose: &toggleVerboseTool{state: state},
		},
	}
}

// Tools returns the registered tools in the same order as Infos.
func (r *Registry) Tools() []tool.BaseTool {
	out := make([]tool.BaseTool, 0, len(r.tools))
	for _, info := range Infos() {
		out = append(out, r.tools[info.Name])
	}
	return out
}

// Dispatch runs the named tool. The returned text is always suitable for the
// reasoning model: failures are rendered as a short message and also returned
// as err so the caller can log them.
func (r *Registry) Dispatch(ctx context.Context, name, argumentsInJSON string) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownTool, name)
		return errorText(name, err), err
	}

	out, err := t.InvokableRun(ctx, argumentsInJSON)
	if err != nil {
		return errorText(name, err), err
	}
	return out, nil
}

func errorText(name string, err error) string {
	var (
		notFound   *timelog.NotFoundError
		validation *timelog.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		return fmt.Sprintf("Erro: Evento com ID %d não encontrado no registro de tempo.", notFound.ID)
	case errors.As(err, &validation):
		return fmt.Sprintf("Erro: Data inválida em '%s' (%q). Use o formato YYYY-MM-DD.", validation.Field, validation.Value)
	case errors.Is(err, timelog.ErrInvalidTravelRequest):
		return "Erro: Não foi possível processar a viagem. Especifique um evento válido ou peça para retornar ao presente."
	case errors.Is(err, ErrUnknownTool):
		return fmt.Sprintf("Erro: A ferramenta '%s' não existe.", name)
	case errors.Is(err, ErrInvalidArguments):
		return fmt.Sprintf("Erro: Argumentos inválidos para a ferramenta '%s'.", name)
	default:
		return "Erro: " + err.Error()
	}
}

func marshalResult(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(data), nil
}

type listEventsTool struct {
	log *timelog.Service
}

func (t *listEventsTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return listEventsInfo, nil
}

func (t *listEventsTool) InvokableRun(_ context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args listEventsArgs
	if err := decodeArgs(argumentsInJSON, &args); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	summaries, err := t.log.Search(timelog.Filter{
		Location:  args.Location,
		Topic:     args.Topic,
		StartDate: args.StartDate,
		EndDate:   args.EndDate,
	})
	if err != nil {
		return "", err
	}
	return marshalResult(summaries)
}

type eventDetailsTool struct {
	log *timelog.Service
}

func (t *eventDetailsTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return eventDetailsInfo, nil
}

func (t *eventDetailsTool) InvokableRun(_ context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args eventDetailsArgs
	if err := decodeArgs(argumentsInJSON, &args); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if args.EventID == nil {
		return "", fmt.Errorf("%w: eventId is required", ErrInvalidArguments)
	}

	e, err := t.log.GetByID(int(*args.EventID))
	if err != nil {
		return "", err
	}
	return marshalResult(e)
}

type travelTool struct {
	log   *timelog.Service
	state State
	now   func() time.Time
}

func (t *travelTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return travelInfo, nil
}

func (t *travelTool) InvokableRun(_ context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args travelArgs
	if err := decodeArgs(argumentsInJSON, &args); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	req := timelog.TravelRequest{ReturnToOrigin: args.ReturnToOrigin}
	if args.EventID != nil {
		id := int(*args.EventID)
		req.EventID = &id
	}

	result, err := t.log.Travel(t.state.TravelState(), req, t.now())
	if err != nil {
		return "", err
	}
	t.state.SetTravelState(result.State)
	return result.Message(), nil
}

type toggleVerboseTool struct {
	state State
}

func (t *toggleVerboseTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return toggleVerboseInfo, nil
}

func (t *toggleVerboseTool) InvokableRun(_ context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args toggleVerboseArgs
	if err := decodeArgs(argumentsInJSON, &args); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if args.Enable == nil {
		return "", fmt.Errorf("%w: enable is required", ErrInvalidArguments)
	}

	t.state.SetVerbose(*args.Enable)
	status := "desativados"
	if *args.Enable {
		status = "ativados"
	}
	return fmt.Sprintf("Logs detalhados foram %s. A mudança já vale para as próximas ferramentas executadas.", status), nil
}
