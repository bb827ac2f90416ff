package tools

import "github.com/cloudwego/eino/schema"

// Tool names are part of the contract with the reasoning model.
const (
	ListEvents    = "list_galactic_events"
	EventDetails  = "get_event_details"
	TravelToEvent = "travel_to_event"
	ToggleVerbose = "toggle_verbose_logs"
)

var (
	listEventsInfo = &schema.ToolInfo{
		Name: ListEvents,
		Desc: "Lista eventos históricos e futuros do registro de tempo. Pode ser filtrado por local, tópico e/ou um intervalo de datas.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"location": {
				Type: schema.String,
				Desc: "O local (planeta, lua, etc.) para filtrar os eventos (e.g., 'Marte', 'Terra')",
			},
			"topic": {
				Type: schema.String,
				Desc: "O tópico para filtrar os eventos (e.g., 'Colonização Planetária', 'Astronomia')",
			},
			"startDate": {
				Type: schema.String,
				Desc: "A data de início para o filtro (formato ISO: YYYY-MM-DD)",
			},
			"endDate": {
				Type: schema.String,
				Desc: "A data de término para o filtro (formato ISO: YYYY-MM-DD)",
			},
		}),
	}

	eventDetailsInfo = &schema.ToolInfo{
		Name: EventDetails,
		Desc: "Obtém os detalhes completos de um evento específico pelo seu ID.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"eventId": {
				Type:     schema.Integer,
				Desc:     "O ID único do evento.",
				Required: true,
			},
		}),
	}

	travelInfo = &schema.ToolInfo{
		Name: TravelToEvent,
		Desc: "Viaja no tempo para um evento específico ou retorna o usuário para o presente.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"eventId": {
				Type: schema.Integer,
				Desc: "O ID do evento para o qual viajar. Omitir se estiver retornando ao presente.",
			},
			"returnToOrigin": {
				Type: schema.Boolean,
				Desc: "Defina como 'true' para retornar ao ponto de origem (presente).",
			},
		}),
	}

	toggleVerboseInfo = &schema.ToolInfo{
		Name: ToggleVerbose,
		Desc: "Ativa ou desativa os logs detalhados (verbose) do sistema.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"enable": {
				Type:     schema.Boolean,
				Desc:     "Defina como 'true' para ativar os logs, 'false' para desativar.",
				Required: true,
			},
		}),
	}
)

// Infos returns the definitions of every tool, in a stable order, for binding
// to a chat model.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{listEventsInfo, eventDetailsInfo, travelInfo, toggleVerboseInfo}
}
