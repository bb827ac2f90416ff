package timelog

import (
	"fmt"
	"time"

	"github.com/zhouzirui/time-guide/backend/internal/model/chat"
	"github.com/zhouzirui/time-guide/backend/internal/model/event"
)

// Direction tells whether a trip went backwards or forwards in time.
type Direction string

const (
	DirectionPast   Direction = "past"
	DirectionFuture Direction = "future"
)

// TravelRequest carries the travel tool arguments.
type TravelRequest struct {
	EventID        *int
	ReturnToOrigin bool
}

// TravelResult describes a successful transition.
type TravelResult struct {
	State     chat.TravelState
	Event     *event.Event
	Direction Direction
}

// Message renders the confirmation relayed to the reasoning model.
func (r TravelResult) Message() string {
	if r.Event == nil {
		return "Ok, você retornou ao presente."
	}
	period := "no futuro"
	if r.Direction == DirectionPast {
		period = "de volta no tempo"
	}
	return fmt.Sprintf("Ok, você viajou para o evento '%s' %s.", r.Event.Name, period)
}

// Travel computes the next travel state. Returning to the origin wins over an
// event id; otherwise the id must resolve. On failure the current state is
// returned unchanged together with ErrInvalidTravelRequest.
func (s *Service) Travel(current chat.TravelState, req TravelRequest, now time.Time) (TravelResult, error) {
	if req.ReturnToOrigin {
		return TravelResult{State: chat.AtOrigin()}, nil
	}

	if req.EventID == nil {
		return TravelResult{State: current}, ErrInvalidTravelRequest
	}

	e, ok := s.events.FindByID(*req.EventID)
	if !ok {
		return TravelResult{State: current}, fmt.Errorf("event %d: %w", *req.EventID, ErrInvalidTravelRequest)
	}

	direction := DirectionFuture
	if e.Date.Before(now) {
		direction = DirectionPast
	}

	return TravelResult{
		State:     chat.AtEvent(e.ID),
		Event:     &e,
		Direction: direction,
	}, nil
}

// Locate resolves the event referenced by a travel state, if any.
func (s *Service) Locate(state chat.TravelState) (event.Event, bool) {
	if state.IsOrigin() {
		return event.Event{}, false
	}
	return s.events.FindByID(state.EventID)
}
