package chat

import "time"

// TravelState marks which event the conversation treats as its present.
// The zero value means the traveller is at the origin.
type TravelState struct {
	EventID int `json:"eventId,omitempty"`
}

// AtOrigin is the initial travel state.
func AtOrigin() TravelState {
	return TravelState{}
}

// AtEvent places the traveller at the given event.
func AtEvent(id int) TravelState {
	return TravelState{EventID: id}
}

// IsOrigin reports whether no event is referenced.
func (s TravelState) IsOrigin() bool {
	return s.EventID == 0
}

// Session captures a transient anonymous conversation.
type Session struct {
	ID         string      `json:"id"`
	Travel     TravelState `json:"travel"`
	Verbose    bool        `json:"verbose"`
	CreatedAt  time.Time   `json:"createdAt"`
	LastSeen   time.Time   `json:"lastSeen"`
	Transcript []Message   `json:"transcript,omitempty"`
}
