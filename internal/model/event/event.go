package event

import "time"

// Event is a single entry of the time-travel log.
type Event struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Topic       string    `json:"topic"`
	Description string    `json:"description"`
}

// Summary is the listing view of an Event, without its description.
type Summary struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
	Topic    string    `json:"topic"`
}

// Summary drops the narrative fields of the event.
func (e Event) Summary() Summary {
	return Summary{
		ID:       e.ID,
		Name:     e.Name,
		Date:     e.Date,
		Location: e.Location,
		Topic:    e.Topic,
	}
}
