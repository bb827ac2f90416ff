package timelog

import (
	"strings"
	"time"

	"github.com/zhouzirui/time-guide/backend/internal/model/event"
)

// Service answers queries over the event log.
type Service struct {
	events event.Store
}

// NewService wraps the supplied store.
func NewService(events event.Store) *Service {
	return &Service{events: events}
}

// Filter narrows a search. Empty fields impose no constraint.
type Filter struct {
	Location  string `json:"location,omitempty"`
	Topic     string `json:"topic,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// Search returns summaries of the events matching every supplied filter,
// in log order. A present but unparseable date bound rejects the request.
func (s *Service) Search(filter Filter) ([]event.Summary, error) {
	start, hasStart, err := parseBound("startDate", filter.StartDate)
	if err != nil {
		return nil, err
	}
	end, hasEnd, err := parseBound("endDate", filter.EndDate)
	if err != nil {
		return nil, err
	}

	location := strings.ToLower(strings.TrimSpace(filter.Location))
	topic := strings.ToLower(strings.TrimSpace(filter.Topic))

	results := make([]event.Summary, 0)
	for _, e := range s.events.All() {
		if location != "" && !strings.Contains(strings.ToLower(e.Location), location) {
			continue
		}
		if topic != "" && !strings.Contains(strings.ToLower(e.Topic), topic) {
			continue
		}
		if hasStart && e.Date.Before(start) {
			continue
		}
		if hasEnd && e.Date.After(end) {
			continue
		}
		results = append(results, e.Summary())
	}
	return results, nil
}

// GetByID returns the full record or a *NotFoundError.
func (s *Service) GetByID(id int) (event.Event, error) {
	e, ok := s.events.FindByID(id)
	if !ok {
		return event.Event{}, &NotFoundError{ID: id}
	}
	return e, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseBound accepts a calendar date (midnight UTC), an RFC 3339 timestamp or
// a timestamp without zone, read as UTC.
func parseBound(field, raw string) (time.Time, bool, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true, nil
		}
	}
	return time.Time{}, false, &ValidationError{Field: field, Value: value, Err: ErrInvalidDate}
}
