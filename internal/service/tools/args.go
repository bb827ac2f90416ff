package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// flexInt accepts a JSON number or a numeric string; models are not always
// strict about integer arguments.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		raw = []byte(strings.TrimSpace(s))
	}

	n, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", data)
	}
	if n != float64(int(n)) {
		return fmt.Errorf("not an integer: %s", data)
	}
	*f = flexInt(n)
	return nil
}

type listEventsArgs struct {
	Location  string `json:"location"`
	Topic     string `json:"topic"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type eventDetailsArgs struct {
	EventID *flexInt `json:"eventId"`
}

type travelArgs struct {
	EventID        *flexInt `json:"eventId"`
	ReturnToOrigin bool     `json:"returnToOrigin"`
}

type toggleVerboseArgs struct {
	Enable *bool `json:"enable"`
}

// decodeArgs treats empty input as an empty object.
func decodeArgs(argumentsInJSON string, v any) error {
	raw := strings.TrimSpace(argumentsInJSON)
	if raw == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("argumentos inválidos: %w", err)
	}
	return nil
}
