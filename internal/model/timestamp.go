package model

import (
	"time"

	"github.com/nhle/todo-service/internal/apperr"
)

// Layouts accepted for client-supplied timestamps, in the order tried.
// Values without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO 8601 date or date-time and returns it in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

func parseDueDate(s string) (*time.Time, error) {
	t, err := ParseTimestamp(s)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, "Invalid due_date format. Use ISO format.", err)
	}
	return &t, nil
}
