package shared

import "time"

// ParseDate accepts RFC3339 timestamps or plain YYYY-MM-DD dates. An empty
// value parses to the zero time without error so optional date fields stay
// optional.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(time.DateOnly, value)
}
