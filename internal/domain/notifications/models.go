package notifications

import "time"

type Notification struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Settings is the tenant's email side-effect switch. When disabled, in-app
// notifications are still written but no email goes out.
type Settings struct {
	EmailEnabled bool   `json:"emailEnabled"`
	EmailFrom    string `json:"emailFrom"`
}
