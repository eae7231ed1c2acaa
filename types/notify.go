package types

// Notification represents a notification message structure
type Notification struct {
	Type    string         `json:"type,omitempty"`    // Notification type, e.g. "best_changed", "run_end"
	Title   string         `json:"title,omitempty"`   // Notification title
	Message string         `json:"message,omitempty"` // Notification message/content
	Data    map[string]any `json:"data,omitempty"`    // Additional data fields
}

const (
	NotifyTypeRunStart    = "run_start"
	NotifyTypeRunEnd      = "run_end"
	NotifyTypeRunFailed   = "run_failed"
	NotifyTypeBestChanged = "best_changed"
	NotifyTypeHostsBound  = "hosts_bound"
)
