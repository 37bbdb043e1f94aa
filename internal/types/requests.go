package types

// ------------------------------
// Request Types
// ------------------------------

// LoginRequest holds credentials for the login endpoint
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChatQueryRequest is the body of a chat query
type ChatQueryRequest struct {
	Query     string         `json:"query"`
	SessionID *string        `json:"session_id"`
	Context   map[string]any `json:"context"`
	Audience  string         `json:"audience"`
	Depth     string         `json:"depth"`
	Tone      string         `json:"tone"`
}

// MarkReadRequest marks a set of notifications, or all of them, as read
type MarkReadRequest struct {
	NotificationIDs []int `json:"notification_ids,omitempty"`
	MarkAllRead     bool  `json:"mark_all_read,omitempty"`
}

// AnalyticsEventRequest is the wire shape accepted by the telemetry sink
type AnalyticsEventRequest struct {
	EventType string         `json:"event_type"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// LogoutRequest blacklists a refresh token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshRequest exchanges a refresh token for a new access token
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}
