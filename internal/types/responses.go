package types

// ------------------------------
// Response Types
// ------------------------------

// LoginResponse is returned by login and register
type LoginResponse struct {
	User   User   `json:"user"`
	Tokens Tokens `json:"tokens"`
}

// RefreshResponse carries a fresh access token
type RefreshResponse struct {
	Access string `json:"access"`
}

// ListNotificationsResponse mirrors the paginated list endpoint
type ListNotificationsResponse struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []Notification `json:"results"`
}

// UnreadCountResponse is the authoritative server-side unread count
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// StatusResponse is the generic acknowledgment body
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ChatQueryResponse is the assistant reply to a chat query
type ChatQueryResponse struct {
	SessionID      string   `json:"session_id"`
	MessageID      string   `json:"message_id"`
	Response       string   `json:"response"`
	Sources        []Source `json:"sources"`
	ResponseTimeMS int      `json:"response_time_ms"`
	MessageCount   int      `json:"message_count"`
}

// TrackEventResponse acknowledges a stored analytics event
type TrackEventResponse struct {
	Status    string `json:"status"`
	EventID   int64  `json:"event_id"`
	Timestamp string `json:"timestamp"`
}
