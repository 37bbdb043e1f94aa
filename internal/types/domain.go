package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// User is the profile returned by login and profile endpoints.
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	FullName        string     `json:"full_name"`
	DisplayName     string     `json:"display_name,omitempty"`
	Avatar          string     `json:"avatar,omitempty"`
	Bio             string     `json:"bio,omitempty"`
	Role            string     `json:"role"`
	IsEmailVerified bool       `json:"is_email_verified"`
	IsStaff         bool       `json:"is_staff"`
	LastActivity    *time.Time `json:"last_activity,omitempty"`
	LoginCount      int        `json:"login_count,omitempty"`
	DateJoined      time.Time  `json:"date_joined"`
}

// Notification is a single entry of the notification feed.
type Notification struct {
	ID        int            `json:"id"`
	Type      string         `json:"type"`
	Priority  string         `json:"priority"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Link      string         `json:"link,omitempty"`
	IsRead    bool           `json:"is_read"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Source is a reference attached to an assistant chat reply.
type Source struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Message is one chat turn, from the visitor or from the assistant.
type Message struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	IsFromUser bool      `json:"is_from_user"`
	Sources    []Source  `json:"sources,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Tokens is the JWT pair issued by the auth endpoints.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
