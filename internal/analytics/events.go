package analytics

import "unicode/utf16"

// Event types emitted by the convenience helpers.
const (
	EventPageView         = "page_view"
	EventProjectView      = "project_view"
	EventGigClick         = "gig_click"
	EventHireFormStart    = "hire_form_start"
	EventHireFormSubmit   = "hire_form_submit"
	EventChatQuery        = "chat_query"
	EventChatFeedback     = "chat_feedback"
	EventLinkClick        = "link_click"
	EventNotificationOpen = "notification_open"
)

// metadata builds a map, leaving out optional values that are empty.
type metadata map[string]any

func (m metadata) opt(key, value string) metadata {
	if value != "" {
		m[key] = value
	}
	return m
}

// PageView records a page view; title is optional.
func (q *Queue) PageView(path, title string) {
	q.Track(EventPageView, metadata{"path": path}.opt("title", title))
}

func (q *Queue) ProjectView(projectID, projectTitle, projectSlug string) {
	q.Track(EventProjectView, metadata{
		"project_id":    projectID,
		"project_title": projectTitle,
		"project_slug":  projectSlug,
	})
}

// GigClick records a click on a gig; externalPlatform is optional.
func (q *Queue) GigClick(gigID, gigTitle, clickType, externalPlatform string) {
	q.Track(EventGigClick, metadata{
		"gig_id":     gigID,
		"gig_title":  gigTitle,
		"click_type": clickType,
	}.opt("external_platform", externalPlatform))
}

func (q *Queue) HireFormStart(gigID string) {
	q.Track(EventHireFormStart, metadata{}.opt("gig_id", gigID))
}

func (q *Queue) HireFormSubmit(gigID, budget, timeline string) {
	q.Track(EventHireFormSubmit, metadata{}.
		opt("gig_id", gigID).
		opt("budget", budget).
		opt("timeline", timeline))
}

// ChatQuery records a chat query without its text: only the length and
// the kind of page context are sent. The length is in UTF-16 code units,
// matching what the browser client reports.
func (q *Queue) ChatQuery(query, audience, depth, tone string, context map[string]any) {
	q.Track(EventChatQuery, metadata{
		"query_length": len(utf16.Encode([]rune(query))),
		"audience":     audience,
		"depth":        depth,
		"tone":         tone,
		"context_type": contextType(context),
	})
}

func contextType(ctx map[string]any) string {
	if truthy(ctx["project_id"]) {
		return "project"
	}
	if truthy(ctx["gig_id"]) {
		return "gig"
	}
	return "general"
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}

func (q *Queue) ChatFeedback(messageID string, rating int, hasComment bool) {
	q.Track(EventChatFeedback, metadata{
		"message_id":  messageID,
		"rating":      rating,
		"has_comment": hasComment,
	})
}

// LinkClick records an outbound link; platform is optional.
func (q *Queue) LinkClick(linkType, destination, platform string) {
	q.Track(EventLinkClick, metadata{
		"link_type":   linkType,
		"destination": destination,
	}.opt("platform", platform))
}

func (q *Queue) NotificationOpen(notificationID, notificationType string) {
	q.Track(EventNotificationOpen, metadata{
		"notification_id":   notificationID,
		"notification_type": notificationType,
	})
}
