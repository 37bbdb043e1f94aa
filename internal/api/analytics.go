package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mycelian/portfolio-client/internal/types"
)

// TrackEvent stores one analytics event.
func (c *Client) TrackEvent(ctx context.Context, req types.AnalyticsEventRequest) (*types.TrackEventResponse, error) {
	if req.EventType == "" {
		return nil, fmt.Errorf("track event: event_type is required")
	}
	var out types.TrackEventResponse
	if err := c.do(ctx, call{
		op:     "track event",
		method: http.MethodPost,
		path:   "/api/v1/analytics/event",
		body:   req,
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}
