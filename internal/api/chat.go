package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mycelian/portfolio-client/internal/types"
)

// SendChatQuery asks the assistant a question.
func (c *Client) SendChatQuery(ctx context.Context, req types.ChatQueryRequest) (*types.ChatQueryResponse, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("chat query: query is required")
	}
	if req.Context == nil {
		req.Context = map[string]any{}
	}
	var out types.ChatQueryResponse
	if err := c.do(ctx, call{
		op:     "chat query",
		method: http.MethodPost,
		path:   "/api/v1/chat/query",
		body:   req,
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}
