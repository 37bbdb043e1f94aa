package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mycelian/portfolio-client/internal/types"
)

// Login exchanges credentials for a user and token pair and stores the
// tokens. It is sent without a bearer token, so a rejected password never
// triggers a refresh.
func (c *Client) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("login: email and password are required")
	}
	var out types.LoginResponse
	if err := c.do(ctx, call{
		op:     "login",
		method: http.MethodPost,
		path:   "/api/v1/auth/login",
		body:   req,
		out:    &out,
		anon:   true,
	}); err != nil {
		return nil, err
	}
	c.tokens.Set(out.Tokens)
	return &out, nil
}

// Logout blacklists the stored refresh token and clears both tokens. The
// local tokens are cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	refresh := c.tokens.Refresh()
	defer c.tokens.Clear()
	if refresh == "" {
		return nil
	}
	return c.do(ctx, call{
		op:     "logout",
		method: http.MethodPost,
		path:   "/api/v1/auth/logout",
		body:   types.LogoutRequest{RefreshToken: refresh},
	})
}

// GetProfile returns the authenticated user.
func (c *Client) GetProfile(ctx context.Context) (*types.User, error) {
	var u types.User
	if err := c.do(ctx, call{
		op:     "get profile",
		method: http.MethodGet,
		path:   "/api/v1/auth/profile",
		out:    &u,
	}); err != nil {
		return nil, err
	}
	return &u, nil
}
