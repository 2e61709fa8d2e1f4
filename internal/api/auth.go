package api

import (
	"context"
	"fmt"
	"net/http"
)

// LoginResult carries the credentials returned by a successful login.
type LoginResult struct {
	Token  string
	UserID string
	Role   string
}

// Login authenticates with email and password. The returned token is what
// every other call and the duplex channel handshake present as the bearer.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var out struct {
		Token string `json:"token"`
		User  struct {
			ID      string `json:"id"`
			MongoID string `json:"_id"`
			Role    string `json:"role"`
		} `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("login: no token in response")
	}
	role := out.User.Role
	if role == "" {
		role = "commuter"
	}
	return &LoginResult{
		Token:  out.Token,
		UserID: firstNonEmpty(out.User.MongoID, out.User.ID),
		Role:   role,
	}, nil
}
