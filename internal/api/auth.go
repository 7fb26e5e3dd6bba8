package api

import (
	"context"
	"net/http"

	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/pkg/types"
)

// Signup registers a new account
func (c *Client) Signup(ctx context.Context, creds types.Credentials) error {
	return c.do(ctx, &request{
		method: http.MethodPost,
		path:   "/signup",
		body:   creds,
		public: true,
	}, nil)
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, creds types.Credentials) (string, error) {
	var resp types.TokenResponse
	if err := c.do(ctx, &request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   creds,
		public: true,
	}, &resp); err != nil {
		return "", err
	}

	token := resp.Value()
	if token == "" {
		return "", errors.BackendError(http.StatusOK, "").WithCause("login response carried no token")
	}
	return token, nil
}
