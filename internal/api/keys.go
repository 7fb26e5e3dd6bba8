package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/pkg/types"
)

// CreateAPIKey registers a third-party API key. The response is the only
// time the full key value is available.
func (c *Client) CreateAPIKey(ctx context.Context, key types.APIKey) (*types.APIKey, error) {
	if strings.TrimSpace(key.Key) == "" {
		return nil, errors.ValidationError("API key value is required")
	}

	var created types.APIKey
	if err := c.do(ctx, &request{
		method: http.MethodPost,
		path:   "/api-key",
		body:   key,
	}, &created); err != nil {
		return nil, err
	}
	if created.Key == "" {
		created.Key = key.Key
	}
	if created.Name == "" {
		created.Name = key.Name
	}
	return &created, nil
}

// ListAPIKeys returns the registered keys
func (c *Client) ListAPIKeys(ctx context.Context) ([]types.APIKey, error) {
	var keys []types.APIKey
	err := c.doList(ctx, &request{
		method: http.MethodGet,
		path:   "/keys/api-keys",
	}, &keys, "api_keys", "keys")
	return keys, err
}

// DeleteAPIKey removes a key by id
func (c *Client) DeleteAPIKey(ctx context.Context, id string) error {
	if id == "" {
		return errors.ValidationError("API key id is required")
	}
	return c.do(ctx, &request{
		method: http.MethodDelete,
		path:   pathf("/keys/api-key/%s", id),
	}, nil)
}
