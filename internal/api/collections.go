package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/pkg/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ListRemoteCollections lists the collections visible under the active
// third-party API key
func (c *Client) ListRemoteCollections(ctx context.Context) ([]types.RemoteCollection, error) {
	var remote []types.RemoteCollection
	err := c.doList(ctx, &request{
		method: http.MethodGet,
		path:   "/collections",
	}, &remote, "collections")
	return remote, err
}

// ListUserCollections lists the collections already under management
func (c *Client) ListUserCollections(ctx context.Context) ([]types.Collection, error) {
	var collections []types.Collection
	err := c.doList(ctx, &request{
		method: http.MethodGet,
		path:   "/collections/user",
	}, &collections, "collections")
	return collections, err
}

// SaveCollection imports a collection, or re-saves it to capture a new
// snapshot when it is already known
func (c *Client) SaveCollection(ctx context.Context, req types.SaveCollectionRequest) (*types.Collection, error) {
	req.Normalize()
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	var saved types.Collection
	if err := c.do(ctx, &request{
		method: http.MethodPost,
		path:   "/collections/save-collection",
		body:   req,
	}, &saved); err != nil {
		return nil, err
	}
	if saved.ID == "" {
		saved.ID = req.CollectionID
	}
	if saved.Name == "" {
		saved.Name = req.Name
	}
	return &saved, nil
}

// GetCollection fetches one collection
func (c *Client) GetCollection(ctx context.Context, id string) (*types.Collection, error) {
	if id == "" {
		return nil, errors.ValidationError("collection id is required")
	}
	var collection types.Collection
	if err := c.do(ctx, &request{
		method: http.MethodGet,
		path:   pathf("/collections/%s", id),
	}, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// validateRequest converts struct validation failures into a validation error
func validateRequest(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.ValidationError(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return errors.ValidationError(strings.Join(msgs, "; "))
}
