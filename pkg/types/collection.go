package types

import (
	"strings"
)

// Collection is a named set of API endpoint definitions under management
type Collection struct {
	ID        string    `json:"id" yaml:"id"`
	UserID    string    `json:"user_id" yaml:"user_id"`
	Name      string    `json:"name" yaml:"name"`
	FirstSeen Timestamp `json:"first_seen" yaml:"first_seen"`
	LastSeen  Timestamp `json:"last_seen" yaml:"last_seen"`
}

// RemoteCollection is a collection visible through a third-party API key
// that has not necessarily been imported yet
type RemoteCollection struct {
	ID        string `json:"id" yaml:"id"`
	UID       string `json:"uid,omitempty" yaml:"uid,omitempty"`
	Name      string `json:"name" yaml:"name"`
	Owner     string `json:"owner,omitempty" yaml:"owner,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`
}

// SaveCollectionRequest is the body of POST /collections/save-collection
type SaveCollectionRequest struct {
	CollectionID string `json:"collection_id" validate:"required,max=128"`
	Name         string `json:"name" validate:"required,max=255"`
}

// Normalize trims whitespace from both identifying fields
func (r *SaveCollectionRequest) Normalize() {
	r.CollectionID = strings.TrimSpace(r.CollectionID)
	r.Name = strings.TrimSpace(r.Name)
}

// APIKey is a third-party API key registered for remote collection listing.
// The full key is only present in the create response.
type APIKey struct {
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
	Name    string `json:"name" yaml:"name"`
	Key     string `json:"key" yaml:"key"`
	Default bool   `json:"default" yaml:"default"`
}

const maskedPrefixLen = 6

// Masked returns the key reduced to a short visible prefix
func (k *APIKey) Masked() string {
	if k.Key == "" {
		return ""
	}
	if len(k.Key) <= maskedPrefixLen {
		return strings.Repeat("*", len(k.Key))
	}
	return k.Key[:maskedPrefixLen] + strings.Repeat("*", 8)
}

// Credentials is the body of the signup and login calls
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token,omitempty"`
}

// Value returns whichever token field the backend populated
func (t *TokenResponse) Value() string {
	if t.Token != "" {
		return t.Token
	}
	return t.AccessToken
}

// HealthStatus is the body of GET /health-check
type HealthStatus struct {
	Status  string `json:"status" yaml:"status"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}
