// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package users reads and saves user profiles on the server.
package users

import (
	"context"
	"net/url"
	"strings"

	"github.com/pdiddy/univ-insight/internal/catalog"
	"github.com/pdiddy/univ-insight/internal/gateway"
	"github.com/pdiddy/univ-insight/pkg/types"
)

// Caller is the slice of the gateway the client needs.
type Caller interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, query url.Values, body, out any) error
}

// Client talks to the user endpoints.
type Client struct {
	gw Caller
}

// New returns a Client that issues its calls through gw.
func New(gw Caller) *Client {
	return &Client{gw: gw}
}

// Profile is the editable part of an identity.
type Profile struct {
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Role      types.Role `json:"role"`
	Interests []string   `json:"interests"`
}

// Get fetches the server's copy of a user.
func (c *Client) Get(ctx context.Context, userID string) (types.Identity, error) {
	if strings.TrimSpace(userID) == "" {
		return types.Identity{}, &gateway.Error{Kind: gateway.NotFound, Op: "GET /users/{id}", Detail: "empty id"}
	}
	op := "GET /users/" + userID

	var w userWire
	if err := c.gw.Get(ctx, "/users/"+url.PathEscape(userID), nil, &w); err != nil {
		return types.Identity{}, err
	}

	id := types.Identity{
		ID:              w.ID,
		Name:            w.Name,
		Role:            types.Role(w.Role),
		Interests:       types.NormalizeInterests(w.Interests),
		ExternalPageRef: w.NotionPageID,
		CreatedAt:       catalog.ParseTime(w.CreatedAt),
	}
	if err := id.Validate(); err != nil {
		return types.Identity{}, gateway.Invalid(op, "%v", err)
	}
	return id, nil
}

// Save creates or updates the profile upstream. Interests are normalized
// before sending.
func (c *Client) Save(ctx context.Context, p Profile) (string, error) {
	const op = "POST /users/profile"
	p.Interests = types.NormalizeInterests(p.Interests)

	var w struct {
		Status string `json:"status"`
		UserID string `json:"user_id"`
	}
	if err := c.gw.Post(ctx, "/users/profile", nil, p, &w); err != nil {
		return "", err
	}
	if w.UserID == "" {
		return "", gateway.Invalid(op, "response has no user_id")
	}
	if w.UserID != p.UserID {
		return "", gateway.Invalid(op, "saved user %q, sent %q", w.UserID, p.UserID)
	}
	return w.Status, nil
}

type userWire struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Interests    []string `json:"interests"`
	NotionPageID string   `json:"notion_page_id"`
	CreatedAt    string   `json:"created_at"`
}
