// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data model shared by the univ-insight clients,
// the session store, and the view controllers. Values here are wire-neutral:
// each client package decodes the API's JSON into private structs and maps
// them onto these types.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Role is the kind of user acting in a session.
type Role string

const (
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleParent
}

// Identity is the locally held record of the acting user. It is created at
// login, replaced by a profile save, and dropped on logout.
type Identity struct {
	// ID is the user identifier declared at login (Kakao ID or any opaque string).
	ID string `json:"id" yaml:"id"`

	// Name is the display name.
	Name string `json:"name" yaml:"name"`

	// Role is student or parent.
	Role Role `json:"role" yaml:"role"`

	// Interests is an ordered set: trimmed, non-blank, no duplicates.
	Interests []string `json:"interests" yaml:"interests"`

	// ExternalPageRef points at the user's report page in the external
	// notes workspace, when one has been provisioned.
	ExternalPageRef string `json:"notion_page_id,omitempty" yaml:"notion_page_id,omitempty"`

	// CreatedAt is when the identity was first declared.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Validate checks the fields a session cannot work without.
func (id Identity) Validate() error {
	if strings.TrimSpace(id.ID) == "" {
		return fmt.Errorf("identity id is required")
	}
	if strings.TrimSpace(id.Name) == "" {
		return fmt.Errorf("identity name is required")
	}
	if !id.Role.Valid() {
		return fmt.Errorf("invalid role %q: use %s or %s", id.Role, RoleStudent, RoleParent)
	}
	return nil
}

// NormalizeInterests trims each entry, drops blanks, and removes later
// duplicates (case-sensitive) while keeping first-seen order. The result is
// never nil.
func NormalizeInterests(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// ParseInterests splits a comma-separated list as typed into a login or
// profile form and normalizes it.
func ParseInterests(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return NormalizeInterests(strings.Split(s, ","))
}
