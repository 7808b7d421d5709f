// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package views

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/univ-insight/internal/users"
	"github.com/pdiddy/univ-insight/pkg/types"
)

// LoginForm is what a user types to declare who they are. There is no
// password: logging in is a declaration of identity.
type LoginForm struct {
	ID        string
	Name      string
	Role      string
	Interests string
}

// Login turns the form into an identity and stores it in the session.
func Login(ctx context.Context, s Session, f LoginForm) (types.Identity, error) {
	id := types.Identity{
		ID:        strings.TrimSpace(f.ID),
		Name:      strings.TrimSpace(f.Name),
		Role:      types.Role(strings.ToLower(strings.TrimSpace(f.Role))),
		Interests: types.ParseInterests(f.Interests),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := id.Validate(); err != nil {
		return types.Identity{}, err
	}
	if err := s.SetIdentity(ctx, id); err != nil {
		return types.Identity{}, err
	}
	cur, _ := s.Identity()
	return cur, nil
}

// ProfileView edits the current identity. Edits go to a draft; Save sends
// the draft upstream and, only once the server accepted it, replaces the
// session identity.
type ProfileView struct {
	session Session
	client  ProfileClient

	mu     sync.Mutex
	draft  types.Identity
	loaded bool
	saving bool
}

// NewProfileView returns a view editing the identity held by s.
func NewProfileView(s Session, c ProfileClient) *ProfileView {
	return &ProfileView{session: s, client: c}
}

// Draft returns the draft, starting it from the session identity if no
// edit has been made yet.
func (v *ProfileView) Draft() (types.Identity, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.ensureDraft(); err != nil {
		return types.Identity{}, err
	}
	return copyIdentity(v.draft), nil
}

// SetName changes the draft name.
func (v *ProfileView) SetName(name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.ensureDraft(); err != nil {
		return err
	}
	if name = strings.TrimSpace(name); name != "" {
		v.draft.Name = name
	}
	return nil
}

// AddInterest appends a trimmed interest unless it is blank or already
// present. It reports whether the draft changed.
func (v *ProfileView) AddInterest(interest string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.ensureDraft(); err != nil {
		return false, err
	}
	before := len(v.draft.Interests)
	v.draft.Interests = types.NormalizeInterests(append(v.draft.Interests, interest))
	return len(v.draft.Interests) != before, nil
}

// RemoveInterest drops an interest. It reports whether the draft changed.
func (v *ProfileView) RemoveInterest(interest string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.ensureDraft(); err != nil {
		return false, err
	}
	interest = strings.TrimSpace(interest)
	kept := make([]string, 0, len(v.draft.Interests))
	for _, s := range v.draft.Interests {
		if s != interest {
			kept = append(kept, s)
		}
	}
	changed := len(kept) != len(v.draft.Interests)
	v.draft.Interests = kept
	return changed, nil
}

// Save sends the draft upstream and then stores it in the session. A save
// is a write: failures are returned as is and the session keeps the
// previous identity.
func (v *ProfileView) Save(ctx context.Context) (types.Identity, error) {
	v.mu.Lock()
	if v.saving {
		v.mu.Unlock()
		return types.Identity{}, ErrInFlight
	}
	if err := v.ensureDraft(); err != nil {
		v.mu.Unlock()
		return types.Identity{}, err
	}
	draft := copyIdentity(v.draft)
	v.saving = true
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.saving = false
		v.mu.Unlock()
	}()

	if err := draft.Validate(); err != nil {
		return types.Identity{}, err
	}
	_, err := v.client.Save(ctx, users.Profile{
		UserID:    draft.ID,
		Name:      draft.Name,
		Role:      draft.Role,
		Interests: draft.Interests,
	})
	if err != nil {
		return types.Identity{}, err
	}
	if err := v.session.SetIdentity(ctx, draft); err != nil {
		return types.Identity{}, err
	}
	saved, _ := v.session.Identity()
	return saved, nil
}

// Remote fetches the server's copy of the current user.
func (v *ProfileView) Remote(ctx context.Context) (types.Identity, error) {
	userID := v.session.UserID()
	if userID == "" {
		return types.Identity{}, ErrNotAuthenticated
	}
	return v.client.Get(ctx, userID)
}

// Logout clears the session and the draft.
func (v *ProfileView) Logout(ctx context.Context) error {
	v.mu.Lock()
	v.draft = types.Identity{}
	v.loaded = false
	v.mu.Unlock()
	return v.session.Clear(ctx)
}

func (v *ProfileView) ensureDraft() error {
	cur, ok := v.session.Identity()
	if !ok {
		v.loaded = false
		return ErrNotAuthenticated
	}
	if !v.loaded || v.draft.ID != cur.ID {
		v.draft = copyIdentity(cur)
		v.loaded = true
	}
	return nil
}

func copyIdentity(id types.Identity) types.Identity {
	id.Interests = append([]string{}, id.Interests...)
	return id
}
