// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/univ-insight/pkg/types"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(types.SessionConfig{Path: path}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleIdentity() types.Identity {
	return types.Identity{
		ID:              "kakao-42",
		Name:            "Jiwoo",
		Role:            types.RoleStudent,
		Interests:       []string{"AI", "Biology", "ai"},
		ExternalPageRef: "notion-abc",
		CreatedAt:       time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestSetIdentityThenRehydrateRoundTrips(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	identities := []types.Identity{
		sampleIdentity(),
		{ID: "p1", Name: "Parent", Role: types.RoleParent, Interests: []string{}, CreatedAt: time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)},
	}

	for _, want := range identities {
		first := openStore(t, path)
		require.NoError(t, first.SetIdentity(ctx, want))
		require.NoError(t, first.Close())

		// Simulates a restart: a fresh store reading the same mirror.
		second := openStore(t, path)
		require.True(t, second.Rehydrate(ctx))

		got, ok := second.Identity()
		require.True(t, ok)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Role, got.Role)
		assert.Equal(t, types.NormalizeInterests(want.Interests), got.Interests)
		assert.Equal(t, want.ExternalPageRef, got.ExternalPageRef)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
		assert.True(t, second.IsAuthenticated())
		require.NoError(t, second.Close())
	}
}

func TestSetIdentityNormalizesInterests(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "session.db"))
	id := sampleIdentity()
	id.Interests = []string{" AI ", "AI", "", "Biology", "  "}

	require.NoError(t, s.SetIdentity(context.Background(), id))

	got, _ := s.Identity()
	assert.Equal(t, []string{"AI", "Biology"}, got.Interests)
}

func TestSetIdentityRejectsInvalid(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "session.db"))
	id := sampleIdentity()
	id.Role = "admin"

	assert.Error(t, s.SetIdentity(context.Background(), id))
	assert.False(t, s.IsAuthenticated())
}

func TestSetIdentityStampsCreatedAt(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "session.db"))
	id := sampleIdentity()
	id.CreatedAt = time.Time{}

	require.NoError(t, s.SetIdentity(context.Background(), id))
	got, _ := s.Identity()
	assert.False(t, got.CreatedAt.IsZero())
}

func TestClearThenRehydrateIsUnauthenticated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	s := openStore(t, path)
	require.NoError(t, s.SetIdentity(ctx, sampleIdentity()))
	require.NoError(t, s.Clear(ctx))
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, "", s.UserID())
	require.NoError(t, s.Close())

	restarted := openStore(t, path)
	assert.False(t, restarted.Rehydrate(ctx))
	assert.False(t, restarted.IsAuthenticated())
	_, ok := restarted.Identity()
	assert.False(t, ok)
}

func TestRehydrateWithoutMirror(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "session.db"))
	assert.False(t, s.Rehydrate(context.Background()))
	assert.False(t, s.IsAuthenticated())
}

func TestRehydrateMalformedMirrorDegradesToLoggedOut(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"corrupted json", `{"id": "u1", "name": `},
		{"not json", `\x00\x01garbage`},
		{"missing role", `{"id":"u1","name":"A","interests":[],"created_at":"2026-01-01T00:00:00Z"}`},
		{"empty id", `{"id":"","name":"A","role":"student","created_at":"2026-01-01T00:00:00Z"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := openStore(t, filepath.Join(t.TempDir(), "session.db"))
			_, err := s.db.Exec(`INSERT INTO session_mirror (name, payload, updated_at) VALUES (?, ?, ?)`,
				mirrorKey, tt.payload, "2026-01-01T00:00:00Z")
			require.NoError(t, err)

			assert.NotPanics(t, func() { s.Rehydrate(ctx) })
			assert.False(t, s.IsAuthenticated())
		})
	}
}

func TestRehydrateReplacesStaleMemory(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, s.SetIdentity(ctx, sampleIdentity()))

	_, err := s.db.Exec(`DELETE FROM session_mirror`)
	require.NoError(t, err)

	assert.False(t, s.Rehydrate(ctx))
	assert.False(t, s.IsAuthenticated())
}

func TestClearReportsRetainedMirror(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, s.SetIdentity(ctx, sampleIdentity()))

	_, err := s.db.Exec(`DROP TABLE session_mirror`)
	require.NoError(t, err)

	err = s.Clear(ctx)
	assert.ErrorIs(t, err, ErrMirrorRetained)
	assert.ErrorIs(t, s.Err(), ErrMirrorRetained)
	assert.False(t, s.IsAuthenticated())
}

func TestSetIdentityClearsLastError(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "session.db"))

	_, err := s.db.Exec(`DROP TABLE session_mirror`)
	require.NoError(t, err)
	assert.Error(t, s.SetIdentity(ctx, sampleIdentity()))
	assert.Error(t, s.Err())
	assert.False(t, s.IsAuthenticated(), "memory must not change when the mirror write fails")

	require.NoError(t, s.createSchema())
	require.NoError(t, s.SetIdentity(ctx, sampleIdentity()))
	assert.NoError(t, s.Err())
	assert.True(t, s.IsAuthenticated())
}

func TestIdentityReturnsCopy(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, s.SetIdentity(context.Background(), sampleIdentity()))

	got, _ := s.Identity()
	got.Interests[0] = "mutated"

	again, _ := s.Identity()
	assert.Equal(t, "AI", again.Interests[0])
}
