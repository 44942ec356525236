package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate())
	return s
}

func TestUpsertAndList(t *testing.T) {
	s := newTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.Upsert(&Deployment{
		Env: "prod", Org: "acme", App: "permits",
		Version: "1.2.0", CommitSHA: "abc123",
		Status: StatusSuccess, FetchedAt: now,
	}))
	require.NoError(t, s.Upsert(&Deployment{
		Env: "dev", Org: "acme", App: "permits",
		Status: StatusSuccess, FetchedAt: now,
	}))

	deps, err := s.Deployments(true)
	require.NoError(t, err)
	require.Len(t, deps, 2)

	// Ordered by env, org, app.
	assert.Equal(t, "dev-acme-permits", deps[0].Key())
	assert.Equal(t, "prod-acme-permits", deps[1].Key())
	assert.Equal(t, "1.2.0", deps[1].Version)
	assert.Equal(t, "abc123", deps[1].CommitSHA)
}

func TestUpsertReplaces(t *testing.T) {
	s := newTestStore(t)

	d := Deployment{Env: "prod", Org: "acme", App: "permits", Version: "1.0.0", Status: StatusSuccess, FetchedAt: time.Now().UTC()}
	require.NoError(t, s.Upsert(&d))
	d.Version = "1.1.0"
	require.NoError(t, s.Upsert(&d))

	deps, err := s.Deployments(true)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "1.1.0", deps[0].Version)
}

func TestFailedExcludedFromSucceeded(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Upsert(&Deployment{Env: "prod", Org: "acme", App: "ok", Status: StatusSuccess, FetchedAt: time.Now().UTC()}))
	require.NoError(t, s.Upsert(&Deployment{Env: "prod", Org: "acme", App: "broken", Status: StatusFailed, FetchedAt: time.Now().UTC()}))

	ok, err := s.Deployments(true)
	require.NoError(t, err)
	require.Len(t, ok, 1)
	assert.Equal(t, "ok", ok[0].App)

	all, err := s.Deployments(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSetStatus(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Upsert(&Deployment{Env: "prod", Org: "acme", App: "permits", Status: StatusSuccess, FetchedAt: time.Now().UTC()}))
	require.NoError(t, s.SetStatus("prod", "acme", "permits", StatusFailed))

	deps, err := s.Deployments(false)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, StatusFailed, deps[0].Status)
}
