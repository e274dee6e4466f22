package memory

import (
	"context"
	"testing"
	"time"

	"crimson-crm-be/pkg/biostate"
	"crimson-crm-be/pkg/kvstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mountTestProfile(t *testing.T) *biostate.Profile {
	t.Helper()
	p, err := biostate.MountProfile(context.Background(), biostate.Donor{ID: "d-1", Name: "Jane"}, kvstore.NewMemoryStore(), nil, nil)
	require.NoError(t, err)
	return p
}

func TestSessionRepository(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	id := uuid.New()
	p := mountTestProfile(t)

	_, ok := repo.Get(id)
	assert.False(t, ok)

	repo.Save(id, p)
	got, ok := repo.Get(id)
	require.True(t, ok)
	assert.Same(t, p, got)
	assert.Equal(t, 1, repo.Count())

	assert.True(t, repo.Delete(id))
	assert.False(t, repo.Delete(id))
	_, ok = repo.Get(id)
	assert.False(t, ok)
}

func TestSessionRepositoryExpires(t *testing.T) {
	repo := NewSessionRepository(50 * time.Millisecond)
	id := uuid.New()
	repo.Save(id, mountTestProfile(t))

	time.Sleep(120 * time.Millisecond)
	_, ok := repo.Get(id)
	assert.False(t, ok)
}
