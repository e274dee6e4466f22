package memory

import (
	"time"

	"crimson-crm-be/pkg/biostate"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps mounted profile views in memory. A session expires
// after ttl without access.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	cleanup := ttl / 6
	if cleanup < time.Second {
		cleanup = time.Second
	}
	return &SessionRepository{
		cache: cache.New(ttl, cleanup),
	}
}

func (r *SessionRepository) Save(id uuid.UUID, profile *biostate.Profile) {
	r.cache.Set(id.String(), profile, cache.DefaultExpiration)
}

// Get returns the session and extends its lifetime.
func (r *SessionRepository) Get(id uuid.UUID) (*biostate.Profile, bool) {
	x, found := r.cache.Get(id.String())
	if !found {
		return nil, false
	}
	profile := x.(*biostate.Profile)
	r.cache.Set(id.String(), profile, cache.DefaultExpiration)
	return profile, true
}

// Delete reports whether the session existed.
func (r *SessionRepository) Delete(id uuid.UUID) bool {
	_, found := r.cache.Get(id.String())
	r.cache.Delete(id.String())
	return found
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
