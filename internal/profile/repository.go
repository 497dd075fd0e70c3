// Package profile persists the per-user profile document.
package profile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/planetprotrader/backend/internal/contracts"
)

// ErrNotFound is returned when no profile exists for a uid
var ErrNotFound = errors.New("profile not found")

// Repository stores one profile document per user. Writes are last-write-wins.
type Repository interface {
	Create(ctx context.Context, p contracts.UserProfile) error
	TouchLogin(ctx context.Context, uid string, at time.Time) error
	SetOnline(ctx context.Context, uid string, online bool) error
	Get(ctx context.Context, uid string) (contracts.UserProfile, error)
}

// NewProfile builds the default document written at sign-up
func NewProfile(uid, username, email string, now time.Time) contracts.UserProfile {
	return contracts.NewUserProfile(uid, username, email, now)
}

// MemoryRepository keeps profiles in process
type MemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]contracts.UserProfile
	failWith error
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{profiles: make(map[string]contracts.UserProfile)}
}

// FailWith makes every write return err until called with nil
func (r *MemoryRepository) FailWith(err error) {
	r.mu.Lock()
	r.failWith = err
	r.mu.Unlock()
}

func (r *MemoryRepository) Create(_ context.Context, p contracts.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	p.PreferredTimeframes = append([]string(nil), p.PreferredTimeframes...)
	r.profiles[p.UID] = p
	return nil
}

func (r *MemoryRepository) TouchLogin(_ context.Context, uid string, at time.Time) error {
	return r.update(uid, func(p *contracts.UserProfile) { p.LastLoginAt = at })
}

func (r *MemoryRepository) SetOnline(_ context.Context, uid string, online bool) error {
	return r.update(uid, func(p *contracts.UserProfile) { p.IsOnline = online })
}

func (r *MemoryRepository) Get(_ context.Context, uid string) (contracts.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[uid]
	if !ok {
		return contracts.UserProfile{}, ErrNotFound
	}
	p.PreferredTimeframes = append([]string(nil), p.PreferredTimeframes...)
	return p, nil
}

func (r *MemoryRepository) update(uid string, fn func(*contracts.UserProfile)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}

	p, ok := r.profiles[uid]
	if !ok {
		return ErrNotFound
	}
	fn(&p)
	r.profiles[uid] = p
	return nil
}
