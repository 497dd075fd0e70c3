// Package vps tracks the remote machines that host trading accounts.
package vps

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/state"
	"github.com/planetprotrader/backend/pkg/logger"
)

var (
	// ErrNotFound is returned for an unknown VPS id
	ErrNotFound = errors.New("vps not found")
	// ErrDuplicateID is returned when adding an id twice
	ErrDuplicateID = errors.New("vps id already registered")
)

// Registry owns the VPS fleet
type Registry struct {
	mu           sync.Mutex
	fleet        []contracts.VPSInstance
	connectDelay time.Duration
	now          func() time.Time

	view   *state.Value[[]contracts.VPSInstance]
	logger *logger.Logger
}

// NewRegistry creates a registry from an initial fleet
func NewRegistry(fleet []contracts.VPSInstance, connectDelay time.Duration, bus state.Bus, log *logger.Logger) *Registry {
	r := &Registry{
		fleet:        cloneFleet(fleet),
		connectDelay: connectDelay,
		now:          time.Now,
		logger:       log.WithComponent("vps"),
	}
	r.view = state.NewValue(state.TopicVPS, cloneFleet(fleet), bus, log)
	return r
}

// WithClock overrides the time source
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// View exposes the published fleet
func (r *Registry) View() *state.Value[[]contracts.VPSInstance] {
	return r.view
}

// Connect marks the VPS Connecting, waits the simulated handshake, then marks it Connected
func (r *Registry) Connect(ctx context.Context, id string) (contracts.VPSInstance, error) {
	if _, err := r.mutate(id, func(v *contracts.VPSInstance) {
		v.Status = contracts.VPSConnecting
		v.IsConnected = false
	}); err != nil {
		return contracts.VPSInstance{}, err
	}

	select {
	case <-ctx.Done():
		v, _ := r.mutate(id, func(v *contracts.VPSInstance) {
			v.Status = contracts.VPSDisconnected
		})
		return v, ctx.Err()
	case <-time.After(r.connectDelay):
	}

	v, err := r.mutate(id, func(v *contracts.VPSInstance) {
		now := r.now()
		v.Status = contracts.VPSConnected
		v.IsConnected = true
		v.LastPing = &now
	})
	if err == nil {
		r.logger.WithFields(map[string]interface{}{
			"vps_id": v.ID,
			"host":   v.Host,
		}).Info("VPS connected")
	}
	return v, err
}

// Disconnect drops the link to a VPS
func (r *Registry) Disconnect(id string) (contracts.VPSInstance, error) {
	return r.mutate(id, func(v *contracts.VPSInstance) {
		v.Status = contracts.VPSDisconnected
		v.IsConnected = false
	})
}

// Deploy places one more account on the VPS. It reports false when the VPS is full.
func (r *Registry) Deploy(id string) (bool, error) {
	deployed := false
	v, err := r.mutate(id, func(v *contracts.VPSInstance) {
		if !v.HasCapacity() {
			return
		}
		v.AccountsRunning++
		deployed = true
	})
	if err != nil {
		return false, err
	}

	log := r.logger.WithFields(map[string]interface{}{
		"vps_id":   id,
		"accounts": fmt.Sprintf("%d/%d", v.AccountsRunning, v.MaxAccounts),
	})
	if deployed {
		log.Info("Account deployed")
	} else {
		log.Warn("Deploy rejected, VPS at capacity")
	}
	return deployed, nil
}

// Undeploy removes one account, never going below zero
func (r *Registry) Undeploy(id string) (contracts.VPSInstance, error) {
	return r.mutate(id, func(v *contracts.VPSInstance) {
		if v.AccountsRunning > 0 {
			v.AccountsRunning--
		}
	})
}

// Heartbeat refreshes lastPing on every connected VPS and returns how many were pinged
func (r *Registry) Heartbeat() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	n := 0
	for i := range r.fleet {
		if r.fleet[i].Status != contracts.VPSConnected {
			continue
		}
		ping := now
		r.fleet[i].LastPing = &ping
		n++
	}
	if n > 0 {
		r.view.Set(cloneFleet(r.fleet))
	}
	return n
}

// FirstAvailable returns the first VPS with a free account slot
func (r *Registry) FirstAvailable() (contracts.VPSInstance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range r.fleet {
		if v.HasCapacity() {
			return cloneInstance(v), true
		}
	}
	return contracts.VPSInstance{}, false
}

// Add registers a VPS, defaulting port and capacity
func (r *Registry) Add(v contracts.VPSInstance) (contracts.VPSInstance, error) {
	if v.ID == "" || v.Host == "" {
		return contracts.VPSInstance{}, errors.New("vps id and host are required")
	}
	if v.Port == 0 {
		v.Port = contracts.DefaultSSHPort
	}
	if v.MaxAccounts == 0 {
		v.MaxAccounts = contracts.DefaultMaxAccounts
	}
	if v.Status == "" {
		v.Status = contracts.VPSDisconnected
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(v.ID) >= 0 {
		return contracts.VPSInstance{}, ErrDuplicateID
	}
	r.fleet = append(r.fleet, v)
	r.view.Set(cloneFleet(r.fleet))
	return cloneInstance(v), nil
}

// Get returns one VPS
func (r *Registry) Get(id string) (contracts.VPSInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return contracts.VPSInstance{}, ErrNotFound
	}
	return cloneInstance(r.fleet[i]), nil
}

// List returns the fleet
func (r *Registry) List() []contracts.VPSInstance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneFleet(r.fleet)
}

func (r *Registry) mutate(id string, fn func(*contracts.VPSInstance)) (contracts.VPSInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return contracts.VPSInstance{}, ErrNotFound
	}
	fn(&r.fleet[i])
	r.view.Set(cloneFleet(r.fleet))
	return cloneInstance(r.fleet[i]), nil
}

func (r *Registry) indexLocked(id string) int {
	for i := range r.fleet {
		if r.fleet[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneInstance(v contracts.VPSInstance) contracts.VPSInstance {
	if v.LastPing != nil {
		ping := *v.LastPing
		v.LastPing = &ping
	}
	return v
}

func cloneFleet(in []contracts.VPSInstance) []contracts.VPSInstance {
	out := make([]contracts.VPSInstance, len(in))
	for i, v := range in {
		out[i] = cloneInstance(v)
	}
	return out
}
