// Package debug stores captured application errors and runs the auto-fix loop over them.
package debug

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/sample"
	"github.com/planetprotrader/backend/internal/state"
	"github.com/planetprotrader/backend/pkg/logger"
)

var (
	// ErrNotFound is returned for an unknown error id
	ErrNotFound = errors.New("error log not found")
	// ErrCannotAutoFix is returned when the error is fixed or out of attempts
	ErrCannotAutoFix = errors.New("error cannot be auto-fixed")
	// ErrInvalidSessionType is returned for an unknown health check type
	ErrInvalidSessionType = errors.New("invalid debug session type")
)

const (
	// FixSuccessRate is the chance one auto-fix attempt succeeds
	FixSuccessRate = 0.7
	maxSessions    = 20
)

var fixMethods = map[contracts.ErrorType]string{
	contracts.ErrorNetwork:        "Retried request with backoff",
	contracts.ErrorAPI:            "Retried request with backoff",
	contracts.ErrorMemory:         "Released cached buffers",
	contracts.ErrorMemoryLeak:     "Released cached buffers",
	contracts.ErrorData:           "Reloaded data from source",
	contracts.ErrorParsing:        "Reloaded data from source",
	contracts.ErrorDatabase:       "Reconnected database pool",
	contracts.ErrorConfiguration:  "Restored default configuration",
	contracts.ErrorAuthentication: "Refreshed session token",
}

// ListFilter narrows List. Nil or empty fields match everything.
type ListFilter struct {
	Severity contracts.DebugSeverity
	Fixed    *bool
}

// Snapshot is what the store publishes
type Snapshot struct {
	Errors   []contracts.ErrorLog     `json:"errors"`
	Sessions []contracts.DebugSession `json:"sessions"`
	Open     int                      `json:"open"`
}

// Store holds error logs and debug sessions, newest first
type Store struct {
	mu       sync.Mutex
	errors   []contracts.ErrorLog
	sessions []contracts.DebugSession
	gen      *sample.Generator

	view   *state.Value[Snapshot]
	logger *logger.Logger
}

// NewStore creates a store seeded with logs
func NewStore(seed []contracts.ErrorLog, gen *sample.Generator, bus state.Bus, log *logger.Logger) *Store {
	s := &Store{
		errors: append([]contracts.ErrorLog(nil), seed...),
		gen:    gen,
		logger: log.WithComponent("debug"),
	}
	s.view = state.NewValue(state.TopicDebug, s.snapshotLocked(), bus, log)
	return s
}

// View exposes the published snapshot
func (s *Store) View() *state.Value[Snapshot] {
	return s.view
}

// Log records an error. An open error with the same domain and code is bumped instead of duplicated.
func (s *Store) Log(e contracts.ErrorLog) contracts.ErrorLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.gen.Now()
	for i := range s.errors {
		existing := &s.errors[i]
		if existing.IsFixed || existing.ErrorDomain != e.ErrorDomain || existing.ErrorCode != e.ErrorCode {
			continue
		}
		existing.OccurrenceCount++
		existing.Timestamp = now
		out := *existing
		s.publishLocked()
		return out
	}

	if e.ID == "" {
		e.ID = s.gen.ID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	if e.Severity == "" {
		e.Severity = contracts.SeverityError
	}
	if e.OccurrenceCount < 1 {
		e.OccurrenceCount = 1
	}
	s.errors = append([]contracts.ErrorLog{e}, s.errors...)
	s.publishLocked()

	s.logger.WithFields(map[string]interface{}{
		"error_id": e.ID,
		"domain":   e.ErrorDomain,
		"code":     e.ErrorCode,
		"severity": e.Severity,
	}).Warn("Error captured")
	return e
}

// List returns the logs matching f
func (s *Store) List(f ListFilter) []contracts.ErrorLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]contracts.ErrorLog, 0, len(s.errors))
	for _, e := range s.errors {
		if f.Severity != "" && e.Severity != f.Severity {
			continue
		}
		if f.Fixed != nil && e.IsFixed != *f.Fixed {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Get returns one log
func (s *Store) Get(id string) (contracts.ErrorLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return contracts.ErrorLog{}, ErrNotFound
	}
	return s.errors[i], nil
}

// AttemptAutoFix spends one attempt on the error. The returned log reports whether it is now fixed.
func (s *Store) AttemptAutoFix(id string) (contracts.ErrorLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return contracts.ErrorLog{}, ErrNotFound
	}
	e, err := s.attemptLocked(i)
	if err != nil {
		return e, err
	}
	s.publishLocked()
	return e, nil
}

func (s *Store) attemptLocked(i int) (contracts.ErrorLog, error) {
	e := &s.errors[i]
	if !e.CanAutoFix() {
		return *e, ErrCannotAutoFix
	}

	e.AutoFixAttempts++
	if s.gen.Chance(FixSuccessRate) {
		now := s.gen.Now()
		e.IsFixed = true
		e.FixAppliedAt = &now
		e.FixMethod = fixMethodFor(e.Type)
	}

	s.logger.WithFields(map[string]interface{}{
		"error_id": e.ID,
		"attempt":  e.AutoFixAttempts,
		"fixed":    e.IsFixed,
	}).Info("Auto-fix attempted")
	return *e, nil
}

// RunHealthCheck runs a debug session over the open errors.
// An emergency fix also spends one auto-fix attempt on every fixable error.
func (s *Store) RunHealthCheck(ctx context.Context, typ contracts.SessionType) (contracts.DebugSession, error) {
	if !typ.IsValid() {
		return contracts.DebugSession{}, ErrInvalidSessionType
	}
	if err := ctx.Err(); err != nil {
		return contracts.DebugSession{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := contracts.DebugSession{
		ID:        s.gen.ID(),
		Type:      typ,
		StartTime: s.gen.Now(),
		Status:    contracts.SessionRunning,
		Findings:  []string{},
	}

	if typ == contracts.SessionEmergencyFix {
		for i := range s.errors {
			if !s.errors[i].CanAutoFix() {
				continue
			}
			if e, err := s.attemptLocked(i); err == nil && e.IsFixed {
				session.ErrorsFixed++
			}
		}
	}

	open := 0
	for _, e := range s.errors {
		if e.IsFixed {
			continue
		}
		open++
		if e.Severity == contracts.SeverityCritical {
			session.Findings = append(session.Findings, fmt.Sprintf("Critical: %s (%s)", e.ErrorMessage, e.Location()))
		}
	}
	session.Findings = append(session.Findings, fmt.Sprintf("%d unfixed errors", open))
	if session.ErrorsFixed > 0 {
		session.Findings = append(session.Findings, fmt.Sprintf("%d errors fixed", session.ErrorsFixed))
	}

	end := s.gen.Now()
	session.EndTime = &end
	session.Status = contracts.SessionCompleted
	if open > 0 {
		session.Status = contracts.SessionCompletedWithIssue
	}

	s.sessions = append([]contracts.DebugSession{session}, s.sessions...)
	if len(s.sessions) > maxSessions {
		s.sessions = s.sessions[:maxSessions]
	}
	s.publishLocked()

	s.logger.WithFields(map[string]interface{}{
		"session": session.Type,
		"status":  session.Status,
		"open":    open,
	}).Info("Health check finished")
	return session, nil
}

// Sessions returns past debug sessions, newest first
func (s *Store) Sessions() []contracts.DebugSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]contracts.DebugSession(nil), s.sessions...)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.errors {
		if s.errors[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) publishLocked() {
	s.view.Set(s.snapshotLocked())
}

func (s *Store) snapshotLocked() Snapshot {
	open := 0
	for _, e := range s.errors {
		if !e.IsFixed {
			open++
		}
	}
	return Snapshot{
		Errors:   append([]contracts.ErrorLog(nil), s.errors...),
		Sessions: append([]contracts.DebugSession(nil), s.sessions...),
		Open:     open,
	}
}

func fixMethodFor(t contracts.ErrorType) string {
	if m, ok := fixMethods[t]; ok {
		return m
	}
	return "Restarted component"
}
