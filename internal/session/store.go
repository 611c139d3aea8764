// Package session holds the single auth store shared by every page action.
// SetAuth and ClearAuth are the only ways to change who is logged in.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"klassart-storefront/internal/domain"
	sessionrepo "klassart-storefront/internal/repository/session"
)

// Store keeps the current session and profile in memory, backed by a repository.
type Store struct {
	repo sessionrepo.Repository

	mu      sync.RWMutex
	session domain.Session
	profile *domain.UserProfile
}

// New creates a Store. Call Hydrate to pick up a persisted session.
func New(repo sessionrepo.Repository) *Store {
	return &Store{repo: repo}
}

// Hydrate loads the persisted session, if any.
func (s *Store) Hydrate(ctx context.Context) error {
	stored, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load session: %w", err)
	}
	s.mu.Lock()
	s.session = *stored
	s.mu.Unlock()
	return nil
}

// Current returns the session and whether one is active.
func (s *Store) Current() (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, s.session.Valid()
}

// Authenticated reports whether a session is active.
func (s *Store) Authenticated() bool {
	_, ok := s.Current()
	return ok
}

// Profile returns the profile seen at the last login or authorization.
func (s *Store) Profile() (domain.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return domain.UserProfile{}, false
	}
	return *s.profile, true
}

// SetAuth records a logged in user and persists its session.
func (s *Store) SetAuth(ctx context.Context, profile domain.UserProfile) error {
	next := profile.Session()
	if !next.Valid() {
		s.mu.RLock()
		current := s.session
		s.mu.RUnlock()
		// Profile updates come back without a session id; keep the one we have.
		if next.UserID == "" || next.UserID != current.UserID || !current.Valid() {
			return fmt.Errorf("%w: profile carries no session", domain.ErrValidation)
		}
		next = current
		profile.SessionID = current.SessionID
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.mu.Lock()
	s.session = next
	s.profile = &profile
	s.mu.Unlock()
	return nil
}

// ClearAuth forgets the user in memory and in the repository.
func (s *Store) ClearAuth(ctx context.Context) error {
	s.mu.Lock()
	s.session = domain.Session{}
	s.profile = nil
	s.mu.Unlock()
	if err := s.repo.Delete(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
