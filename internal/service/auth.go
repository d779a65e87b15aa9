package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"rentflow/internal/domain"
	"rentflow/internal/logger"
	"rentflow/internal/repository"
	"rentflow/internal/security"
)

type tokenAuthSession struct {
	mu        sync.Mutex
	token     string
	profile   *domain.UserProfile
	inspector security.TokenInspector
	profiles  repository.ProfileRepository
}

// NewAuthSession wraps the bearer token the browser holds for the
// marketplace.
func NewAuthSession(token string, inspector security.TokenInspector, profiles repository.ProfileRepository) AuthSession {
	return &tokenAuthSession{
		token:     token,
		inspector: inspector,
		profiles:  profiles,
	}
}

func (a *tokenAuthSession) GetToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

func (a *tokenAuthSession) Profile() *domain.UserProfile {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.profile
}

func (a *tokenAuthSession) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = ""
	a.profile = nil
}

// IsValid never trusts a cached answer. Tokens that are visibly expired are
// dropped locally, everything else goes to GET /user/profile.
func (a *tokenAuthSession) IsValid(ctx context.Context) (bool, error) {
	token := a.GetToken()
	if token == "" {
		return false, nil
	}

	if a.inspector != nil {
		if _, err := a.inspector.Inspect(token); err != nil && !errors.Is(err, security.ErrOpaqueToken) {
			logger.Debug("Dropping unusable token", "reason", err)
			a.Clear()
			return false, nil
		}
	}

	profile, err := a.profiles.GetProfile(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrUnauthorized) {
			a.Clear()
			return false, nil
		}
		return false, fmt.Errorf("failed to verify sign-in: %w", err)
	}

	a.mu.Lock()
	a.profile = profile
	a.mu.Unlock()
	return true, nil
}
