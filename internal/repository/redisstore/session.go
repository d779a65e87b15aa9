package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rentflow/internal/domain"
	"rentflow/internal/logger"
	"rentflow/internal/repository"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "rentflow:session:"

type sessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository stores booking sessions as JSON values. Every write
// refreshes the ttl; zero keeps keys until deleted.
func NewSessionRepository(client *redis.Client, ttl time.Duration) repository.SessionRepository {
	return &sessionRepository{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.BookingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode booking session: %w", err)
	}
	logger.DatabaseCall("SETNX", sessionKey(session.ID))
	ok, err := r.client.SetNX(ctx, sessionKey(session.ID), data, r.ttl).Result()
	if err != nil {
		logger.DatabaseResult("SETNX", 0, err)
		return fmt.Errorf("failed to create booking session: %w", err)
	}
	if !ok {
		return fmt.Errorf("booking session %s already exists", session.ID)
	}
	logger.DatabaseResult("SETNX", 1, nil)
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.BookingSession, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking session: %w", err)
	}
	var session domain.BookingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode booking session: %w", err)
	}
	return &session, nil
}

// Save only overwrites an existing key so an expired session is not revived.
func (r *sessionRepository) Save(ctx context.Context, session *domain.BookingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode booking session: %w", err)
	}
	ok, err := r.client.SetXX(ctx, sessionKey(session.ID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to save booking session: %w", err)
	}
	if !ok {
		return repository.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete booking session: %w", err)
	}
	if n == 0 {
		return repository.ErrSessionNotFound
	}
	return nil
}
