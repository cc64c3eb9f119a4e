package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/aliskhannn/finquest/internal/domain"
	"github.com/aliskhannn/finquest/internal/domain/entities"
)

var errSessionExists = errors.New("session already exists")

// SessionStore keeps quiz sessions as JSON values with a TTL.
// Open sessions live for ttl; completed ones are kept for retention and then expire.
type SessionStore struct {
	rdb       goredis.UniversalClient
	prefix    string
	ttl       time.Duration
	retention time.Duration
}

// NewSessionStore creates a SessionStore. Keys are "<prefix>:session:<id>".
func NewSessionStore(rdb goredis.UniversalClient, prefix string, ttl, retention time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, prefix: prefix, ttl: ttl, retention: retention}
}

func (s *SessionStore) key(id uuid.UUID) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, id)
}

// Create stores a new session. An existing key is never overwritten.
func (s *SessionStore) Create(ctx context.Context, session *entities.QuizSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ok, err := s.rdb.SetNX(ctx, s.key(session.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !ok {
		return fmt.Errorf("create session %s: %w", session.ID, errSessionExists)
	}

	return nil
}

// GetByID loads a session.
func (s *SessionStore) GetByID(ctx context.Context, id uuid.UUID) (*entities.QuizSession, error) {
	data, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return decodeSession(data)
}

// Update replaces the stored session when its version still matches.
func (s *SessionStore) Update(ctx context.Context, session *entities.QuizSession) error {
	key := s.key(session.ID)

	next := *session
	next.Version = session.Version + 1
	data, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	err = s.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				return domain.ErrSessionNotFound
			}
			return err
		}

		stored, err := decodeSession(raw)
		if err != nil {
			return err
		}
		if stored.Version != session.Version {
			return domain.ErrOptimisticLock
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			if session.IsCompleted() {
				pipe.Set(ctx, key, data, s.retention)
			} else {
				pipe.SetArgs(ctx, key, data, goredis.SetArgs{KeepTTL: true})
			}
			return nil
		})
		return err
	}, key)
	if err != nil {
		if errors.Is(err, goredis.TxFailedErr) {
			return domain.ErrOptimisticLock
		}
		if errors.Is(err, domain.ErrOptimisticLock) || errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}
		return fmt.Errorf("update session: %w", err)
	}

	// Increment version locally
	session.Version++

	return nil
}

// DeleteCompletedBefore is a no-op: completed sessions expire through their TTL.
func (s *SessionStore) DeleteCompletedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func decodeSession(data []byte) (*entities.QuizSession, error) {
	var session entities.QuizSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if session.Answers == nil {
		session.Answers = []entities.SubmittedAnswer{}
	}
	return &session, nil
}
