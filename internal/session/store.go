// Package session implements the server-side session records backing
// authentication. A session is a single record keyed by a random
// identifier, holding two typed views over one payload: a staging map
// of pending registrations (pre-auth) and an identity claim
// (post-auth). Only the identifier ever reaches the client, wrapped in
// a signed cookie; the payload itself stays on the server.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/user-auth-service/internal/model"
)

// ErrNotFound is returned when a session id has no live record, either
// because it never existed or because the record expired.
var ErrNotFound = errors.New("session not found")

// Identity is the minimal claim bound to a session after login.
type Identity struct {
	UserID uint64 `json:"id"`
	Role   string `json:"role"`
}

// Session is one server-side record. Pending holds staged
// registrations keyed by email and is only populated before login;
// Identity is only set after login. Expiry is a rolling window chosen
// at login time (24h default, 7d with remember-me).
type Session struct {
	ID        string                               `json:"-"`
	Identity  *Identity                            `json:"identity,omitempty"`
	Pending   map[string]model.PendingRegistration `json:"pending,omitempty"`
	ExpiresAt time.Time                            `json:"expires_at"`
}

// New creates an unsaved session with a fresh random id and the given
// lifetime.
func New(ttl time.Duration) *Session {
	return &Session{
		ID:        uuid.NewString(),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
}

// Stage records registration data under its email, overwriting any
// prior entry for that address in this session.
func (s *Session) Stage(email string, p model.PendingRegistration) {
	if s.Pending == nil {
		s.Pending = make(map[string]model.PendingRegistration, 1)
	}
	s.Pending[email] = p
}

// TakePending removes and returns the staged registration for email.
// The second return value is false when nothing was staged; callers
// treat that as a terminal error for the verification attempt.
func (s *Session) TakePending(email string) (model.PendingRegistration, bool) {
	p, ok := s.Pending[email]
	if ok {
		delete(s.Pending, email)
	}
	return p, ok
}

// Store persists session records. Implementations must treat expired
// records as absent on Get, and Delete must be idempotent.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// redisKey namespaces session records in Redis.
func redisKey(id string) string { return "session:" + id }

// RedisStore keeps sessions in Redis: one key per session with a JSON
// payload blob, letting Redis enforce expiry through the key TTL.
type RedisStore struct{ rdb *redis.Client }

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := s.rdb.Get(ctx, redisKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sess := &Session{}
	if err := json.Unmarshal(raw, sess); err != nil {
		return nil, err
	}
	sess.ID = id
	// The TTL should have evicted it, but trust the timestamp too.
	if time.Now().UTC().After(sess.ExpiresAt) {
		_ = s.rdb.Del(ctx, redisKey(id)).Err()
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, sess.ID)
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, redisKey(sess.ID), raw, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, redisKey(id)).Err()
}

// MemoryStore is a process-local Store. It backs tests and lets the
// server degrade to single-instance sessions when Redis is not
// reachable at startup.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().UTC().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	return clone(sess), nil
}

func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = clone(sess)
	return nil
}

// clone copies a session so callers and the store never share maps.
func clone(sess *Session) *Session {
	cp := *sess
	if sess.Pending != nil {
		cp.Pending = make(map[string]model.PendingRegistration, len(sess.Pending))
		for k, v := range sess.Pending {
			cp.Pending[k] = v
		}
	}
	if sess.Identity != nil {
		claim := *sess.Identity
		cp.Identity = &claim
	}
	return &cp
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
