package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"citymap-server/models"
	"citymap-server/utils/logger"
	"citymap-server/utils/metrics"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is the interactive state of one map view: which layers are shown
// and which feature, if any, is under the pointer.
type Session struct {
	ID         string             `json:"id"`
	Visibility Visibility         `json:"visibility"`
	Active     geojson.Properties `json:"active"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         id,
		Visibility: NewVisibility(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Hover replaces the active projection with the resolution of candidates.
func (s *Session) Hover(candidates []*geojson.Feature) geojson.Properties {
	s.Active = ResolveHover(candidates)
	return s.ActiveProjection()
}

// Dismiss clears the active projection regardless of hover state.
func (s *Session) Dismiss() {
	s.Active = nil
}

// ActiveProjection returns a copy of the active projection, or nil.
func (s *Session) ActiveProjection() geojson.Properties {
	if s.Active == nil {
		return nil
	}
	return s.Active.Clone()
}

type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// RedisSessionStore keeps sessions as JSON strings with a sliding TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	if err := r.client.Set(ctx, sessionKey(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}

// MemorySessionStore is used when Redis is not configured. Sessions are
// stored encoded so callers never share state with the store.
type MemorySessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (m *MemorySessionStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if m.ttl > 0 && m.now().After(e.expires) {
		delete(m.entries, id)
		return nil, ErrSessionNotFound
	}
	var s Session
	if err := json.Unmarshal(e.data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

func (m *MemorySessionStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[s.ID] = memoryEntry{data: data, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemorySessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// SessionService applies map events to stored sessions. Each event is a
// load, a synchronous state change and a save.
type SessionService struct {
	store SessionStore
}

func NewSessionService(store SessionStore) *SessionService {
	return &SessionService{store: store}
}

func (s *SessionService) Create(ctx context.Context) (*Session, error) {
	session := NewSession(uuid.New().String())
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	metrics.SessionsCreatedTotal.Inc()
	logger.L().Debug("session_created", "session", session.ID)
	return session, nil
}

func (s *SessionService) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

func (s *SessionService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Toggle flips one layer's visibility for the session.
func (s *SessionService) Toggle(ctx context.Context, id string, c models.Category) (*Session, error) {
	return s.update(ctx, id, func(session *Session) {
		visible := session.Visibility.Toggle(c)
		metrics.VisibilityTogglesTotal.WithLabelValues(string(c)).Inc()
		logger.L().Debug("layer_toggled", "session", id, "category", c, "visible", visible)
	})
}

// Hover resolves the candidates reported under the pointer.
func (s *SessionService) Hover(ctx context.Context, id string, candidates []*geojson.Feature) (*Session, error) {
	return s.update(ctx, id, func(session *Session) {
		if session.Hover(candidates) == nil {
			metrics.HoverEventsTotal.WithLabelValues("miss").Inc()
			return
		}
		metrics.HoverEventsTotal.WithLabelValues("hit").Inc()
	})
}

// Dismiss clears the session's active feature.
func (s *SessionService) Dismiss(ctx context.Context, id string) (*Session, error) {
	return s.update(ctx, id, func(session *Session) {
		session.Dismiss()
	})
}

func (s *SessionService) update(ctx context.Context, id string, apply func(*Session)) (*Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(session)
	session.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
