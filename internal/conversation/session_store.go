package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// SessionStore keeps per-user conversation state in Redis: the ordered turn
// log, the pending-appointment fields, and the nearby-search cache. Sessions
// evict by TTL instead of a request-start sweep; Touch resets the clock, so a
// request can never evict its own session mid-processing. Cache entries carry
// a shorter TTL than the session, which keeps them from outliving it.
type SessionStore struct {
	redis      *redis.Client
	tracer     trace.Tracer
	sessionTTL time.Duration
	cacheTTL   time.Duration
}

// NewSessionStore creates a session store. cacheTTL must not exceed
// sessionTTL; config validation enforces that before wiring.
func NewSessionStore(rdb *redis.Client, sessionTTL, cacheTTL time.Duration, tracer trace.Tracer) *SessionStore {
	if rdb == nil {
		panic("conversation: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("sahayak.internal.conversation.session")
	}
	return &SessionStore{
		redis:      rdb,
		tracer:     tracer,
		sessionTTL: sessionTTL,
		cacheTTL:   cacheTTL,
	}
}

func historyKey(userID string) string {
	return fmt.Sprintf("conversation:%s", userID)
}

func pendingKey(userID string) string {
	return fmt.Sprintf("appointment:%s", userID)
}

func searchCacheKey(userID, key string) string {
	return fmt.Sprintf("search:%s:%s", userID, key)
}

// SearchKey builds the cache key for a nearby search: normalized
// person-name-or-absent, normalized role-tag-or-absent, and coordinates. At
// most one of name/tag is populated per search; the orchestrator enforces that.
func SearchKey(userName, tagName string, lat, lon float64) string {
	return fmt.Sprintf("%s|%s|%.6f|%.6f",
		strings.ToLower(strings.TrimSpace(userName)),
		NormalizeTag(tagName),
		lat, lon,
	)
}

// Touch refreshes the idle clock for a user's session. Called exactly once at
// the start of each processed request, before any session read.
func (s *SessionStore) Touch(ctx context.Context, userID string) {
	ctx, span := s.tracer.Start(ctx, "conversation.touch_session")
	defer span.End()

	pipe := s.redis.Pipeline()
	pipe.Expire(ctx, historyKey(userID), s.sessionTTL)
	pipe.Expire(ctx, pendingKey(userID), s.sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
	}
}

// History returns the user's ordered turn log, oldest first. An absent or
// expired session yields an empty history, not an error.
func (s *SessionStore) History(ctx context.Context, userID string) ([]Turn, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_history")
	defer span.End()

	data, err := s.redis.Get(ctx, historyKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load history: %w", err)
	}

	var history []Turn
	if err := json.Unmarshal(data, &history); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode history: %w", err)
	}
	return history, nil
}

// SaveHistory persists the full turn log and resets the session TTL.
func (s *SessionStore) SaveHistory(ctx context.Context, userID string, history []Turn) error {
	ctx, span := s.tracer.Start(ctx, "conversation.save_history")
	defer span.End()

	data, err := json.Marshal(history)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal history: %w", err)
	}
	if err := s.redis.Set(ctx, historyKey(userID), data, s.sessionTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist history: %w", err)
	}
	return nil
}

// PendingAppointment returns the accumulated appointment fields for a user,
// zero-valued when none are stored.
func (s *SessionStore) PendingAppointment(ctx context.Context, userID string) (PendingAppointment, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_pending_appointment")
	defer span.End()

	data, err := s.redis.Get(ctx, pendingKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return PendingAppointment{}, nil
		}
		span.RecordError(err)
		return PendingAppointment{}, fmt.Errorf("conversation: failed to load pending appointment: %w", err)
	}

	var pending PendingAppointment
	if err := json.Unmarshal(data, &pending); err != nil {
		span.RecordError(err)
		return PendingAppointment{}, fmt.Errorf("conversation: failed to decode pending appointment: %w", err)
	}
	return pending, nil
}

// SavePendingAppointment persists the appointment fields with the session TTL.
func (s *SessionStore) SavePendingAppointment(ctx context.Context, userID string, pending PendingAppointment) error {
	ctx, span := s.tracer.Start(ctx, "conversation.save_pending_appointment")
	defer span.End()

	data, err := json.Marshal(pending)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal pending appointment: %w", err)
	}
	if err := s.redis.Set(ctx, pendingKey(userID), data, s.sessionTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist pending appointment: %w", err)
	}
	return nil
}

// ClearPendingAppointment drops the appointment fields after a successful
// appointment creation.
func (s *SessionStore) ClearPendingAppointment(ctx context.Context, userID string) error {
	ctx, span := s.tracer.Start(ctx, "conversation.clear_pending_appointment")
	defer span.End()

	if err := s.redis.Del(ctx, pendingKey(userID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to clear pending appointment: %w", err)
	}
	return nil
}

// CachedSearch returns a previously stored nearby-search result, or ok=false
// on a miss. Expiry is handled by Redis; a stale entry is simply absent.
func (s *SessionStore) CachedSearch(ctx context.Context, userID, key string) (json.RawMessage, bool, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.search_cache_get")
	defer span.End()

	data, err := s.redis.Get(ctx, searchCacheKey(userID, key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		span.RecordError(err)
		return nil, false, fmt.Errorf("conversation: failed to read search cache: %w", err)
	}
	return data, true, nil
}

// CacheSearch stores a nearby-search result under its parameter key with the
// cache TTL.
func (s *SessionStore) CacheSearch(ctx context.Context, userID, key string, result json.RawMessage) error {
	ctx, span := s.tracer.Start(ctx, "conversation.search_cache_put")
	defer span.End()

	if err := s.redis.Set(ctx, searchCacheKey(userID, key), []byte(result), s.cacheTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to write search cache: %w", err)
	}
	return nil
}
