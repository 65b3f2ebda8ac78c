package settings

import (
	"context"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civic-stack/complaint-service/internal/domain"
)

// Keys recognized by the auto-assign settings store. The values are
// externally managed; this service only reads and exposes them.
const (
	KeyAssignmentMethod  = "assignment_method"
	KeyAutoAssignEnabled = "auto_assign_enabled"

	keyPrefix = "settings:"
)

// Defaults apply when a key is unset or Redis is unreachable.
type Defaults struct {
	AssignmentMethod  domain.AssignmentMethod
	AutoAssignEnabled bool
}

// Store reads auto-assign settings from Redis with env-derived fallbacks.
type Store struct {
	client   *redis.Client
	defaults Defaults
	logger   *zap.Logger
}

// NewStore builds a settings store. A nil client degrades to defaults only.
func NewStore(client *redis.Client, defaults Defaults, logger *zap.Logger) *Store {
	return &Store{client: client, defaults: defaults, logger: logger}
}

// AssignmentMethod returns the configured selection policy.
func (s *Store) AssignmentMethod(ctx context.Context) domain.AssignmentMethod {
	val, ok := s.get(ctx, KeyAssignmentMethod)
	if !ok {
		return s.defaults.AssignmentMethod
	}
	method := domain.AssignmentMethod(strings.ToLower(strings.TrimSpace(val)))
	if !domain.ValidAssignmentMethod(method) {
		s.logger.Warn("unknown assignment method in settings, using default",
			zap.String("value", val))
		return s.defaults.AssignmentMethod
	}
	return method
}

// AutoAssignEnabled reports whether automatic assignment is switched on.
func (s *Store) AutoAssignEnabled(ctx context.Context) bool {
	val, ok := s.get(ctx, KeyAutoAssignEnabled)
	if !ok {
		return s.defaults.AutoAssignEnabled
	}
	enabled, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		s.logger.Warn("invalid auto_assign_enabled in settings, using default",
			zap.String("value", val))
		return s.defaults.AutoAssignEnabled
	}
	return enabled
}

// Set writes a setting value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if s.client == nil {
		return redis.ErrClosed
	}
	return s.client.Set(ctx, keyPrefix+key, value, 0).Err()
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	if s.client == nil {
		return "", false
	}
	val, err := s.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("settings read failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return val, true
}
