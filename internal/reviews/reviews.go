package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/meister-web/internal/backend"
)

const (
	DefaultTTL     = 6 * time.Hour
	cacheKeyPrefix = "meister:reviews:"
)

type Fetcher interface {
	Reviews(ctx context.Context, lang string) (*backend.Reviews, error)
}

// Service serves reviews per language from Redis, refreshing from the
// backend on a miss. Without Redis, or while Redis is down, every call
// goes to the backend.
type Service struct {
	client   *redis.Client
	fetch    Fetcher
	ttl      time.Duration
	logger   *zap.Logger
	onLookup func(hit bool)
}

type Option func(*Service)

func WithLookupHook(fn func(hit bool)) Option {
	return func(s *Service) { s.onLookup = fn }
}

func NewService(client *redis.Client, fetch Fetcher, ttl time.Duration, logger *zap.Logger, opts ...Option) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{client: client, fetch: fetch, ttl: ttl, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cacheKey(lang string) string {
	return fmt.Sprintf("%s%s", cacheKeyPrefix, lang)
}

func (s *Service) Get(ctx context.Context, lang string) (*backend.Reviews, error) {
	if cached, ok := s.lookup(ctx, lang); ok {
		s.hook(true)
		return cached, nil
	}
	s.hook(false)

	out, err := s.fetch.Reviews(ctx, lang)
	if err != nil {
		return nil, err
	}
	s.store(ctx, lang, out)
	return out, nil
}

// Invalidate drops the cached entry of lang.
func (s *Service) Invalidate(ctx context.Context, lang string) error {
	if s.client == nil {
		return nil
	}
	return s.client.Del(ctx, cacheKey(lang)).Err()
}

func (s *Service) lookup(ctx context.Context, lang string) (*backend.Reviews, bool) {
	if s.client == nil {
		return nil, false
	}
	val, err := s.client.Get(ctx, cacheKey(lang)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		s.logger.Warn("reviews cache read failed", zap.String("lang", lang), zap.Error(err))
		return nil, false
	}
	var out backend.Reviews
	if err := json.Unmarshal(val, &out); err != nil {
		s.logger.Warn("reviews cache entry corrupt", zap.String("lang", lang), zap.Error(err))
		return nil, false
	}
	return &out, true
}

func (s *Service) store(ctx context.Context, lang string, r *backend.Reviews) {
	if s.client == nil {
		return
	}
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, cacheKey(lang), data, s.ttl).Err(); err != nil {
		s.logger.Warn("reviews cache write failed", zap.String("lang", lang), zap.Error(err))
	}
}

func (s *Service) hook(hit bool) {
	if s.onLookup != nil {
		s.onLookup(hit)
	}
}
