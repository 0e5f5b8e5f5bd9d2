package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mydailymath-pipeline/internal/config"
	"mydailymath-pipeline/internal/models"
	"mydailymath-pipeline/internal/pkg/logger"
)

// SessionService keeps the per-session exclusion set in Redis for callers
// that supply a session identifier. The set only grows while the session
// lives; storage is a plain Redis set, so repeated adds are idempotent and
// growth stays monotonic. Callers that track their own state never touch it.
type SessionService struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewSessionService(config config.RedisConfig, log *logger.Logger) (*SessionService, error) {
	options, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(options)

	service := &SessionService{
		client: client,
		ttl:    config.SessionTTL,
		logger: log,
	}

	if err := service.testConnection(); err != nil {
		return nil, fmt.Errorf("connection to Redis failed: %w", err)
	}

	log.Info("Session Service Initialized Successfully",
		"session_ttl", config.SessionTTL)

	return service, nil
}

func (service *SessionService) testConnection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return service.client.Ping(ctx).Err()
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s:shown_urls", sessionID)
}

// ShownURLs returns every url already recorded for the session.
func (service *SessionService) ShownURLs(ctx context.Context, sessionID string) ([]string, error) {
	startTime := time.Now()

	urls, err := service.client.SMembers(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		service.logger.LogService("redis", "shown_urls", time.Since(startTime), map[string]interface{}{
			"session_id": sessionID,
		}, err)
		return nil, models.NewExternalError("REDIS_GET_FAILED", "Failed to read session exclusion set").WithCause(err)
	}

	return urls, nil
}

// RecordShown adds urls to the session exclusion set and refreshes its ttl.
func (service *SessionService) RecordShown(ctx context.Context, sessionID string, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	startTime := time.Now()
	key := sessionKey(sessionID)

	members := make([]interface{}, len(urls))
	for i, url := range urls {
		members[i] = url
	}

	pipe := service.client.Pipeline()
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, service.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		service.logger.LogService("redis", "record_shown", time.Since(startTime), map[string]interface{}{
			"session_id": sessionID,
			"url_count":  len(urls),
		}, err)
		return models.NewExternalError("REDIS_UPDATE_FAILED", "Failed to extend session exclusion set").WithCause(err)
	}

	service.logger.LogService("redis", "record_shown", time.Since(startTime), map[string]interface{}{
		"session_id": sessionID,
		"url_count":  len(urls),
	}, nil)

	return nil
}

// ClearSession drops the exclusion set, used when the caller resets topics.
func (service *SessionService) ClearSession(ctx context.Context, sessionID string) error {
	if err := service.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return models.NewExternalError("REDIS_DELETE_FAILED", "Failed to clear session exclusion set").WithCause(err)
	}

	service.logger.Info("Session Cleared", "session_id", sessionID)
	return nil
}

func (service *SessionService) HealthCheck(ctx context.Context) error {
	if err := service.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("session store connection unhealthy: %w", err)
	}
	return nil
}

func (service *SessionService) Close() error {
	service.logger.Info("Closing Session Service")
	return service.client.Close()
}
