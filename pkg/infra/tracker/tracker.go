package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// DefaultExpiration bounds how long an uploader's rejection history is
	// remembered.
	DefaultExpiration = time.Hour

	uploaderRejectedKey = "uploader:%s:rejected"
	uploaderSeenKey     = "uploader:%s:seen"
)

//go:generate mockery --name=Tracker --dir=. --output=./mocks --filename=uploader_tracker_mock.go --case=underscore --with-expecter
type Tracker interface {
	RecordSubmission(ctx context.Context, uploaderID string, ttl time.Duration) error
	RecordRejection(ctx context.Context, uploaderID string, ttl time.Duration) error
	RejectedCount(ctx context.Context, uploaderID string) (int64, error)
	IsRepeatOffender(ctx context.Context, uploaderID string, ratioThreshold float64) (bool, error)
}

type tracker struct {
	redis *redis.Client
}

// NewUploaderTracker keeps per-uploader submission and rejection counters
// in redis so the UI can flag repeat offenders. All counters carry a TTL;
// the tracker never blocks a verdict on its own.
func NewUploaderTracker(client *redis.Client) Tracker {
	return &tracker{redis: client}
}

func (t *tracker) RecordSubmission(ctx context.Context, uploaderID string, ttl time.Duration) error {
	return t.increment(ctx, fmt.Sprintf(uploaderSeenKey, uploaderID), ttl)
}

func (t *tracker) RecordRejection(ctx context.Context, uploaderID string, ttl time.Duration) error {
	return t.increment(ctx, fmt.Sprintf(uploaderRejectedKey, uploaderID), ttl)
}

func (t *tracker) increment(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultExpiration
	}
	pipe := t.redis.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment %s: %w", key, err)
	}
	return nil
}

func (t *tracker) RejectedCount(ctx context.Context, uploaderID string) (int64, error) {
	count, err := t.redis.Get(ctx, fmt.Sprintf(uploaderRejectedKey, uploaderID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read rejected count: %w", err)
	}
	return count, nil
}

// IsRepeatOffender reports whether the uploader's rejection ratio meets the
// threshold. An uploader with no recorded submissions is never flagged.
func (t *tracker) IsRepeatOffender(ctx context.Context, uploaderID string, ratioThreshold float64) (bool, error) {
	pipe := t.redis.Pipeline()
	rejected := pipe.Get(ctx, fmt.Sprintf(uploaderRejectedKey, uploaderID))
	seen := pipe.Get(ctx, fmt.Sprintf(uploaderSeenKey, uploaderID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("failed to read uploader counters: %w", err)
	}

	rejectedCount, err := rejected.Int64()
	if err != nil {
		return false, nil
	}
	seenCount, err := seen.Int64()
	if err != nil || seenCount == 0 {
		return false, nil
	}

	return float64(rejectedCount)/float64(seenCount) >= ratioThreshold, nil
}
