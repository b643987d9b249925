package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

const courseDetailPrefix = "course:detail:"

// CourseCache holds serialized course trees keyed by course id. Each course key
// is a hash with one field per view, so Invalidate drops every view at once.
type CourseCache interface {
	Get(ctx context.Context, courseID uuid.UUID, view string, dst any) (bool, error)
	Set(ctx context.Context, courseID uuid.UUID, view string, v any) error
	Invalidate(ctx context.Context, courseIDs ...uuid.UUID) error
	Close() error
}

type courseCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewCourseCache connects to addr. An empty addr disables caching.
func NewCourseCache(log *logger.Logger, addr string, ttl time.Duration) (CourseCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		log.Info("Course cache disabled (REDIS_ADDR empty)")
		return NoopCourseCache(), nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &courseCache{
		log: log.With("client", "RedisCourseCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func CourseDetailKey(courseID uuid.UUID) string {
	return courseDetailPrefix + courseID.String()
}

func (c *courseCache) Get(ctx context.Context, courseID uuid.UUID, view string, dst any) (bool, error) {
	raw, err := c.rdb.HGet(ctx, CourseDetailKey(courseID), view).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("course cache get: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// Drop undecodable entries so the next read repopulates.
		c.log.Warn("Dropping undecodable course cache entry", "course_id", courseID, "view", view, "error", err)
		_ = c.rdb.Del(ctx, CourseDetailKey(courseID)).Err()
		return false, nil
	}
	return true, nil
}

func (c *courseCache) Set(ctx context.Context, courseID uuid.UUID, view string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("course cache encode: %w", err)
	}
	key := CourseDetailKey(courseID)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, view, raw)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("course cache set: %w", err)
	}
	return nil
}

func (c *courseCache) Invalidate(ctx context.Context, courseIDs ...uuid.UUID) error {
	keys := make([]string, 0, len(courseIDs))
	for _, id := range courseIDs {
		if id != uuid.Nil {
			keys = append(keys, CourseDetailKey(id))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("course cache invalidate: %w", err)
	}
	return nil
}

func (c *courseCache) Close() error { return c.rdb.Close() }

type noopCourseCache struct{}

// NoopCourseCache never hits and accepts every write.
func NoopCourseCache() CourseCache { return noopCourseCache{} }

func (noopCourseCache) Get(context.Context, uuid.UUID, string, any) (bool, error) { return false, nil }
func (noopCourseCache) Set(context.Context, uuid.UUID, string, any) error           { return nil }
func (noopCourseCache) Invalidate(context.Context, ...uuid.UUID) error              { return nil }
func (noopCourseCache) Close() error                                                { return nil }
