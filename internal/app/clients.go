package app

import (
	"context"
	"fmt"

	"github.com/yungbote/studynotion-backend/internal/clients/redis"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

type Clients struct {
	Media       MediaProvider
	CourseCache redis.CourseCache
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	mp, err := resolveMediaStore(ctx, log, cfg)
	if err != nil {
		return Clients{}, err
	}

	// Redis
	cache, err := redis.NewCourseCache(log, cfg.RedisAddr, cfg.CourseCacheTTL())
	if err != nil {
		return Clients{}, fmt.Errorf("init course cache: %w", err)
	}

	return Clients{Media: mp, CourseCache: cache}, nil
}

func (c Clients) Close() {
	if c.CourseCache != nil {
		_ = c.CourseCache.Close()
	}
}
