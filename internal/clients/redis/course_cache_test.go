package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

func TestCourseDetailKey(t *testing.T) {
	id := uuid.MustParse("6f1c1a52-6a43-4d0a-9a53-2f1f2ad2c0aa")
	want := "course:detail:6f1c1a52-6a43-4d0a-9a53-2f1f2ad2c0aa"
	if got := CourseDetailKey(id); got != want {
		t.Fatalf("CourseDetailKey: want=%s got=%s", want, got)
	}
}

func TestNewCourseCacheWithoutAddrIsNoop(t *testing.T) {
	c, err := NewCourseCache(logger.Nop(), "  ", time.Minute)
	if err != nil {
		t.Fatalf("NewCourseCache: %v", err)
	}
	ctx := context.Background()
	id := uuid.New()
	if err := c.Set(ctx, id, "public", map[string]string{"a": "b"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var out map[string]string
	hit, err := c.Get(ctx, id, "public", &out)
	if err != nil || hit {
		t.Fatalf("Get: want miss got hit=%v err=%v", hit, err)
	}
}

func TestCourseCacheRoundTripAndInvalidate(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis integration tests")
	}
	c, err := NewCourseCache(logger.Nop(), addr, time.Minute)
	if err != nil {
		t.Fatalf("NewCourseCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	id := uuid.New()
	in := map[string]string{"course_name": "Go"}
	if err := c.Set(ctx, id, "public", in); err != nil {
		t.Fatalf("Set public: %v", err)
	}
	if err := c.Set(ctx, id, "full", in); err != nil {
		t.Fatalf("Set full: %v", err)
	}
	var out map[string]string
	hit, err := c.Get(ctx, id, "public", &out)
	if err != nil || !hit || out["course_name"] != "Go" {
		t.Fatalf("Get: hit=%v err=%v out=%v", hit, err, out)
	}

	if err := c.Invalidate(ctx, id); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	for _, view := range []string{"public", "full"} {
		if hit, _ := c.Get(ctx, id, view, &out); hit {
			t.Fatalf("Get %s after Invalidate: want miss", view)
		}
	}
}
