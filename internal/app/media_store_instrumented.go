package app

import (
	"context"
	"time"

	"github.com/yungbote/studynotion-backend/internal/observability"
	"github.com/yungbote/studynotion-backend/internal/platform/media"
)

type instrumentedMediaStore struct {
	inner   media.Store
	metrics *observability.Metrics
}

func instrumentMediaStore(inner media.Store) media.Store {
	if inner == nil {
		return nil
	}
	return &instrumentedMediaStore{
		inner:   inner,
		metrics: observability.Current(),
	}
}

func (s *instrumentedMediaStore) Save(ctx context.Context, blob media.Blob, kind media.Kind) (media.Ref, error) {
	start := time.Now()
	ref, err := s.inner.Save(ctx, blob, kind)
	s.observe("save", string(kind), err, time.Since(start))
	return ref, err
}

func (s *instrumentedMediaStore) Delete(ctx context.Context, ref media.Ref) error {
	start := time.Now()
	err := s.inner.Delete(ctx, ref)
	kind, _ := media.KindOfKey(ref.Key)
	s.observe("delete", string(kind), err, time.Since(start))
	return err
}

func (s *instrumentedMediaStore) Exists(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	ok, err := s.inner.Exists(ctx, key)
	kind, _ := media.KindOfKey(key)
	s.observe("exists", string(kind), err, time.Since(start))
	return ok, err
}

func (s *instrumentedMediaStore) List(ctx context.Context, kind media.Kind) ([]string, error) {
	start := time.Now()
	out, err := s.inner.List(ctx, kind)
	s.observe("list", string(kind), err, time.Since(start))
	return out, err
}

func (s *instrumentedMediaStore) observe(op, kind string, err error, dur time.Duration) {
	if s == nil || s.metrics == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	s.metrics.ObserveMediaOperation(op, kind, err, dur)
}
