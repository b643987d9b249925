package app

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/studynotion-backend/internal/platform/media"
)

func TestInstrumentMediaStorePassThrough(t *testing.T) {
	inner := &fakeInstrumentedInner{}
	ms := instrumentMediaStore(inner)
	if ms == nil {
		t.Fatalf("instrumentMediaStore: expected non-nil wrapper")
	}
	ctx := context.Background()

	ref, err := ms.Save(ctx, media.Blob{Filename: "a.mp4"}, media.KindVideo)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ref.Key != "videos/a.mp4" {
		t.Fatalf("Save key: want=videos/a.mp4 got=%s", ref.Key)
	}
	if _, err := ms.Exists(ctx, ref.Key); err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if _, err := ms.List(ctx, media.KindVideo); err != nil {
		t.Fatalf("List: %v", err)
	}
	if err := ms.Delete(ctx, ref); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if inner.saveCalls != 1 || inner.existsCalls != 1 || inner.listCalls != 1 || inner.deleteCalls != 1 {
		t.Fatalf(
			"unexpected call counts: save=%d exists=%d list=%d delete=%d",
			inner.saveCalls,
			inner.existsCalls,
			inner.listCalls,
			inner.deleteCalls,
		)
	}
}

func TestInstrumentMediaStoreErrorPassThrough(t *testing.T) {
	want := errors.New("delete failed")
	ms := instrumentMediaStore(&fakeInstrumentedInner{deleteErr: want})

	err := ms.Delete(context.Background(), media.Ref{Key: "videos/a.mp4"})
	if !errors.Is(err, want) {
		t.Fatalf("Delete: expected wrapped error %v, got=%v", want, err)
	}
}

func TestInstrumentMediaStoreNil(t *testing.T) {
	if instrumentMediaStore(nil) != nil {
		t.Fatalf("instrumentMediaStore(nil): expected nil")
	}
}

type fakeInstrumentedInner struct {
	saveCalls   int
	deleteCalls int
	existsCalls int
	listCalls   int
	deleteErr   error
}

func (f *fakeInstrumentedInner) Save(_ context.Context, blob media.Blob, kind media.Kind) (media.Ref, error) {
	f.saveCalls++
	key := media.KeyFor(kind, blob.Filename)
	return media.Ref{Key: key, URL: "/uploads/" + key}, nil
}

func (f *fakeInstrumentedInner) Delete(context.Context, media.Ref) error {
	f.deleteCalls++
	return f.deleteErr
}

func (f *fakeInstrumentedInner) Exists(context.Context, string) (bool, error) {
	f.existsCalls++
	return true, nil
}

func (f *fakeInstrumentedInner) List(context.Context, media.Kind) ([]string, error) {
	f.listCalls++
	return nil, nil
}
