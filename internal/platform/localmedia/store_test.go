package localmedia

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
	"github.com/yungbote/studynotion-backend/internal/platform/media"
)

type fakeProber struct {
	secs float64
	err  error
	seen []string
}

func (f *fakeProber) Probe(_ context.Context, p string) (float64, error) {
	f.seen = append(f.seen, p)
	return f.secs, f.err
}

func newTestStore(t *testing.T, cfg StoreConfig) *Store {
	t.Helper()
	if cfg.Root == "" {
		cfg.Root = t.TempDir()
	}
	if cfg.PublicPrefix == "" {
		cfg.PublicPrefix = "/uploads"
	}
	s, err := NewStore(logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func blob(name, body string) media.Blob {
	return media.Blob{Filename: name, Size: int64(len(body)), Reader: strings.NewReader(body)}
}

func TestSaveWritesUnderKindDir(t *testing.T) {
	s := newTestStore(t, StoreConfig{
		Now:    func() time.Time { return time.UnixMilli(1700000000000) },
		Random: func() string { return "abc123" },
	})
	ref, err := s.Save(context.Background(), blob("cover.PNG", "png-bytes"), media.KindThumbnail)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ref.Key != "thumbnails/cover_1700000000000_abc123.png" {
		t.Fatalf("Key: got=%q", ref.Key)
	}
	if ref.URL != "/uploads/"+ref.Key {
		t.Fatalf("URL: got=%q", ref.URL)
	}
	if ref.MimeType != "image/png" || ref.SizeBytes != int64(len("png-bytes")) {
		t.Fatalf("meta: mime=%q size=%d", ref.MimeType, ref.SizeBytes)
	}
	data, err := os.ReadFile(filepath.Join(s.Root(), "thumbnails", "cover_1700000000000_abc123.png"))
	if err != nil || string(data) != "png-bytes" {
		t.Fatalf("file contents: data=%q err=%v", data, err)
	}
	entries, _ := os.ReadDir(filepath.Join(s.Root(), "thumbnails"))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
}

func TestSaveRequiresBlob(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	_, err := s.Save(context.Background(), media.Blob{Filename: "x.mp4"}, media.KindVideo)
	if !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("empty blob: want ErrValidation got=%v", err)
	}
}

func TestSaveCollisionRetriesThenFails(t *testing.T) {
	s := newTestStore(t, StoreConfig{
		Now:    func() time.Time { return time.UnixMilli(42) },
		Random: func() string { return "same" },
	})
	if _, err := s.Save(context.Background(), blob("a.mp4", "1"), media.KindVideo); err != nil {
		t.Fatalf("first save: %v", err)
	}
	_, err := s.Save(context.Background(), blob("a.mp4", "2"), media.KindVideo)
	if !errors.Is(err, apierr.ErrStorageWrite) {
		t.Fatalf("second save: want ErrStorageWrite got=%v", err)
	}
	keys, _ := s.List(context.Background(), media.KindVideo)
	if len(keys) != 1 {
		t.Fatalf("List after failed save: want=1 got=%d", len(keys))
	}
	entries, _ := os.ReadDir(filepath.Join(s.Root(), "videos"))
	if len(entries) != 1 {
		t.Fatalf("temp file not cleaned: %d entries", len(entries))
	}
}

func TestSaveConcurrentNamesUnique(t *testing.T) {
	s := newTestStore(t, StoreConfig{Now: func() time.Time { return time.UnixMilli(7) }})
	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Save(context.Background(), blob("clip.mp4", fmt.Sprint(i)), media.KindVideo)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent save: %v", err)
		}
	}
	keys, _ := s.List(context.Background(), media.KindVideo)
	if len(keys) != n {
		t.Fatalf("List: want=%d got=%d", n, len(keys))
	}
}

func TestSaveProbesVideoDuration(t *testing.T) {
	p := &fakeProber{secs: 93.7}
	s := newTestStore(t, StoreConfig{Prober: p})
	ref, err := s.Save(context.Background(), blob("lec.mp4", "v"), media.KindVideo)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ref.Duration != "93" {
		t.Fatalf("Duration: want=93 got=%q", ref.Duration)
	}
	if _, err := s.Save(context.Background(), blob("t.png", "i"), media.KindThumbnail); err != nil {
		t.Fatalf("Save thumbnail: %v", err)
	}
	if len(p.seen) != 1 {
		t.Fatalf("probe calls: want=1 got=%d", len(p.seen))
	}
}

func TestSaveProbeFailureKeepsFile(t *testing.T) {
	s := newTestStore(t, StoreConfig{Prober: &fakeProber{err: errors.New("no ffprobe")}})
	ref, err := s.Save(context.Background(), blob("lec.mp4", "v"), media.KindVideo)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ref.Duration != "" {
		t.Fatalf("Duration: want empty got=%q", ref.Duration)
	}
	if ok, _ := s.Exists(context.Background(), ref.Key); !ok {
		t.Fatalf("Exists: want=true")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	ref, err := s.Save(context.Background(), blob("a.png", "x"), media.KindImage)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.Delete(context.Background(), ref); err != nil {
			t.Fatalf("Delete #%d: %v", i+1, err)
		}
	}
	if ok, _ := s.Exists(context.Background(), ref.Key); ok {
		t.Fatalf("Exists after delete: want=false")
	}
}

func TestDeleteByURLOnly(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	ref, err := s.Save(context.Background(), blob("a.png", "x"), media.KindImage)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete(context.Background(), media.Ref{URL: ref.URL}); err != nil {
		t.Fatalf("Delete by URL: %v", err)
	}
	if ok, _ := s.Exists(context.Background(), ref.Key); ok {
		t.Fatalf("Exists after delete: want=false")
	}
}

func TestDeleteConcurrentSameKey(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	ref, err := s.Save(context.Background(), blob("a.mp4", "x"), media.KindVideo)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Delete(context.Background(), ref)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent delete: %v", err)
		}
	}
}

func TestDeleteRejectsEscapingKey(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	err := s.Delete(context.Background(), media.Ref{Key: "../../etc/passwd"})
	if !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("escape: want ErrValidation got=%v", err)
	}
}

func TestDeleteEmptyRefIsNoop(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	if err := s.Delete(context.Background(), media.Ref{}); err != nil {
		t.Fatalf("empty ref: %v", err)
	}
}

func TestListMissingDirIsEmpty(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	keys, err := s.List(context.Background(), media.KindVideo)
	if err != nil || len(keys) != 0 {
		t.Fatalf("List: keys=%v err=%v", keys, err)
	}
}

func TestParseProbeOutput(t *testing.T) {
	got, err := parseProbeOutput("N/A\n12.500000\n")
	if err != nil || got != 12.5 {
		t.Fatalf("parse: want=12.5 got=%v err=%v", got, err)
	}
	if _, err := parseProbeOutput("garbage"); err == nil {
		t.Fatalf("parse garbage: want error")
	}
}

func TestDeleteRejectsNonFileKeys(t *testing.T) {
	root := t.TempDir()
	s := newTestStore(t, StoreConfig{Root: root})
	dir := filepath.Join(root, media.KindVideo.Dir())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	temp := filepath.Join(dir, ".upload-inflight")
	if err := os.WriteFile(temp, []byte("partial"), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}

	for _, key := range []string{"videos", "videos/.upload-inflight"} {
		if err := s.Delete(context.Background(), media.Ref{Key: key}); !errors.Is(err, apierr.ErrValidation) {
			t.Fatalf("Delete(%q): want ErrValidation got=%v", key, err)
		}
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("kind dir removed: %v", err)
	}
	if _, err := os.Stat(temp); err != nil {
		t.Fatalf("temp file removed: %v", err)
	}
}
