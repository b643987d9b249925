package localmedia

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/studynotion-backend/internal/pkg/ctxutil"
	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
	"github.com/yungbote/studynotion-backend/internal/platform/media"
)

const (
	tempPrefix      = ".upload-"
	reserveAttempts = 3
)

type StoreConfig struct {
	Root         string
	PublicPrefix string
	Prober       media.DurationProber
	Now          func() time.Time
	Random       func() string
}

// Store keeps media on local disk under Root/{kind dir}/.
type Store struct {
	log          *logger.Logger
	root         string
	publicPrefix string
	prober       media.DurationProber
	now          func() time.Time
	random       func() string
	deletes      singleflight.Group
}

var _ media.Store = (*Store)(nil)

func NewStore(log *logger.Logger, cfg StoreConfig) (*Store, error) {
	root := strings.TrimSpace(cfg.Root)
	if root == "" {
		return nil, fmt.Errorf("media root required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve media root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	prefix := "/" + strings.Trim(strings.TrimSpace(cfg.PublicPrefix), "/")
	if prefix == "/" {
		prefix = ""
	}
	s := &Store{
		log:          log.With("service", "LocalMediaStore"),
		root:         abs,
		publicPrefix: prefix,
		prober:       cfg.Prober,
		now:          cfg.Now,
		random:       cfg.Random,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.random == nil {
		s.random = media.RandomSuffix
	}
	return s, nil
}

func (s *Store) Root() string { return s.root }

func (s *Store) Save(ctx context.Context, blob media.Blob, kind media.Kind) (media.Ref, error) {
	ctx = ctxutil.Default(ctx)
	if !kind.Valid() {
		return media.Ref{}, apierr.Validation("unknown media kind %q", kind)
	}
	if blob.Empty() {
		return media.Ref{}, apierr.Validation("%s file is required", kind)
	}
	dir := filepath.Join(s.root, kind.Dir())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return media.Ref{}, apierr.StorageWrite(err, "create %s dir", kind.Dir())
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return media.Ref{}, apierr.StorageWrite(err, "open temp file")
	}
	tmpPath := tmp.Name()
	written, err := io.Copy(tmp, readerWithContext(ctx, blob.Reader))
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return media.Ref{}, apierr.StorageWrite(err, "write %s", blob.Filename)
	}

	name, finalPath, err := s.reserve(dir, blob.Filename)
	if err != nil {
		_ = os.Remove(tmpPath)
		return media.Ref{}, apierr.StorageWrite(err, "reserve name for %s", blob.Filename)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		_ = os.Remove(finalPath)
		return media.Ref{}, apierr.StorageWrite(err, "move %s into place", name)
	}

	key := media.KeyFor(kind, name)
	ref := media.Ref{
		Key:       key,
		URL:       s.publicURL(key),
		MimeType:  media.ResolveContentType(blob.ContentType, name),
		SizeBytes: written,
	}
	if kind == media.KindVideo && s.prober != nil {
		if secs, perr := s.prober.Probe(ctx, finalPath); perr != nil {
			s.log.Warn("duration probe failed", "key", key, "error", perr)
		} else {
			ref.Duration = strconv.FormatInt(int64(secs), 10)
		}
	}
	s.log.Debug("media saved", "key", key, "size_bytes", written)
	return ref, nil
}

// reserve claims a unique final name with O_EXCL so concurrent saves never share a path.
func (s *Store) reserve(dir, original string) (string, string, error) {
	var lastErr error
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		name := media.GenerateName(original, s.now(), s.random())
		full := filepath.Join(dir, name)
		f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_ = f.Close()
			return name, full, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", "", err
		}
		lastErr = err
	}
	return "", "", fmt.Errorf("name collision after %d attempts: %w", reserveAttempts, lastErr)
}

// Delete removes the referenced file. Absence is success. Concurrent deletes
// of the same key share one removal.
func (s *Store) Delete(ctx context.Context, ref media.Ref) error {
	key, err := s.keyOf(ref)
	if err != nil {
		return err
	}
	if key == "" {
		return nil
	}
	_, err, _ = s.deletes.Do(key, func() (interface{}, error) {
		full := filepath.Join(s.root, filepath.FromSlash(key))
		if rmErr := os.Remove(full); rmErr != nil {
			if errors.Is(rmErr, fs.ErrNotExist) {
				return nil, nil
			}
			return nil, apierr.Storage(rmErr, "delete %s", key)
		}
		s.log.Debug("media deleted", "key", key)
		return nil, nil
	})
	return err
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	clean, err := media.CleanKey(key)
	if err != nil {
		return false, apierr.Validation("%v", err)
	}
	_, err = os.Stat(filepath.Join(s.root, filepath.FromSlash(clean)))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, apierr.Storage(err, "stat %s", clean)
	}
}

func (s *Store) List(ctx context.Context, kind media.Kind) ([]string, error) {
	if !kind.Valid() {
		return nil, apierr.Validation("unknown media kind %q", kind)
	}
	entries, err := os.ReadDir(filepath.Join(s.root, kind.Dir()))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, apierr.Storage(err, "list %s", kind.Dir())
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, media.KeyFor(kind, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// keyOf prefers Ref.Key and falls back to stripping the public prefix off Ref.URL.
func (s *Store) keyOf(ref media.Ref) (string, error) {
	raw := strings.TrimSpace(ref.Key)
	if raw == "" {
		raw = strings.TrimSpace(ref.URL)
		if raw == "" {
			return "", nil
		}
		if s.publicPrefix != "" {
			raw = strings.TrimPrefix(raw, s.publicPrefix)
		}
	}
	clean, err := media.FileKey(raw)
	if err != nil {
		return "", apierr.Validation("%v", err)
	}
	return clean, nil
}

func (s *Store) publicURL(key string) string {
	return s.publicPrefix + "/" + key
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
