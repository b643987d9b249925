package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/studynotion-backend/internal/pkg/ctxutil"
	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
	"github.com/yungbote/studynotion-backend/internal/platform/media"
)

const (
	uploadTimeout = 2 * time.Minute
	deleteTimeout = 30 * time.Second
	listTimeout   = 30 * time.Second
)

// objectAPI is the slice of the storage client the store needs; tests swap it.
type objectAPI interface {
	write(ctx context.Context, bucket, key, contentType string, r io.Reader) (int64, error)
	remove(ctx context.Context, bucket, key string) error
	exists(ctx context.Context, bucket, key string) (bool, error)
	list(ctx context.Context, bucket, prefix string) ([]string, error)
}

// MediaStore keeps media as objects named {kind dir}/{generated name} in one bucket.
type MediaStore struct {
	log    *logger.Logger
	api    objectAPI
	cfg    StorageConfig
	now    func() time.Time
	random func() string
}

var _ media.Store = (*MediaStore)(nil)

func NewMediaStore(ctx context.Context, log *logger.Logger, cfg StorageConfig) (*MediaStore, error) {
	if err := ValidateStorageConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate storage config: %w", err)
	}
	client, err := newStorageClient(ctxutil.Default(ctx), cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	s := newMediaStore(log, &clientAPI{client: client}, cfg)
	s.log.Info("Remote media store initialized",
		"mode", cfg.Mode,
		"bucket", cfg.Bucket,
		"emulator_host", cfg.EmulatorHost,
		"public_base_url", cfg.PublicBaseURL,
	)
	return s, nil
}

func newMediaStore(log *logger.Logger, api objectAPI, cfg StorageConfig) *MediaStore {
	cfg.EmulatorHost = strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	return &MediaStore{
		log:    log.With("service", "GCSMediaStore"),
		api:    api,
		cfg:    cfg,
		now:    time.Now,
		random: media.RandomSuffix,
	}
}

func newStorageClient(ctx context.Context, cfg StorageConfig) (*storage.Client, error) {
	switch cfg.Mode {
	case StorageModeGCSEmulator:
		// The storage client reads the emulator endpoint from the environment only.
		if err := os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost); err != nil {
			return nil, fmt.Errorf("set STORAGE_EMULATOR_HOST: %w", err)
		}
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		opts := credentialOptions(cfg.CredentialsJSON)
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	}
}

func credentialOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	switch {
	case creds == "":
		return nil
	case strings.HasPrefix(creds, "{"):
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	default:
		return []option.ClientOption{option.WithCredentialsFile(creds)}
	}
}

func (s *MediaStore) Save(ctx context.Context, blob media.Blob, kind media.Kind) (media.Ref, error) {
	if !kind.Valid() {
		return media.Ref{}, apierr.Validation("unknown media kind %q", kind)
	}
	if blob.Empty() {
		return media.Ref{}, apierr.Validation("%s file is required", kind)
	}
	ctx, cancel := ctxutil.Bounded(ctx, uploadTimeout)
	defer cancel()

	name := media.GenerateName(blob.Filename, s.now(), s.random())
	key := media.KeyFor(kind, name)
	contentType := media.ResolveContentType(blob.ContentType, name)
	n, err := s.api.write(ctx, s.cfg.Bucket, key, contentType, blob.Reader)
	if err != nil {
		return media.Ref{}, apierr.StorageWrite(err, "upload %s", key)
	}
	return media.Ref{
		Key:       key,
		URL:       s.PublicURL(key),
		MimeType:  contentType,
		SizeBytes: n,
	}, nil
}

func (s *MediaStore) Delete(ctx context.Context, ref media.Ref) error {
	key, err := s.keyOf(ref)
	if err != nil || key == "" {
		return err
	}
	ctx, cancel := ctxutil.Bounded(ctx, deleteTimeout)
	defer cancel()
	if err := s.api.remove(ctx, s.cfg.Bucket, key); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return apierr.Storage(err, "delete object %s", key)
	}
	return nil
}

func (s *MediaStore) Exists(ctx context.Context, key string) (bool, error) {
	clean, err := media.CleanKey(key)
	if err != nil {
		return false, apierr.Validation("%v", err)
	}
	ctx, cancel := ctxutil.Bounded(ctx, deleteTimeout)
	defer cancel()
	ok, err := s.api.exists(ctx, s.cfg.Bucket, clean)
	if err != nil {
		return false, apierr.Storage(err, "stat object %s", clean)
	}
	return ok, nil
}

func (s *MediaStore) List(ctx context.Context, kind media.Kind) ([]string, error) {
	if !kind.Valid() {
		return nil, apierr.Validation("unknown media kind %q", kind)
	}
	ctx, cancel := ctxutil.Bounded(ctx, listTimeout)
	defer cancel()
	keys, err := s.api.list(ctx, s.cfg.Bucket, kind.Dir()+"/")
	if err != nil {
		return nil, apierr.Storage(err, "list %s", kind.Dir())
	}
	sort.Strings(keys)
	return keys, nil
}

// PublicURL resolves the absolute URL clients use to fetch key.
func (s *MediaStore) PublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	switch {
	case s.cfg.CDNDomain != "":
		return fmt.Sprintf("https://%s/%s", s.cfg.CDNDomain, key)
	case s.cfg.IsEmulatorMode():
		base := s.cfg.PublicBaseURL
		if base == "" {
			base = s.cfg.EmulatorHost
		}
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", base, url.PathEscape(s.cfg.Bucket), url.PathEscape(key))
	case s.cfg.PublicBaseURL != "":
		return fmt.Sprintf("%s/%s/%s", s.cfg.PublicBaseURL, s.cfg.Bucket, key)
	default:
		return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.cfg.Bucket, key)
	}
}

// keyOf prefers Ref.Key; an absolute URL from this bucket is reduced to its object name.
func (s *MediaStore) keyOf(ref media.Ref) (string, error) {
	raw := strings.TrimSpace(ref.Key)
	if raw == "" {
		raw = s.keyFromURL(strings.TrimSpace(ref.URL))
		if raw == "" {
			return "", nil
		}
	}
	clean, err := media.CleanKey(raw)
	if err != nil {
		return "", apierr.Validation("%v", err)
	}
	return clean, nil
}

func (s *MediaStore) keyFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if marker := "/o/"; strings.Contains(u.Path, marker) {
		_, obj, _ := strings.Cut(u.Path, marker)
		if unescaped, err := url.PathUnescape(obj); err == nil {
			return unescaped
		}
		return obj
	}
	p := strings.TrimLeft(u.Path, "/")
	if s.cfg.CDNDomain != "" && u.Host == s.cfg.CDNDomain {
		return p
	}
	if rest, ok := strings.CutPrefix(p, s.cfg.Bucket+"/"); ok {
		return rest
	}
	return ""
}

type clientAPI struct {
	client *storage.Client
}

func (c *clientAPI) write(ctx context.Context, bucket, key, contentType string, r io.Reader) (int64, error) {
	w := c.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return 0, fmt.Errorf("write object data: %w", err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("close object writer: %w", err)
	}
	return n, nil
}

func (c *clientAPI) remove(ctx context.Context, bucket, key string) error {
	return c.client.Bucket(bucket).Object(key).Delete(ctx)
}

func (c *clientAPI) exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := c.client.Bucket(bucket).Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (c *clientAPI) list(ctx context.Context, bucket, prefix string) ([]string, error) {
	it := c.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	out := []string{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, attrs.Name)
	}
	return out, nil
}
