package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// Kind selects the flat namespace a blob is stored under.
type Kind string

const (
	KindThumbnail Kind = "thumbnail"
	KindVideo     Kind = "video"
	KindImage     Kind = "image"
)

// Dir is the directory (or object prefix) holding every blob of this kind.
func (k Kind) Dir() string {
	switch k {
	case KindThumbnail:
		return "thumbnails"
	case KindVideo:
		return "videos"
	case KindImage:
		return "images"
	default:
		return ""
	}
}

func (k Kind) Valid() bool { return k.Dir() != "" }

// Kinds lists every supported kind in a stable order.
func Kinds() []Kind { return []Kind{KindThumbnail, KindVideo, KindImage} }

// KindOfKey maps a storage key back to its kind by its leading directory.
func KindOfKey(key string) (Kind, bool) {
	dir, _, ok := strings.Cut(strings.TrimLeft(key, "/"), "/")
	if !ok {
		return "", false
	}
	for _, k := range Kinds() {
		if k.Dir() == dir {
			return k, true
		}
	}
	return "", false
}

// Blob is an upload waiting to be persisted.
type Blob struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

func (b *Blob) Empty() bool { return b == nil || b.Reader == nil }

// Ref identifies a stored file. Key is relative to the store root, URL is
// what clients get (relative for local disk, absolute for remote backends).
type Ref struct {
	Key       string
	URL       string
	MimeType  string
	Duration  string
	SizeBytes int64
}

func (r Ref) IsZero() bool { return r.Key == "" && r.URL == "" }

// Store persists blobs per kind. Delete of an absent key is a success.
type Store interface {
	Save(ctx context.Context, blob Blob, kind Kind) (Ref, error)
	Delete(ctx context.Context, ref Ref) error
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, kind Kind) ([]string, error)
}

// DurationProber extracts a playback length from a stored file.
type DurationProber interface {
	Probe(ctx context.Context, localPath string) (seconds float64, err error)
}

// KeyFor joins a kind directory and a generated file name.
func KeyFor(kind Kind, name string) string {
	return path.Join(kind.Dir(), name)
}

// CleanKey normalizes key and rejects anything that would leave the store root.
func CleanKey(key string) (string, error) {
	k := strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	k = strings.TrimLeft(k, "/")
	if k == "" {
		return "", fmt.Errorf("empty media key")
	}
	cleaned := path.Clean(k)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("media key %q escapes store root", key)
	}
	return cleaned, nil
}

// FileKey is CleanKey restricted to a visible file directly inside one kind
// directory, the only shape Save ever produces.
func FileKey(key string) (string, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	if _, ok := KindOfKey(clean); !ok {
		return "", fmt.Errorf("media key %q is outside every kind directory", key)
	}
	_, name, _ := strings.Cut(clean, "/")
	if name == "" || strings.Contains(name, "/") || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("media key %q does not name a stored file", key)
	}
	return clean, nil
}
