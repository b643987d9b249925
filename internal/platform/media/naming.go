package media

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

const (
	maxBaseLen   = 64
	suffixLen    = 6
	suffixLetter = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateName builds {basename}_{unixMillis}_{random}{ext} from an uploaded file name.
func GenerateName(original string, now time.Time, random string) string {
	base, ext := splitName(original)
	if random == "" {
		return fmt.Sprintf("%s_%d%s", base, now.UnixMilli(), ext)
	}
	return fmt.Sprintf("%s_%d_%s%s", base, now.UnixMilli(), random, ext)
}

// RandomSuffix returns a short lowercase alphanumeric token.
func RandomSuffix() string {
	buf := make([]byte, suffixLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand does not fail on supported platforms; keep names unique by time alone.
		return ""
	}
	for i, b := range buf {
		buf[i] = suffixLetter[int(b)%len(suffixLetter)]
	}
	return string(buf)
}

func splitName(original string) (string, string) {
	name := filepath.Base(strings.ReplaceAll(strings.TrimSpace(original), "\\", "/"))
	if name == "." || name == "/" {
		name = ""
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !validExt(ext) {
		ext = ""
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))

	var sb strings.Builder
	for _, r := range base {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-', r == '_':
			sb.WriteRune(r)
		case r == ' ' || r == '.':
			sb.WriteByte('_')
		}
		if sb.Len() >= maxBaseLen {
			break
		}
	}
	out := strings.Trim(sb.String(), "_")
	if out == "" {
		out = "file"
	}
	return out, ext
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 10 {
		return false
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
