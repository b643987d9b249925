package media

import (
	"path"
	"strings"
)

// ContentTypeForKey guesses a MIME type from the key's extension.
func ContentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".mkv":
		return "video/x-matroska"
	default:
		return "application/octet-stream"
	}
}

// ResolveContentType prefers a declared type unless it is empty or generic.
func ResolveContentType(declared, key string) string {
	d := strings.TrimSpace(declared)
	if d == "" || d == "application/octet-stream" {
		return ContentTypeForKey(key)
	}
	return d
}
