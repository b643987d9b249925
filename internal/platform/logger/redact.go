package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/yungbote/studynotion-backend/internal/platform/envutil"
)

const redacted = "[REDACTED]"

var redactKeyParts = []string{"token", "authorization", "password", "secret", "cookie", "api_key", "apikey"}

var hashKeyParts = []string{"user_id", "instructor_id", "student_id", "actor_id"}

type redactor struct {
	enabled bool
	salt    string
}

func redactorFromEnv() *redactor {
	return &redactor{
		enabled: envutil.Bool("LOG_REDACTION_ENABLED", true),
		salt:    envutil.String("LOG_HASH_SALT", ""),
	}
}

func (r *redactor) apply(kv []interface{}) []interface{} {
	if r == nil || !r.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		name := stringify(kv[i])
		out = append(out, name, r.value(strings.ToLower(strings.TrimSpace(name)), kv[i+1]))
	}
	if len(kv)%2 == 1 {
		out = append(out, kv[len(kv)-1])
	}
	return out
}

func (r *redactor) value(key string, v interface{}) interface{} {
	if key != "" {
		if containsAny(key, redactKeyParts) {
			return redacted
		}
		if containsAny(key, hashKeyParts) {
			return r.hash(v)
		}
	}
	switch t := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, inner := range t {
			m[k] = r.value(strings.ToLower(strings.TrimSpace(k)), inner)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, inner := range t {
			s[i] = r.value("", inner)
		}
		return s
	case string:
		if looksLikeJWT(t) {
			return redacted
		}
	}
	return v
}

func (r *redactor) hash(v interface{}) string {
	raw := stringify(v)
	if raw == "" {
		return ""
	}
	h := sha256.New()
	_, _ = h.Write([]byte(r.salt))
	_, _ = h.Write([]byte(raw))
	return "hash:" + hex.EncodeToString(h.Sum(nil))[:12]
}

func containsAny(s string, parts []string) bool {
	for _, p := range parts {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
