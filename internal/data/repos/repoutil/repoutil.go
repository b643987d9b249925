package repoutil

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
)

// OrderByIDs returns rows in the order of ids, skipping ids with no row.
func OrderByIDs[T any](ids []uuid.UUID, rows []T, idOf func(T) uuid.UUID) []T {
	byID := make(map[uuid.UUID]T, len(rows))
	for _, row := range rows {
		byID[idOf(row)] = row
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			out = append(out, row)
		}
	}
	return out
}

// Dedupe drops nil and repeated ids, keeping first-seen order.
func Dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// NotFound converts gorm.ErrRecordNotFound into the typed not-found error.
func NotFound(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierr.NotFound("%s %s not found", entity, id)
	}
	return fmt.Errorf("get %s %s: %w", entity, id, err)
}

// Touch stamps updated_at unless the caller already set it.
func Touch(updates map[string]interface{}) map[string]interface{} {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return updates
}

// IsUniqueViolation reports a duplicate-key failure from postgres or sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate key")
}
