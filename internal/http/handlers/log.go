package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

// logFailure logs server-side failures at Error and client mistakes at Debug.
func logFailure(log *logger.Logger, c *gin.Context, op string, err error) {
	fields := []interface{}{"op", op, "path", c.FullPath(), "error", err}
	if actor := actorOf(c); !actor.IsZero() {
		fields = append(fields, "user_id", actor.UserID)
	}
	if apierr.StatusOf(err) >= 500 {
		log.Error(op+" failed", fields...)
		return
	}
	log.Debug(op+" rejected", fields...)
}
