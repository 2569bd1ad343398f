package notify

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// DueHandler lists unsent notifications that are due as of now. Used by the
// delivery worker and by operators poking at the queue.
func DueHandler(m *Materializer, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		due, err := m.Due(c.Request.Context(), time.Now())
		if err != nil {
			logger.Error("due notifications query failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list due notifications"})
			return
		}
		c.JSON(http.StatusOK, due)
	}
}

// MarkSentHandler flips one notification to sent
func MarkSentHandler(m *Materializer, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		notificationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
			return
		}

		if err := m.MarkSent(c.Request.Context(), notificationID); err != nil {
			logger.Error("mark sent failed", "notification_id", notificationID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notification sent"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
