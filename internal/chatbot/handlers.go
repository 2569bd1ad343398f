package chatbot

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/2025-Database-Soongsil/database/internal/auth"
	"github.com/2025-Database-Soongsil/database/internal/store"
)

type queryRequest struct {
	Message string `json:"message" binding:"required"`
}

// QueryHandler answers one chat message and records the exchange
func QueryHandler(engine *Engine, st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		var req queryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message는 필수입니다."})
			return
		}

		answer := engine.Ask(c.Request.Context(), req.Message)

		// The log row is best-effort; losing it must not fail the reply
		var contextJSON datatypes.JSON
		if raw, err := json.Marshal(answer.Context); err == nil {
			contextJSON = raw
		}
		if err := st.CreateChatLog(c.Request.Context(), userID, req.Message, answer.Reply, contextJSON); err != nil {
			logger.Warn("chat log write failed", "user_id", userID, "error", err)
		}

		c.JSON(http.StatusOK, gin.H{"reply": answer.Reply, "matched": answer.Matched})
	}
}
