package calendar

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/2025-Database-Soongsil/database/internal/auth"
)

// MonthlyHandler returns the projected calendar for ?year=&month=
func MonthlyHandler(svc *Service, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		year, err := strconv.Atoi(c.Query("year"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
		month, err := strconv.Atoi(c.Query("month"))
		if err != nil || month < 1 || month > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
			return
		}

		days, err := svc.MonthlyView(c.Request.Context(), userID, year, month)
		if err != nil {
			logger.Error("monthly view failed", "user_id", userID, "year", year, "month", month, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build monthly view"})
			return
		}
		c.JSON(http.StatusOK, days)
	}
}

type addTodoRequest struct {
	Title string `json:"title" binding:"required"`
	Date  string `json:"date" binding:"required"`
}

// AddTodoHandler creates a todo event on a calendar day
func AddTodoHandler(svc *Service, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		var req addTodoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title and date are required"})
			return
		}

		event, err := svc.AddTodo(c.Request.Context(), userID, req.Title, req.Date)
		if err != nil {
			logger.Error("add todo failed", "user_id", userID, "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"id":        strconv.FormatInt(event.ID, 10),
			"text":      event.Title,
			"date":      event.StartDatetime.Format(dayKeyFormat),
			"completed": false,
		})
	}
}

// DeleteTodoHandler removes a calendar event owned by the caller
func DeleteTodoHandler(svc *Service, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		deleted, err := svc.DeleteTodo(c.Request.Context(), userID, eventID)
		if err != nil {
			logger.Error("delete event failed", "user_id", userID, "event_id", eventID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete event"})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}
