package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/2025-Database-Soongsil/database/internal/auth"
	"github.com/2025-Database-Soongsil/database/internal/models"
	"github.com/2025-Database-Soongsil/database/internal/store"
)

const dateFormat = "2006-01-02"

// pregnancyTermDays backfills a missing pregnancy start from the due date
const pregnancyTermDays = 280

type profileResponse struct {
	Height        *float64 `json:"height"`
	PreWeight     *float64 `json:"preWeight"`
	CurrentWeight *float64 `json:"currentWeight"`
}

func toProfileResponse(p *models.UserProfile) profileResponse {
	if p == nil {
		return profileResponse{}
	}
	return profileResponse{
		Height:        p.Height,
		PreWeight:     p.InitialWeight,
		CurrentWeight: p.CurrentWeight,
	}
}

// MeHandler returns the account with its profile, weight guidance, and
// preparation stage.
func MeHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		user, err := st.UserByID(c.Request.Context(), userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "사용자를 찾을 수 없습니다."})
			return
		}
		if err != nil {
			logger.Error("user lookup failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "사용자 조회에 실패했습니다."})
			return
		}

		profile, err := st.ProfileByUser(c.Request.Context(), userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("profile lookup failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "프로필 조회에 실패했습니다."})
			return
		}

		var startDate, dueDate *time.Time
		if period, err := st.PeriodInfoByUser(c.Request.Context(), userID); err == nil {
			startDate = period.PeriodStart
		}
		if preg, err := st.PregnancyInfoByUser(c.Request.Context(), userID); err == nil {
			dueDate = preg.DueDate
		}

		var status *WeightStatus
		if profile != nil {
			status = weightStatus(profile.Height, profile.InitialWeight, profile.CurrentWeight)
		}

		c.JSON(http.StatusOK, gin.H{
			"user": gin.H{
				"id":          user.ID,
				"email":       user.Email,
				"nickname":    user.Nickname,
				"provider":    user.Provider,
				"is_pregnant": user.IsPregnant,
				"profile":     toProfileResponse(profile),
			},
			"weightStatus": status,
			"stage":        calculateStage(startDate, dueDate, time.Now()),
		})
	}
}

type updateMeRequest struct {
	Nickname   *string `json:"nickname"`
	IsPregnant *bool   `json:"is_pregnant"`
}

// UpdateMeHandler patches the mutable account fields
func UpdateMeHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		var req updateMeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다."})
			return
		}

		if req.Nickname != nil {
			if _, err := st.UpdateNickname(c.Request.Context(), userID, *req.Nickname); err != nil {
				logger.Error("nickname update failed", "user_id", userID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "수정에 실패했습니다."})
				return
			}
		}
		if req.IsPregnant != nil {
			if _, err := st.UpdatePregnancyFlag(c.Request.Context(), userID, *req.IsPregnant); err != nil {
				logger.Error("pregnancy flag update failed", "user_id", userID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "수정에 실패했습니다."})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

type profileRequest struct {
	Height        *float64 `json:"height"`
	PreWeight     *float64 `json:"preWeight"`
	CurrentWeight *float64 `json:"currentWeight"`
}

// UpdateProfileHandler coalesce-upserts body measurements and returns the
// refreshed weight guidance.
func UpdateProfileHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다."})
			return
		}

		if err := st.UpsertProfile(c.Request.Context(), userID, req.Height, req.PreWeight, req.CurrentWeight); err != nil {
			logger.Error("profile upsert failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "프로필 저장에 실패했습니다."})
			return
		}

		profile, err := st.ProfileByUser(c.Request.Context(), userID)
		if err != nil {
			logger.Error("profile reload failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "프로필 조회에 실패했습니다."})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"profile":      toProfileResponse(profile),
			"weightStatus": weightStatus(profile.Height, profile.InitialWeight, profile.CurrentWeight),
		})
	}
}

type datesRequest struct {
	PeriodStart string `json:"period_start"`
	DueDate     string `json:"due_date"`
}

// UpdateDatesHandler records the planned period start and due date. A due
// date without a recorded pregnancy start backfills the start as due-280d.
func UpdateDatesHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		var req datesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다."})
			return
		}

		ctx := c.Request.Context()

		if req.PeriodStart != "" {
			start, err := time.Parse(dateFormat, req.PeriodStart)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 날짜 형식입니다."})
				return
			}
			// The new period start is also the newest cycle anchor
			if err := st.UpsertPeriodInfo(ctx, userID, &start, &start); err != nil {
				logger.Error("period upsert failed", "user_id", userID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "날짜 저장에 실패했습니다."})
				return
			}
		}

		if req.DueDate != "" {
			due, err := time.Parse(dateFormat, req.DueDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 날짜 형식입니다."})
				return
			}

			var pregnancyStart *time.Time
			existing, err := st.PregnancyInfoByUser(ctx, userID)
			if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && existing.PregnancyStart == nil) {
				backfilled := due.AddDate(0, 0, -pregnancyTermDays)
				pregnancyStart = &backfilled
			} else if err != nil {
				logger.Error("pregnancy lookup failed", "user_id", userID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "날짜 저장에 실패했습니다."})
				return
			}

			if err := st.UpsertPregnancyInfo(ctx, userID, pregnancyStart, &due); err != nil {
				logger.Error("pregnancy upsert failed", "user_id", userID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "날짜 저장에 실패했습니다."})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// SettingsHandler lists the user's reminder times and shared enabled flag
func SettingsHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		settings, err := st.SettingsByUser(c.Request.Context(), userID)
		if err != nil {
			logger.Error("settings lookup failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "설정 조회에 실패했습니다."})
			return
		}

		enabled := true
		times := make([]string, 0, len(settings))
		for _, s := range settings {
			enabled = s.NotificationEnabled
			times = append(times, s.DefaultNotifyTime)
		}
		c.JSON(http.StatusOK, gin.H{"enabled": enabled, "times": times})
	}
}

type settingTimeRequest struct {
	Time string `json:"time" binding:"required"`
}

// AddSettingTimeHandler adds one daily reminder time
func AddSettingTimeHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		var req settingTimeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "time은 필수입니다."})
			return
		}
		if _, err := time.Parse("15:04", req.Time); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "시간은 HH:MM 형식이어야 합니다."})
			return
		}

		setting, err := st.AddSettingTime(c.Request.Context(), userID, req.Time)
		if err != nil {
			logger.Error("setting add failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "설정 저장에 실패했습니다."})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"time": setting.DefaultNotifyTime, "enabled": setting.NotificationEnabled})
	}
}

// DeleteSettingTimeHandler removes one reminder time
func DeleteSettingTimeHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		deleted, err := st.DeleteSettingTime(c.Request.Context(), userID, c.Param("time"))
		if err != nil {
			logger.Error("setting delete failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "설정 삭제에 실패했습니다."})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "설정을 찾을 수 없습니다."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

type enabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetEnabledHandler toggles the shared notification flag across the user's rows
func SetEnabledHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		var req enabledRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "enabled는 필수입니다."})
			return
		}

		if _, err := st.SetNotificationEnabled(c.Request.Context(), userID, *req.Enabled); err != nil {
			logger.Error("enabled toggle failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "설정 저장에 실패했습니다."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"enabled": *req.Enabled})
	}
}

// NotesHandler lists the user's doctors notes
func NotesHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		notes, err := st.NotesByUser(c.Request.Context(), userID)
		if err != nil {
			logger.Error("notes lookup failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "노트 조회에 실패했습니다."})
			return
		}
		c.JSON(http.StatusOK, notes)
	}
}

type noteRequest struct {
	Content   string `json:"content" binding:"required"`
	VisitDate string `json:"visit_date"`
}

// CreateNoteHandler records a clinic-visit note
func CreateNoteHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		var req noteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "content는 필수입니다."})
			return
		}

		var visitDate *time.Time
		if req.VisitDate != "" {
			parsed, err := time.Parse(dateFormat, req.VisitDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 날짜 형식입니다."})
				return
			}
			visitDate = &parsed
		}

		note, err := st.CreateNote(c.Request.Context(), userID, req.Content, visitDate)
		if err != nil {
			logger.Error("note create failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "노트 저장에 실패했습니다."})
			return
		}
		c.JSON(http.StatusCreated, note)
	}
}

// DeleteNoteHandler removes one of the user's notes
func DeleteNoteHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		noteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 노트 id입니다."})
			return
		}

		deleted, err := st.DeleteNote(c.Request.Context(), noteID, userID)
		if err != nil {
			logger.Error("note delete failed", "user_id", userID, "note_id", noteID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "노트 삭제에 실패했습니다."})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "노트를 찾을 수 없습니다."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// TipsHandler returns a random rotation of wellness tips
func TipsHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tips, err := st.RandomTips(c.Request.Context(), 3)
		if err != nil {
			logger.Error("tips lookup failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "팁 조회에 실패했습니다."})
			return
		}
		contents := make([]string, 0, len(tips))
		for _, tip := range tips {
			contents = append(contents, tip.Content)
		}
		c.JSON(http.StatusOK, gin.H{"tips": contents})
	}
}
