// Package supplements serves the nutrient/supplement catalog and per-user
// supplement assignments.
package supplements

import (
	"errors"
	"fmt"
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

type catalogSupplement struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Brand      string `json:"brand"`
	DosageInfo string `json:"schedule"`
	Caution    string `json:"caution"`
}

type catalogNutrient struct {
	ID          string              `json:"id"`
	Nutrient    string              `json:"nutrient"`
	Stage       string              `json:"stage"`
	Description string              `json:"description"`
	Supplements []catalogSupplement `json:"supplements"`
}

func toCatalogNutrient(n models.Nutrient) catalogNutrient {
	options := make([]catalogSupplement, 0, len(n.Supplements))
	for _, s := range n.Supplements {
		options = append(options, catalogSupplement{
			ID:         s.Code,
			Name:       s.Name,
			Brand:      s.Brand,
			DosageInfo: s.DosageInfo,
			Caution:    s.Caution,
		})
	}
	return catalogNutrient{
		ID:          n.Code,
		Nutrient:    n.Name,
		Stage:       n.RecommendedPeriod,
		Description: n.Description,
		Supplements: options,
	}
}

// CatalogHandler returns the full nutrient catalog with supplement options
func CatalogHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		nutrients, err := st.NutrientCatalog(c.Request.Context())
		if err != nil {
			logger.Error("catalog lookup failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "카탈로그 조회에 실패했습니다."})
			return
		}
		out := make([]catalogNutrient, 0, len(nutrients))
		for _, n := range nutrients {
			out = append(out, toCatalogNutrient(n))
		}
		c.JSON(http.StatusOK, out)
	}
}

// NutrientsHandler filters the catalog by recommended preparation period
func NutrientsHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		period := c.Query("period")
		if period == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "period는 필수입니다."})
			return
		}

		nutrients, err := st.NutrientsByPeriod(c.Request.Context(), period)
		if err != nil {
			logger.Error("nutrient lookup failed", "period", period, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "영양소 조회에 실패했습니다."})
			return
		}
		out := make([]catalogNutrient, 0, len(nutrients))
		for _, n := range nutrients {
			out = append(out, toCatalogNutrient(n))
		}
		c.JSON(http.StatusOK, out)
	}
}

type activeSupplement struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	Notes     string     `json:"notes"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Custom    bool       `json:"custom"`
}

// ActiveHandler lists the user's current supplements, catalog-backed
// assignments and custom entries merged.
func ActiveHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}
		ctx := c.Request.Context()

		assignments, err := st.UserSupplements(ctx, userID)
		if err != nil {
			logger.Error("assignment lookup failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "영양제 조회에 실패했습니다."})
			return
		}

		out := make([]activeSupplement, 0, len(assignments))
		for _, us := range assignments {
			sup, err := st.SupplementByID(ctx, us.SupplementID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				logger.Error("supplement lookup failed", "supplement_id", us.SupplementID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "영양제 조회에 실패했습니다."})
				return
			}
			out = append(out, activeSupplement{
				ID:        fmt.Sprintf("%d-%d", us.SupplementID, us.ID),
				Name:      sup.Name,
				Schedule:  sup.DosageInfo,
				Notes:     sup.Caution,
				StartDate: us.StartDate,
				EndDate:   us.EndDate,
			})
		}

		customs, err := st.CustomSupplements(ctx, userID)
		if err != nil {
			logger.Error("custom lookup failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "영양제 조회에 실패했습니다."})
			return
		}
		for _, custom := range customs {
			out = append(out, activeSupplement{
				ID:        strconv.FormatInt(custom.ID, 10),
				Name:      custom.Name,
				Notes:     custom.Note,
				StartDate: custom.CreatedAt,
				Custom:    true,
			})
		}

		c.JSON(http.StatusOK, out)
	}
}

type recommendRequest struct {
	NutrientID   string `json:"nutrient_id" binding:"required"`
	SupplementID string `json:"supplement_id" binding:"required"`
	Cycle        string `json:"cycle"`
	TimeOfDay    string `json:"time_of_day"`
}

// RecommendHandler assigns a catalog supplement to the user, starting today
func RecommendHandler(st *store.Store, logger *slog.Logger, loc *time.Location) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		var req recommendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nutrient_id와 supplement_id는 필수입니다."})
			return
		}
		ctx := c.Request.Context()

		nutrient, err := st.NutrientByCode(ctx, req.NutrientID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "영양소를 찾을 수 없습니다."})
			return
		}
		if err != nil {
			logger.Error("nutrient lookup failed", "code", req.NutrientID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "영양제 추가에 실패했습니다."})
			return
		}

		var chosen *models.Supplement
		for i := range nutrient.Supplements {
			if nutrient.Supplements[i].Code == req.SupplementID {
				chosen = &nutrient.Supplements[i]
				break
			}
		}
		if chosen == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "영양제 옵션을 찾을 수 없습니다."})
			return
		}

		now := time.Now().In(loc)
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		assignment, err := st.AddUserSupplement(ctx, userID, chosen.ID, today, nil, req.Cycle, req.TimeOfDay)
		if err != nil {
			logger.Error("assignment create failed", "user_id", userID, "supplement_id", chosen.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "영양제 추가에 실패했습니다."})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":       fmt.Sprintf("%s-%d", req.SupplementID, assignment.ID),
			"name":     chosen.Name,
			"nutrient": nutrient.Name,
			"schedule": chosen.DosageInfo,
			"stage":    nutrient.RecommendedPeriod,
			"notes":    chosen.Caution,
		})
	}
}

type assignRequest struct {
	SupplementID string `json:"supplement_id" binding:"required"`
	StartDate    string `json:"start_date" binding:"required"`
	EndDate      string `json:"end_date"`
	Cycle        string `json:"cycle"`
	TimeOfDay    string `json:"time_of_day"`
}

// AssignHandler creates an assignment with an explicit intake window, for
// users who set up a schedule directly instead of going through a
// recommendation.
func AssignHandler(st *store.Store, logger *slog.Logger, loc *time.Location) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		var req assignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "supplement_id와 start_date는 필수입니다."})
			return
		}

		start, err := time.ParseInLocation("2006-01-02", req.StartDate, loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 start_date 형식입니다."})
			return
		}
		var end *time.Time
		if req.EndDate != "" {
			parsed, err := time.ParseInLocation("2006-01-02", req.EndDate, loc)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 end_date 형식입니다."})
				return
			}
			if parsed.Before(start) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "end_date는 start_date 이후여야 합니다."})
				return
			}
			end = &parsed
		}
		ctx := c.Request.Context()

		sup, err := st.SupplementByCode(ctx, req.SupplementID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "영양제를 찾을 수 없습니다."})
			return
		}
		if err != nil {
			logger.Error("supplement lookup failed", "code", req.SupplementID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "영양제 추가에 실패했습니다."})
			return
		}

		assignment, err := st.AddUserSupplement(ctx, userID, sup.ID, start, end, req.Cycle, req.TimeOfDay)
		if err != nil {
			logger.Error("assignment create failed", "user_id", userID, "supplement_id", sup.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "영양제 추가에 실패했습니다."})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":          fmt.Sprintf("%s-%d", req.SupplementID, assignment.ID),
			"name":        sup.Name,
			"schedule":    sup.DosageInfo,
			"start_date":  assignment.StartDate,
			"end_date":    assignment.EndDate,
			"cycle":       assignment.Cycle,
			"time_of_day": assignment.TimeOfDay,
		})
	}
}

// RemoveHandler deletes one of the user's catalog assignments
func RemoveHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		assignmentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 id입니다."})
			return
		}

		removed, err := st.RemoveUserSupplement(c.Request.Context(), assignmentID, userID)
		if err != nil {
			logger.Error("assignment delete failed", "user_id", userID, "assignment_id", assignmentID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "영양제 삭제에 실패했습니다."})
			return
		}
		if !removed {
			c.JSON(http.StatusNotFound, gin.H{"error": "영양제를 찾을 수 없습니다."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

type customRequest struct {
	Name  string `json:"name" binding:"required"`
	Notes string `json:"notes"`
}

// CustomHandler records a user-authored supplement
func CustomHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		var req customRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name은 필수입니다."})
			return
		}

		custom, err := st.AddCustomSupplement(c.Request.Context(), userID, req.Name, req.Notes)
		if err != nil {
			logger.Error("custom create failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "영양제 추가에 실패했습니다."})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"id":    strconv.FormatInt(custom.ID, 10),
			"name":  custom.Name,
			"notes": custom.Note,
		})
	}
}
