package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
	"gorm.io/gorm"

	"github.com/2025-Database-Soongsil/database/internal/crypto"
	"github.com/2025-Database-Soongsil/database/internal/models"
	"github.com/2025-Database-Soongsil/database/internal/store"
)

type signupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Nickname string `json:"nickname"`
	Pregnant bool   `json:"pregnant"`
	DueDate  string `json:"due_date"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type socialRequest struct {
	Provider string `json:"provider" binding:"required"`
	Token    string `json:"token" binding:"required"`
}

type userResponse struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Nickname   string `json:"nickname"`
	Provider   string `json:"provider"`
	IsPregnant bool   `json:"is_pregnant"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Nickname:   u.Nickname,
		Provider:   u.Provider,
		IsPregnant: u.IsPregnant,
	}
}

// SignupHandler registers a local account and issues a bearer token.
// An optional due date seeds the pregnancy record at signup time.
func SignupHandler(st *store.Store, codec *crypto.TokenCodec, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email과 password는 필수입니다."})
			return
		}

		if _, err := st.UserByEmail(c.Request.Context(), req.Email); err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "이미 가입된 이메일입니다."})
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("signup lookup failed", "email", req.Email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "회원가입에 실패했습니다."})
			return
		}

		user := &models.User{
			Email:      req.Email,
			Password:   req.Password,
			Provider:   models.ProviderLocal,
			Nickname:   req.Nickname,
			IsPregnant: req.Pregnant,
		}
		if err := st.CreateUser(c.Request.Context(), user); err != nil {
			logger.Error("signup create failed", "email", req.Email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "회원가입에 실패했습니다."})
			return
		}

		if req.DueDate != "" {
			if due, err := time.Parse("2006-01-02", req.DueDate); err == nil {
				if err := st.UpsertPregnancyInfo(c.Request.Context(), user.ID, nil, &due); err != nil {
					logger.Warn("signup due date not saved", "user_id", user.ID, "error", err)
				}
			}
		}

		issueToken(c, codec, user, logger, http.StatusCreated)
	}
}

// LoginHandler authenticates a local account and issues a bearer token
func LoginHandler(st *store.Store, codec *crypto.TokenCodec, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email과 password는 필수입니다."})
			return
		}

		user, err := st.UserByEmail(c.Request.Context(), req.Email)
		if err != nil || user.Password != req.Password {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "이메일 또는 비밀번호가 올바르지 않습니다."})
			return
		}

		issueToken(c, codec, user, logger, http.StatusOK)
	}
}

// SocialTokenHandler handles app-side social login where the client already
// holds a provider token. The user is keyed to a provider-scoped placeholder
// email, matching how mobile clients of this API register social accounts.
func SocialTokenHandler(st *store.Store, codec *crypto.TokenCodec, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req socialRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "provider와 token은 필수입니다."})
			return
		}

		provider := strings.ToLower(req.Provider)
		email := provider + "@connected"
		nickname := req.Provider + " 사용자"

		user, err := st.UpsertSocialUser(c.Request.Context(), provider, req.Token, email, nickname)
		if err != nil {
			logger.Error("social login failed", "provider", provider, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "소셜 로그인에 실패했습니다."})
			return
		}

		issueToken(c, codec, user, logger, http.StatusOK)
	}
}

// BeginOAuthHandler starts the Goth redirect flow for /auth/:provider
func BeginOAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Request.URL.Query()
		q.Add("provider", c.Param("provider"))
		c.Request.URL.RawQuery = q.Encode()

		gothic.BeginAuthHandler(c.Writer, c.Request)
	}
}

// OAuthCallbackHandler completes the redirect flow, upserts the user by
// provider identity, and returns a bearer token.
func OAuthCallbackHandler(st *store.Store, codec *crypto.TokenCodec, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Request.URL.Query()
		q.Add("provider", c.Param("provider"))
		c.Request.URL.RawQuery = q.Encode()

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			logger.Error("oauth callback failed", "provider", c.Param("provider"), "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "소셜 인증에 실패했습니다."})
			return
		}

		user, err := st.UpsertSocialUser(c.Request.Context(), gothUser.Provider, gothUser.UserID, gothUser.Email, gothUser.Name)
		if err != nil {
			logger.Error("oauth upsert failed", "provider", gothUser.Provider, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "소셜 로그인에 실패했습니다."})
			return
		}

		issueToken(c, codec, user, logger, http.StatusOK)
	}
}

// DeleteMeHandler removes the authenticated user and everything it owns
func DeleteMeHandler(st *store.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "토큰이 필요합니다."})
			return
		}

		deleted, err := st.DeleteUser(c.Request.Context(), userID)
		if err != nil {
			logger.Error("delete user failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "탈퇴 처리에 실패했습니다."})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "사용자를 찾을 수 없습니다."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func issueToken(c *gin.Context, codec *crypto.TokenCodec, user *models.User, logger *slog.Logger, status int) {
	token, err := codec.Issue(user.ID)
	if err != nil {
		logger.Error("token issue failed", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "토큰 발급에 실패했습니다."})
		return
	}
	c.JSON(status, gin.H{"token": token, "user": toUserResponse(user)})
}
