package auth

import (
	"log"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/markbates/goth/providers/kakao"

	"github.com/2025-Database-Soongsil/database/internal/config"
)

// InitProviders initializes Goth OAuth providers
func InitProviders(cfg *config.Config) {
	// Configure Gothic's session store to match our app session settings.
	// Gothic uses its own gorilla/sessions store separate from gin-contrib/sessions.
	// The default has Secure=true which breaks localhost (plain HTTP).
	gothStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	gothStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   cfg.Env == "production",
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = gothStore

	var providers []goth.Provider
	if cfg.GoogleClientID != "" {
		providers = append(providers, google.New(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleCallbackURL,
			"email",
			"profile",
		))
	}
	if cfg.KakaoClientID != "" {
		providers = append(providers, kakao.New(
			cfg.KakaoClientID,
			cfg.KakaoClientSecret,
			cfg.KakaoCallbackURL,
		))
	}

	if len(providers) == 0 {
		log.Println("WARNING: no OAuth credentials set. Social login will not work until GOOGLE_CLIENT_ID or KAKAO_CLIENT_ID is configured.")
		return
	}
	goth.UseProviders(providers...)
}
