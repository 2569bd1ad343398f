package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/2025-Database-Soongsil/database/internal/auth"
	"github.com/2025-Database-Soongsil/database/internal/calendar"
	"github.com/2025-Database-Soongsil/database/internal/chatbot"
	"github.com/2025-Database-Soongsil/database/internal/config"
	"github.com/2025-Database-Soongsil/database/internal/crypto"
	"github.com/2025-Database-Soongsil/database/internal/database"
	"github.com/2025-Database-Soongsil/database/internal/health"
	"github.com/2025-Database-Soongsil/database/internal/logging"
	"github.com/2025-Database-Soongsil/database/internal/notify"
	"github.com/2025-Database-Soongsil/database/internal/store"
	"github.com/2025-Database-Soongsil/database/internal/supplements"
	"github.com/2025-Database-Soongsil/database/internal/users"
	"github.com/2025-Database-Soongsil/database/internal/webhook"
	"github.com/2025-Database-Soongsil/database/internal/worker"
)

func main() {
	cfg := config.Load()
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.SeedCatalog(db); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}
	if cfg.SeedDevData {
		if err := database.SeedDevData(db); err != nil {
			log.Fatalf("Failed to seed dev data: %v", err)
		}
	}

	codec, err := crypto.NewTokenCodec(cfg.TokenEncryptionKey)
	if err != nil {
		log.Fatalf("Failed to initialize token codec: %v", err)
	}
	auth.InitProviders(cfg)

	loc := cfg.Location()
	st := store.New(db)
	materializer := notify.NewMaterializer(st, logger)
	calendarSvc := calendar.NewService(st, materializer, logger, loc)
	chatEngine := chatbot.NewEngine(cfg.OpenAIAPIKey, logger)
	webhookClient := webhook.NewClient(cfg.NotifyWebhookURL, cfg.NotifyWebhookSecret, cfg.NotifyWebhookURL == "")

	// Background delivery: asynq worker plus the cron scheduler that fires
	// the sweep task.
	if err := worker.InitClient(cfg.RedisURL); err != nil {
		log.Fatalf("Failed to initialize task client: %v", err)
	}
	defer worker.CloseClient()

	stopWorker, err := worker.Start(cfg, materializer, webhookClient)
	if err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}
	defer stopWorker()

	stopScheduler, err := worker.StartScheduler(cfg)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer stopScheduler()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	// Cookie sessions back the OAuth redirect flow only; API auth is bearer tokens
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   cfg.Env == "production",
	})
	router.Use(sessions.Sessions("babyprep_session", sessionStore))

	router.GET("/health", gin.WrapF(health.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", auth.SignupHandler(st, codec, logger))
		authGroup.POST("/login", auth.LoginHandler(st, codec, logger))
		authGroup.POST("/social", auth.SocialTokenHandler(st, codec, logger))
		authGroup.GET("/:provider", auth.BeginOAuthHandler())
		authGroup.GET("/:provider/callback", auth.OAuthCallbackHandler(st, codec, logger))
		authGroup.DELETE("/me", auth.RequireAuth(codec), auth.DeleteMeHandler(st, logger))
	}

	api := router.Group("/", auth.RequireAuth(codec))
	{
		api.GET("/calendar/monthly", calendar.MonthlyHandler(calendarSvc, logger))
		api.POST("/calendar/events", calendar.AddTodoHandler(calendarSvc, logger))
		api.DELETE("/calendar/events/:id", calendar.DeleteTodoHandler(calendarSvc, logger))

		api.GET("/notifications/due", notify.DueHandler(materializer, logger))
		api.POST("/notifications/:id/mark-sent", notify.MarkSentHandler(materializer, logger))

		api.GET("/users/me", users.MeHandler(st, logger))
		api.PATCH("/users/me", users.UpdateMeHandler(st, logger))
		api.PUT("/users/profile", users.UpdateProfileHandler(st, logger))
		api.PUT("/users/dates", users.UpdateDatesHandler(st, logger))
		api.GET("/users/settings", users.SettingsHandler(st, logger))
		api.POST("/users/settings/times", users.AddSettingTimeHandler(st, logger))
		api.DELETE("/users/settings/times/:time", users.DeleteSettingTimeHandler(st, logger))
		api.PUT("/users/settings/enabled", users.SetEnabledHandler(st, logger))
		api.GET("/users/notes", users.NotesHandler(st, logger))
		api.POST("/users/notes", users.CreateNoteHandler(st, logger))
		api.DELETE("/users/notes/:id", users.DeleteNoteHandler(st, logger))
		api.GET("/users/tips", users.TipsHandler(st, logger))

		api.GET("/supplements/active", supplements.ActiveHandler(st, logger))
		api.POST("/supplements/recommend", supplements.RecommendHandler(st, logger, loc))
		api.POST("/supplements/user", supplements.AssignHandler(st, logger, loc))
		api.DELETE("/supplements/:id", supplements.RemoveHandler(st, logger))
		api.POST("/supplements/custom", supplements.CustomHandler(st, logger))

		api.POST("/chatbot/ask", chatbot.QueryHandler(chatEngine, st, logger))
	}

	// Catalog endpoints are public: the onboarding flow reads them pre-signup
	router.GET("/supplements/catalog", supplements.CatalogHandler(st, logger))
	router.GET("/supplements/nutrients", supplements.NutrientsHandler(st, logger))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	logger.Info("Server exited")
}
