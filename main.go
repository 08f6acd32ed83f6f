package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"graffiti/bot"
	"graffiti/config"
	"graffiti/db"
	"graffiti/logger"
	"graffiti/placement"
	"graffiti/rdx"
	"graffiti/routes"
	"graffiti/utils"
	"graffiti/wall"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.RequestURI),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)))
	})
}

func health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "healthy"})
}

func ping(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
}

func setupRouter(h *wall.Handlers) *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", health)
	router.GET("/ping", ping)

	routes.AddWallRoutes(router, h)
	routes.AddStaticRoutes(router)

	return router
}

func main() {
	// load .env if present; config reads the environment either way
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStart()

	if err := db.Connect(startCtx, cfg.MongoURL, cfg.MongoName); err != nil {
		log.Fatal("connect mongodb", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Close(ctx)
	}()

	if cfg.RedisAddr != "" {
		if err := rdx.Connect(cfg.RedisAddr); err != nil {
			log.Warn("redis unavailable, placement falls back to mongo counts", zap.Error(err))
		}
	}

	store := wall.NewMongoStore(db.PhotosCollection, db.UserCollection)

	var policy placement.Policy
	switch cfg.Placement {
	case config.PlacementScatter:
		policy = placement.NewScatter(rdx.Conn, store.CountPhotos)
	default:
		policy = placement.Fixed{X: 100, Y: 100}
	}

	svc := wall.NewService(store, policy, cfg.AdminIDs, log)
	handlers := wall.NewHandlers(svc, log)

	router := setupRouter(handlers)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
	}).Handler(router)

	handler := loggingMiddleware(log, securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	if cfg.BotToken != "" {
		tgBot, err := bot.New(cfg.BotToken, cfg.WebAppURL, svc, log)
		if err != nil {
			log.Fatal("init telegram bot", zap.Error(err))
		}
		go func() {
			if err := tgBot.Run(runCtx); err != nil {
				log.Error("bot stopped", zap.Error(err))
			}
		}()
	} else {
		log.Warn("BOT_TOKEN is empty, running web API only")
	}

	go func() {
		log.Info("server listening", zap.String("addr", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen and serve", zap.Error(err))
		}
	}()

	// wait for interrupt or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received")
	cancelRun()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("graceful shutdown failed", zap.Error(err))
	}

	log.Info("server stopped")
}
