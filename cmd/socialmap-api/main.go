package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/kevinxuez/social-map/internal/auth"
	"github.com/kevinxuez/social-map/internal/db"
	"github.com/kevinxuez/social-map/internal/graphcache"
	"github.com/kevinxuez/social-map/internal/httpapi"
	"github.com/kevinxuez/social-map/internal/metrics"
)

func main() {
	addr := envOr("HTTP_ADDR", ":8081")
	logLevel := envOr("LOG_LEVEL", "info")
	databaseURL := envOr("DATABASE_URL", "")
	redisURL := envOr("REDIS_URL", "")

	logger := httpapi.NewLoggerWith(httpapi.LogOptions{
		Level:   logLevel,
		Console: envOr("LOG_FORMAT", "json") == "console",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *db.Pool
	if databaseURL != "" {
		p, err := db.Open(ctx, databaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer p.Close()
		pool = p
	} else {
		logger.Warn().Msg("DATABASE_URL not set; data routes will answer 503")
	}

	var cache graphcache.Cache = graphcache.NewMemory()
	if redisURL != "" {
		rc, err := graphcache.OpenRedis(ctx, redisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rc.Close()
		cache = rc
	}

	authCfg := auth.Config{
		Secret:       envOr("AUTH_JWT_SECRET", ""),
		PublicKeyPEM: envOr("AUTH_JWT_PUBLIC_KEY", ""),
		Issuer:       envOr("AUTH_ISSUER", ""),
		Audience:     envOr("AUTH_AUDIENCE", ""),
		CookieName:   envOr("AUTH_COOKIE_NAME", ""),
	}
	var verifier *auth.Verifier
	if authCfg.Enabled() {
		v, err := auth.NewVerifier(authCfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid auth configuration")
		}
		verifier = v
	}

	rateLimit, err := strconv.Atoi(envOr("RATE_LIMIT_PER_MINUTE", strconv.Itoa(httpapi.DefaultRateLimitPerMinute)))
	if err != nil {
		logger.Fatal().Err(err).Msg("RATE_LIMIT_PER_MINUTE must be an integer")
	}

	h := httpapi.NewHandler(logger, pool, httpapi.Config{
		CORSOrigins:        splitList(envOr("CORS_ORIGINS", "http://localhost:3000")),
		RateLimitPerMinute: rateLimit,
		DisableRateLimit:   envOr("DISABLE_RATE_LIMIT", "") == "1",
		Cache:              cache,
		Metrics:            metrics.New(),
		Verifier:           verifier,
	})
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Bool("auth", verifier != nil).Msg("socialmap-api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info().Msg("shutdown complete")
}

func envOr(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
