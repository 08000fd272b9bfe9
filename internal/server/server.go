// Package server exposes the auth service over HTTP with gin.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/altonlabs/authd/internal/auth"
	"github.com/altonlabs/authd/internal/config"
	"github.com/altonlabs/authd/internal/metrics"
	"github.com/altonlabs/authd/internal/session"
)

// Server wires the auth service, session issuer, and metrics into a gin
// router.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	svc    *auth.Service
	issuer *session.Issuer
	rdb    redis.UniversalClient
	m      *metrics.Metrics
	router *gin.Engine
}

// NewServer builds the router. rdb is only used by the health check; m may
// be nil, which disables the /metrics endpoint.
func NewServer(cfg *config.Config, logger *slog.Logger, svc *auth.Service, issuer *session.Issuer, rdb redis.UniversalClient, m *metrics.Metrics) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(cfg),
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{
		cfg:    cfg,
		logger: logger,
		svc:    svc,
		issuer: issuer,
		rdb:    rdb,
		m:      m,
		router: r,
	}
	s.registerRoutes()
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealthz)
	if s.m != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.m.Registry(), promhttp.HandlerOpts{})))
	}

	api := s.router.Group("/api/auth")
	api.GET("/check-auth", s.handleCheckAuth)
	api.POST("/signup", s.handleSignUp)
	api.POST("/verify-email", s.handleVerifyEmail)
	api.POST("/login", s.handleLogin)
	api.POST("/logout", s.handleLogout)
	api.POST("/forgot-password", s.handleForgotPassword)
	api.POST("/reset-password/:token", s.handleResetPassword)
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.rdb == nil || s.rdb.Ping(ctx).Err() != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// allowedOrigins is the configured CORS allow-list with the client URL
// always included, since the frontend must be able to send credentials.
func allowedOrigins(cfg *config.Config) []string {
	origins := make([]string, 0, len(cfg.App.AllowedOrigins)+1)
	seen := map[string]bool{}
	for _, o := range append([]string{cfg.App.ClientURL}, cfg.App.AllowedOrigins...) {
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		origins = append(origins, o)
	}
	return origins
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if logger != nil {
			logger.Info("http request",
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.Int("status", c.Writer.Status()),
				slog.String("client_ip", c.ClientIP()),
				slog.String("latency", time.Since(start).String()),
			)
		}
	}
}
