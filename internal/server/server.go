// Package server assembles the HTTP engine.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/examhub-dev/examhub/biz/task/handler"
	"github.com/examhub-dev/examhub/biz/task/service"
	"github.com/examhub-dev/examhub/config"
	"github.com/examhub-dev/examhub/core/auth/middleware"
	"github.com/examhub-dev/examhub/data"
	"github.com/examhub-dev/examhub/logging/logger"
	"github.com/examhub-dev/examhub/net/resp"
	"github.com/examhub-dev/examhub/security/jwt"
	"github.com/examhub-dev/examhub/validation/validator"

	"github.com/gin-gonic/gin"
)

// New builds the HTTP server from configuration.
func New(cfg *config.Config, d *data.Data, log *logger.Logger) (*http.Server, error) {
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := validator.RegisterCustomRules(); err != nil {
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(traceMiddleware())
	engine.Use(loggingMiddleware(log))

	engine.GET("/health", func(c *gin.Context) {
		resp.Success(c.Writer, map[string]string{"status": "ok"})
	})
	engine.NoRoute(func(c *gin.Context) {
		resp.Fail(c.Writer, resp.NotFound("resource not found"))
	})
	engine.NoMethod(func(c *gin.Context) {
		resp.Fail(c.Writer, resp.NotAllowed("method not allowed"))
	})

	svc := service.New(d.TaskRepo, d.UserRepo, d.Redis(), log)
	h := handler.New(svc, log)

	tm := jwt.NewTokenManager(cfg.Auth.JWTSecret)
	v1 := engine.Group("/api/v1", middleware.Auth(tm))
	h.RegisterRoutes(v1)

	return &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:        engine,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}, nil
}
