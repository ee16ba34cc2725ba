package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/at-my-table/backend/config"
	"github.com/at-my-table/backend/internal/api"
	"github.com/at-my-table/backend/internal/middleware"
	"github.com/at-my-table/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router   *gin.Engine
	http     *http.Server
	renderer *service.ChromeRenderer
}

// New creates a new server instance wired to its collaborators
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, mirror service.ImageMirror) *Server {
	router := gin.Default()
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	renderer := service.NewChromeRenderer(cfg)
	api.SetupAPI(router, db, redisClient, renderer, mirror, cfg)

	return &Server{
		router:   router,
		renderer: renderer,
		http: &http.Server{
			Addr:    fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
			Handler: router,
		},
	}
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	log.Printf("Server running on http://%s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and the browser allocator
func (s *Server) Shutdown(ctx context.Context) error {
	s.renderer.Close()
	return s.http.Shutdown(ctx)
}
