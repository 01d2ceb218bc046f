package server

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rutaviva/contentgate/pkg/config"
	handlers "github.com/rutaviva/contentgate/pkg/handlers/http"
	"github.com/sirupsen/logrus"
)

type (
	ServerDI struct {
		Config           *config.Config
		Logger           *logrus.Logger
		HandlerTransport handlers.HandlerTransport
	}

	Server struct {
		config           *config.Config
		logger           *logrus.Logger
		router           *fiber.App
		handlerTransport handlers.HandlerTransport
	}
)

func NewServer(di ServerDI) *Server {
	router := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             32 * 1024 * 1024,
		ReadTimeout:           60 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})
	router.Use(recover.New())

	return &Server{
		config:           di.Config,
		logger:           di.Logger,
		router:           router,
		handlerTransport: di.HandlerTransport,
	}
}

func (s *Server) Run() error {
	s.setupRoutes()
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.WithField("addr", addr).Info("starting moderation server")
	return s.router.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.router.Shutdown()
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handlerTransport.HealthHandler.Handle)

	v1 := s.router.Group("/api/v1")
	{
		moderation := v1.Group("/moderation")
		{
			moderation.Post("/images", s.handlerTransport.AnalyzeImagesHandler.Handle)
			moderation.Post("/text", s.handlerTransport.AnalyzeTextHandler.Handle)
			moderation.Get("/audit/:batch_id", s.handlerTransport.ListAuditHandler.Handle)
		}
	}
}
