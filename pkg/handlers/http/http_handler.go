package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rutaviva/contentgate/pkg/app/analysis"
)

type Handler interface {
	Handle(c *fiber.Ctx) error
}

// CoordinatorFactory builds a fresh coordinator per request; one batch is
// one upload dialog session.
type CoordinatorFactory func() *analysis.Coordinator

// HandlerTransport groups the moderation handlers for server wiring.
type HandlerTransport struct {
	AnalyzeImagesHandler Handler
	AnalyzeTextHandler   Handler
	ListAuditHandler     Handler
	HealthHandler        Handler
}
