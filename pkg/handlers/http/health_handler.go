package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rutaviva/contentgate/pkg/infra/classifier"
	"github.com/rutaviva/contentgate/pkg/version"
)

type healthHandler struct {
	handle *classifier.Handle
}

// NewHealthHandler reports service liveness plus the classifier lifecycle
// state, so the UI can render its "filter unavailable" badge. A nil handle
// means no local classifier is wired.
func NewHealthHandler(handle *classifier.Handle) Handler {
	return &healthHandler{handle: handle}
}

func (h *healthHandler) Handle(c *fiber.Ctx) error {
	response := fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Format(time.RFC3339),
		"version": version.GetInfo(),
	}
	if h.handle != nil {
		response["classifier"] = h.handle.State()
	}
	return c.Status(fiber.StatusOK).JSON(response)
}
