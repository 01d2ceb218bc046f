package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rutaviva/contentgate/pkg/infra/textmod"
	"github.com/sirupsen/logrus"
)

type analyzeTextRequest struct {
	Text string `json:"text"`
}

type analyzeTextHandler struct {
	logger *logrus.Logger
	client textmod.Client
}

func NewAnalyzeTextHandler(logger *logrus.Logger, client textmod.Client) Handler {
	return &analyzeTextHandler{
		logger: logger,
		client: client,
	}
}

// Handle @Summary Analyze an experience description
// @Description Submits free text to the moderation endpoint and returns the normalized verdict
// @Tags Moderation
// @Accept json
// @Produce json
// @Success 200 {object} textmod.Verdict "Verdict"
// @Failure 400 {object} map[string]interface{} "Invalid body"
// @Router /api/v1/moderation/text [post]
func (h *analyzeTextHandler) Handle(c *fiber.Ctx) error {
	var req analyzeTextRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	verdict := h.client.AnalyzeText(c.Context(), req.Text)
	return c.Status(fiber.StatusOK).JSON(verdict)
}
