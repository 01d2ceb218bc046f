package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rutaviva/contentgate/pkg/domain/moderation"
	"github.com/sirupsen/logrus"
)

type listAuditHandler struct {
	logger *logrus.Logger
	repo   moderation.AuditRepository
}

// NewListAuditHandler serves verdict history for admin review. A nil
// repository means audit storage is disabled by configuration.
func NewListAuditHandler(logger *logrus.Logger, repo moderation.AuditRepository) Handler {
	return &listAuditHandler{
		logger: logger,
		repo:   repo,
	}
}

// Handle @Summary List audit records for a batch
// @Description Returns every persisted verdict of one analysis batch in submission order
// @Tags Moderation
// @Produce json
// @Success 200 {object} map[string]interface{} "Audit records"
// @Failure 400 {object} map[string]interface{} "Invalid batch id"
// @Failure 503 {object} map[string]interface{} "Audit storage disabled"
// @Router /api/v1/moderation/audit/{batch_id} [get]
func (h *listAuditHandler) Handle(c *fiber.Ctx) error {
	if h.repo == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "audit storage is not enabled"})
	}

	batchID, err := uuid.Parse(c.Params("batch_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid batch id"})
	}

	records, err := h.repo.ListByBatch(c.Context(), batchID)
	if err != nil {
		h.logger.WithError(err).Error("failed to list audit records")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list audit records"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"batch_id": batchID,
		"records":  records,
	})
}
