package http

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/rutaviva/contentgate/pkg/app/analysis"
	"github.com/rutaviva/contentgate/pkg/infra/tracker"
	"github.com/sirupsen/logrus"
)

const (
	uploaderHeader = "X-Uploader-Id"

	// repeatOffenderRatio is the rejected/seen ratio at which the response
	// starts carrying the repeat-offender flag.
	repeatOffenderRatio = 0.5
)

type analyzeImagesHandler struct {
	logger         *logrus.Logger
	newCoordinator CoordinatorFactory
	tracker        tracker.Tracker
	scratchDir     string
}

func NewAnalyzeImagesHandler(
	logger *logrus.Logger,
	factory CoordinatorFactory,
	uploaderTracker tracker.Tracker,
	scratchDir string,
) Handler {
	return &analyzeImagesHandler{
		logger:         logger,
		newCoordinator: factory,
		tracker:        uploaderTracker,
		scratchDir:     scratchDir,
	}
}

// Handle @Summary Analyze a batch of gallery images
// @Description Runs every uploaded image through the active moderation engine and returns per-file verdicts
// @Tags Moderation
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} map[string]interface{} "Batch verdicts and counts"
// @Failure 400 {object} map[string]interface{} "Invalid batch"
// @Router /api/v1/moderation/images [post]
func (h *analyzeImagesHandler) Handle(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "multipart form is required"})
	}

	uploads := form.File["images"]
	if len(uploads) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "at least one image is required"})
	}

	// filenames key per-file state; a batch with duplicates cannot be tracked
	seen := make(map[string]struct{}, len(uploads))
	for _, upload := range uploads {
		if _, dup := seen[upload.Filename]; dup {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("duplicate filename in batch: %s", upload.Filename),
			})
		}
		seen[upload.Filename] = struct{}{}
	}

	coordinator := h.newCoordinator()

	batchDir := filepath.Join(h.scratchDir, coordinator.BatchID().String())
	if err := os.MkdirAll(batchDir, 0750); err != nil {
		h.logger.WithError(err).Error("failed to create scratch directory")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to stage uploads"})
	}

	files := make([]analysis.File, 0, len(uploads))
	for _, upload := range uploads {
		src, err := upload.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to open %s", upload.Filename),
			})
		}
		data, err := io.ReadAll(src)
		_ = src.Close()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to read %s", upload.Filename),
			})
		}

		path := filepath.Join(batchDir, filepath.Base(upload.Filename))
		if err := os.WriteFile(path, data, 0600); err != nil {
			h.logger.WithError(err).Error("failed to stage upload")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to stage uploads"})
		}

		files = append(files, analysis.File{Name: upload.Filename, Data: data, Path: path})
	}

	coordinator.RegisterBatch(files)
	if err := coordinator.AnalyzeAll(c.Context()); err != nil {
		h.logger.WithError(err).Error("batch analysis failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "batch analysis failed"})
	}

	counts := coordinator.Counts()

	response := fiber.Map{
		"batch_id": coordinator.BatchID(),
		"counts":   counts,
		"files":    coordinator.Files(),
		"eligible": counts.Approved > 0,
	}
	if counts.Approved == 0 {
		response["message"] = "no files eligible for upload"
	}
	if uploader := h.trackUploader(c, coordinator); uploader != nil {
		response["uploader"] = uploader
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// trackUploader records submission and rejection counters and returns the
// uploader's standing for the response; tracker failures are logged, never
// surfaced, and drop the standing from the response.
func (h *analyzeImagesHandler) trackUploader(c *fiber.Ctx, coordinator *analysis.Coordinator) fiber.Map {
	if h.tracker == nil {
		return nil
	}
	uploaderID := c.Get(uploaderHeader)
	if uploaderID == "" {
		return nil
	}

	for _, state := range coordinator.Files() {
		if err := h.tracker.RecordSubmission(c.Context(), uploaderID, tracker.DefaultExpiration); err != nil {
			h.logger.WithError(err).Debug("failed to record submission")
			return nil
		}
		if state.Status == analysis.StatusRejected {
			if err := h.tracker.RecordRejection(c.Context(), uploaderID, tracker.DefaultExpiration); err != nil {
				h.logger.WithError(err).Debug("failed to record rejection")
				return nil
			}
		}
	}

	rejected, err := h.tracker.RejectedCount(c.Context(), uploaderID)
	if err != nil {
		h.logger.WithError(err).Debug("failed to read rejected count")
		return nil
	}
	offender, err := h.tracker.IsRepeatOffender(c.Context(), uploaderID, repeatOffenderRatio)
	if err != nil {
		h.logger.WithError(err).Debug("failed to read offender standing")
		return nil
	}

	return fiber.Map{
		"rejected_count":  rejected,
		"repeat_offender": offender,
	}
}
