package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rutaviva/contentgate/pkg/domain/moderation"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuditRepo struct {
	records []moderation.AuditRecord
	err     error
}

func (s *stubAuditRepo) Save(ctx context.Context, record *moderation.AuditRecord) error {
	return s.err
}

func (s *stubAuditRepo) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]moderation.AuditRecord, error) {
	return s.records, s.err
}

func auditApp(handler Handler) *fiber.App {
	app := fiber.New()
	app.Get("/api/v1/moderation/audit/:batch_id", handler.Handle)
	return app
}

func TestListAuditHandler_Handle(t *testing.T) {
	logger := logrus.New()

	t.Run("returns records for a batch", func(t *testing.T) {
		batchID := uuid.New()
		repo := &stubAuditRepo{records: []moderation.AuditRecord{
			{ID: uuid.New(), BatchID: batchID, FileName: "beach.jpg", Engine: "local", IsApproved: true, RiskScore: 1.0},
			{ID: uuid.New(), BatchID: batchID, FileName: "statue.jpg", Engine: "local", RiskScore: 0.2, RejectionReason: "explicit content"},
		}}
		app := auditApp(NewListAuditHandler(logger, repo))

		req := httptest.NewRequest("GET", "/api/v1/moderation/audit/"+batchID.String(), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var payload struct {
			BatchID uuid.UUID                `json:"batch_id"`
			Records []moderation.AuditRecord `json:"records"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
		assert.Equal(t, batchID, payload.BatchID)
		require.Len(t, payload.Records, 2)
		assert.Equal(t, "beach.jpg", payload.Records[0].FileName)
		assert.Equal(t, "explicit content", payload.Records[1].RejectionReason)
	})

	t.Run("invalid batch id", func(t *testing.T) {
		app := auditApp(NewListAuditHandler(logger, &stubAuditRepo{}))

		req := httptest.NewRequest("GET", "/api/v1/moderation/audit/not-a-uuid", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("audit storage disabled", func(t *testing.T) {
		app := auditApp(NewListAuditHandler(logger, nil))

		req := httptest.NewRequest("GET", "/api/v1/moderation/audit/"+uuid.NewString(), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("repository failure", func(t *testing.T) {
		app := auditApp(NewListAuditHandler(logger, &stubAuditRepo{err: errors.New("db down")}))

		req := httptest.NewRequest("GET", "/api/v1/moderation/audit/"+uuid.NewString(), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}
