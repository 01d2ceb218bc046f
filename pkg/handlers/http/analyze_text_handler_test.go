package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rutaviva/contentgate/pkg/infra/textmod"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTextClient struct {
	verdict textmod.Verdict
	gotText string
}

func (s *stubTextClient) AnalyzeText(ctx context.Context, text string) textmod.Verdict {
	s.gotText = text
	return s.verdict
}

func textApp(handler Handler) *fiber.App {
	app := fiber.New()
	app.Post("/api/v1/moderation/text", handler.Handle)
	return app
}

func TestAnalyzeTextHandler_Handle(t *testing.T) {
	logger := logrus.New()

	t.Run("returns the client verdict", func(t *testing.T) {
		client := &stubTextClient{verdict: textmod.Verdict{
			IsApproved: false,
			Message:    "description contains inappropriate content",
			Details:    map[string]float64{"hate": 0.9},
		}}
		app := textApp(NewAnalyzeTextHandler(logger, client))

		body, err := json.Marshal(map[string]string{"text": "some description"})
		require.NoError(t, err)
		req := httptest.NewRequest("POST", "/api/v1/moderation/text", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "some description", client.gotText)

		var verdict textmod.Verdict
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&verdict))
		assert.False(t, verdict.IsApproved)
		assert.Equal(t, "description contains inappropriate content", verdict.Message)
		assert.Equal(t, 0.9, verdict.Details["hate"])
	})

	t.Run("invalid body", func(t *testing.T) {
		app := textApp(NewAnalyzeTextHandler(logger, &stubTextClient{}))

		req := httptest.NewRequest("POST", "/api/v1/moderation/text", bytes.NewReader([]byte("not json")))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
