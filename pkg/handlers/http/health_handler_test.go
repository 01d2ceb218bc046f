package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rutaviva/contentgate/pkg/infra/classifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Handle(t *testing.T) {
	t.Run("reports classifier state when a handle is wired", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", NewHealthHandler(classifier.NewHandle()).Handle)

		resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
		assert.Equal(t, "healthy", payload["status"])
		assert.NotEmpty(t, payload["version"])

		state, ok := payload["classifier"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, false, state["loaded"])
		assert.Equal(t, false, state["loading"])
	})

	t.Run("omits classifier state without a handle", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", NewHealthHandler(nil).Handle)

		resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
		assert.Nil(t, payload["classifier"])
	})
}
