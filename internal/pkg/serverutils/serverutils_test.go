package serverutils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"chart-coach-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperror.Validation("bad"), 400},
		{"unknown scenario", apperror.UnknownScenario("x"), 400},
		{"not found", apperror.NotFound("session", "x"), 404},
		{"busy", apperror.Busy("x"), 409},
		{"storage", apperror.Storage("op", errors.New("down")), 500},
		{"analysis", apperror.Analysis(errors.New("down")), 500},
		{"upload", apperror.Upload(errors.New("down")), 500},
		{"plain", errors.New("boom"), 500},
		{"fiber", fiber.ErrMethodNotAllowed, 405},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/missing", func(ctx *fiber.Ctx) error {
		return apperror.NotFound("session", "42")
	})
	app.Get("/ok", func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse())
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	var body ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "session 42 not found", body.Error)

	resp, err = app.Test(httptest.NewRequest("GET", "/ok", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

type sampleRequest struct {
	Title string `json:"title" validate:"required,max=5"`
	Mode  string `json:"mode" validate:"omitempty,oneof=tldr full"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Title: "abc", Mode: "full"}))

	err := ValidateRequest(sampleRequest{Mode: "loud"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Contains(t, err.Error(), "title is required")
	assert.Contains(t, err.Error(), "mode must be one of [tldr full]")

	err = ValidateRequest(sampleRequest{Title: "too long"})
	assert.Contains(t, err.Error(), "title must be at most 5 characters")
}
