package ollama

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
	"time"

	"chart-coach-be/internal/entity"
	"chart-coach-be/pkg/vision"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a local Ollama with a vision model pulled, e.g.
// OLLAMA_TEST_URL=http://localhost:11434 OLLAMA_TEST_MODEL=llava go test ./pkg/vision/ollama/
func TestOllamaLiveAnalysis(t *testing.T) {
	baseURL := os.Getenv("OLLAMA_TEST_URL")
	if baseURL == "" {
		t.Skip("Skipping integration test: OLLAMA_TEST_URL not set")
	}
	model := os.Getenv("OLLAMA_TEST_MODEL")
	if model == "" {
		model = "llava"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	start := time.Now()
	text, err := NewOllamaProvider(baseURL, model).Analyze(ctx, risingChart(t), entity.ResponseModeTLDR)
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	t.Logf("%s answered in %s: %s", model, time.Since(start), text)
}

// risingChart draws a crude uptrend line so the model has something to read.
func risingChart(t *testing.T) vision.Image {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			img.Set(x, y, color.White)
		}
		img.Set(x, 63-x, color.Black)
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return vision.Image{Data: buf.Bytes(), MimeType: "image/png"}
}
