// Package vision is the external chart-analysis capability: given an image and
// a mode, return text or fail.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"chart-coach-be/internal/entity"

	"github.com/gabriel-vasile/mimetype"
)

type Image struct {
	Data     []byte
	MimeType string
}

// Analyzer is implemented by every vision backend.
type Analyzer interface {
	Analyze(ctx context.Context, img Image, mode entity.ResponseMode) (string, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context, img Image, mode entity.ResponseMode) (string, error)

func (f AnalyzerFunc) Analyze(ctx context.Context, img Image, mode entity.ResponseMode) (string, error) {
	return f(ctx, img, mode)
}

// DetectImage sniffs data and rejects anything that is not an image.
func DetectImage(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, fmt.Errorf("image is empty")
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Image{}, fmt.Errorf("content type %s is not an image", mt.String())
	}
	return Image{Data: data, MimeType: mt.String()}, nil
}

// DecodeDataURL accepts "data:<mime>;base64,<payload>" or bare base64.
// The declared mime type is ignored in favour of the sniffed one.
func DecodeDataURL(s string) (Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Image{}, fmt.Errorf("image data is empty")
	}

	payload := s
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return Image{}, fmt.Errorf("malformed data URL")
		}
		if !strings.HasSuffix(s[:comma], ";base64") {
			return Image{}, fmt.Errorf("data URL must be base64 encoded")
		}
		payload = s[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some clients strip padding.
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return Image{}, fmt.Errorf("invalid base64 image data: %w", err)
		}
	}
	return DetectImage(data)
}
