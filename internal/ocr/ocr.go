package ocr

import (
	"context"

	"github.com/agenthands/scrivener/internal/core/model"
)

// Detector extracts text from an image. The first annotation of the result is
// the full-page text; the rest are individual fragments in reading order.
type Detector interface {
	DetectText(ctx context.Context, image []byte) (model.OCRResult, error)
}
