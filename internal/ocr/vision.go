package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/vision/v1"

	"github.com/agenthands/scrivener/internal/config"
	"github.com/agenthands/scrivener/internal/core/common"
	"github.com/agenthands/scrivener/internal/core/model"
)

const textDetection = "TEXT_DETECTION"

// VisionDetector calls Google Cloud Vision text detection.
type VisionDetector struct {
	svc *vision.Service
}

// NewVisionDetector authenticates with the API key, then the credentials
// file, and otherwise with application default credentials. Extra options are
// applied last.
func NewVisionDetector(ctx context.Context, cfg config.OCRConfig, extra ...option.ClientOption) (*VisionDetector, error) {
	var opts []option.ClientOption
	switch {
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	opts = append(opts, extra...)

	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionDetector{svc: svc}, nil
}

func (d *VisionDetector) DetectText(ctx context.Context, image []byte) (model.OCRResult, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
				Features: []*vision.Feature{{Type: textDetection}},
			},
		},
	}

	resp, err := d.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return model.OCRResult{}, &common.ProviderError{Provider: "vision", Op: "text detection", Err: err}
	}

	result := model.OCRResult{Annotations: []model.Annotation{}}
	if len(resp.Responses) == 0 {
		return result, nil
	}
	r := resp.Responses[0]
	if r.Error != nil && r.Error.Code != 0 {
		return model.OCRResult{}, &common.ProviderError{
			Provider: "vision",
			Op:       "text detection",
			Err:      fmt.Errorf("%s (code %d)", strings.TrimSpace(r.Error.Message), r.Error.Code),
		}
	}

	if r.FullTextAnnotation != nil {
		result.FullText = r.FullTextAnnotation.Text
	}
	for _, a := range r.TextAnnotations {
		result.Annotations = append(result.Annotations, model.Annotation{
			Text:     a.Description,
			Vertices: vertices(a.BoundingPoly),
		})
	}
	return result, nil
}

func vertices(poly *vision.BoundingPoly) []model.Vertex {
	out := []model.Vertex{}
	if poly == nil {
		return out
	}
	for _, v := range poly.Vertices {
		if v == nil {
			continue
		}
		out = append(out, model.Vertex{X: v.X, Y: v.Y})
	}
	return out
}
