package scanning

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

const visionTimeout = 30 * time.Second

// Vision implements TextExtractor using the Google Cloud Vision API
type Vision struct {
	service *vision.Service
}

// NewVision creates a Vision client. Without an API key, application default credentials are used.
func NewVision(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Vision, error) {
	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating vision client: %w", err)
	}
	return &Vision{service: svc}, nil
}

// ExtractText runs text detection on a receipt image
func (v *Vision) ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, visionTimeout)
	defer cancel()

	pngData, err := prepareImageData(imageData, contentType)
	if err != nil {
		return "", err
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(pngData)},
			Features: []*vision.Feature{{Type: "TEXT_DETECTION"}},
		}},
	}
	resp, err := v.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("annotating image: %w", err)
	}
	if len(resp.Responses) == 0 {
		return "", errors.New("no response from vision")
	}

	result := resp.Responses[0]
	if result.Error != nil {
		return "", fmt.Errorf("vision error (code %d): %s", result.Error.Code, result.Error.Message)
	}
	if result.FullTextAnnotation != nil {
		return result.FullTextAnnotation.Text, nil
	}
	// The first annotation holds the whole text block
	if len(result.TextAnnotations) > 0 {
		return result.TextAnnotations[0].Description, nil
	}
	return "", nil
}

// Close is a no-op; the REST service holds no resources
func (v *Vision) Close() error {
	return nil
}
