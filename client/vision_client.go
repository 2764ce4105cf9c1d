package client

import (
	"context"
	"errors"
	"fmt"
	"log"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// VisionClient runs Google Cloud Vision document text detection.
type VisionClient struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionClient connects with the credentials file when one is given, or
// with application default credentials otherwise.
func NewVisionClient(ctx context.Context, credentialsFile string) (*VisionClient, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to init OCR client: %w", err)
	}
	return &VisionClient{client: client}, nil
}

func (v *VisionClient) Name() string {
	return "vision"
}

func (v *VisionClient) RecognizeText(ctx context.Context, image []byte) (string, error) {
	resp, err := v.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("vision API failed to detect text: %w", err)
	}
	return documentText(resp)
}

func documentText(resp *visionpb.BatchAnnotateImagesResponse) (string, error) {
	if len(resp.GetResponses()) == 0 {
		return "", errors.New("empty response from Vision API")
	}
	r := resp.GetResponses()[0]
	if r.GetError() != nil {
		return "", fmt.Errorf("vision API error: %s", r.GetError().GetMessage())
	}

	text := r.GetFullTextAnnotation().GetText()
	if text == "" && len(r.GetTextAnnotations()) > 0 {
		text = r.GetTextAnnotations()[0].GetDescription()
	}
	log.Printf("Vision API extracted %d characters", len(text))
	return text, nil
}

func (v *VisionClient) Close() error {
	return v.client.Close()
}
