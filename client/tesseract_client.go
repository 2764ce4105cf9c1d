package client

import (
	"context"
	"fmt"
	"log"

	"github.com/otiai10/gosseract/v2"
)

type TesseractClient struct {
	dataPath string
	language string
}

func NewTesseractClient(dataPath, language string) *TesseractClient {
	if language == "" {
		language = "eng"
	}
	return &TesseractClient{
		dataPath: dataPath,
		language: language,
	}
}

func (tc *TesseractClient) Name() string {
	return "tesseract"
}

// RecognizeText runs Tesseract on an encoded PNG or JPEG image.
func (tc *TesseractClient) RecognizeText(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, conf, err := tc.recognize(image)
	if err != nil {
		return "", fmt.Errorf("OCR extraction failed: %w", err)
	}
	log.Printf("Tesseract extracted %d characters (mean word confidence %.1f)", len(text), conf)
	return text, nil
}

func (tc *TesseractClient) recognize(image []byte) (string, float64, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if tc.dataPath != "" {
		client.SetTessdataPrefix(tc.dataPath)
	}
	if err := client.SetLanguage(tc.language); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImageFromBytes(image); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text: %w", err)
	}

	// Get bounding boxes to calculate confidence
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return text, 0, nil
	}

	var totalConf float64
	for _, box := range boxes {
		totalConf += box.Confidence
	}
	return text, totalConf / float64(len(boxes)), nil
}

// Close performs cleanup
func (tc *TesseractClient) Close() {
	log.Println("Tesseract client closed")
}
