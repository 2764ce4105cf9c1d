package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const defaultPaddleURL = "http://paddleocr:8866/predict/ocr_system"

// PaddleClient calls a PaddleOCR serving endpoint over HTTP.
type PaddleClient struct {
	apiURL     string
	httpClient *http.Client
}

// NewPaddleClient creates a client for apiURL, falling back to the
// docker-compose service address when it is empty.
func NewPaddleClient(apiURL string) *PaddleClient {
	if apiURL == "" {
		apiURL = defaultPaddleURL
	}
	log.Printf("PaddleOCR initialized with endpoint %s", apiURL)

	return &PaddleClient{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *PaddleClient) Name() string {
	return "paddle"
}

type paddleResponse struct {
	Results [][]struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"results"`
}

// RecognizeText sends the base64 encoded image to PaddleOCR and joins the
// recognized lines, dropping duplicates.
func (p *PaddleClient) RecognizeText(ctx context.Context, image []byte) (string, error) {
	payload := map[string]interface{}{
		"images": []string{base64.StdEncoding.EncodeToString(image)},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to build PaddleOCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call PaddleOCR API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("PaddleOCR API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result paddleResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode PaddleOCR response: %w", err)
	}

	var lines []string
	for _, page := range result.Results {
		for _, line := range page {
			lines = append(lines, line.Text)
		}
	}

	text := dedupeLines(lines)
	if text == "" {
		return "", fmt.Errorf("PaddleOCR extracted no text from image")
	}

	log.Printf("PaddleOCR HTTP API extracted %d characters", len(text))
	return text, nil
}

// dedupeLines joins lines, skipping blanks and case-insensitive repeats.
func dedupeLines(lines []string) string {
	seen := make(map[string]bool)
	var result []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		normalized := strings.ToLower(line)
		if !seen[normalized] {
			seen[normalized] = true
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}
