package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Aashish23092/kyc-document-verification/dto"
	"github.com/Aashish23092/kyc-document-verification/utils"
)

const maxPromptText = 8000

const extractionPrompt = `You are an expert data extraction assistant. Extract structured fields from the following OCR text of an Indian personal document and return them as a JSON object.

Here are the rules:
1. The keys are: "full_name", "fathers_name", "date_of_birth", "complete_address", "phone_number", "email_address", "aadhaar_number", "pan_number", "employee_id", "account_number".
2. If a field cannot be found in the text, its value must be an empty string.
3. Copy values as printed. Do not reformat dates or numbers.
4. Your entire response must be ONLY the JSON object.

Here is the raw text:
"""
%s
"""`

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClient extracts fields from OCR text with a Gemini model.
type GeminiClient struct {
	client *genai.Client
	model  contentGenerator
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to init Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	// Ask Gemini to return JSON only
	model.GenerationConfig = genai.GenerationConfig{ResponseMIMEType: "application/json"}
	model.SetTemperature(0)

	return &GeminiClient{client: client, model: model}, nil
}

// Parse sends text to the model and decodes its JSON reply.
func (g *GeminiClient) Parse(ctx context.Context, text string) (dto.ExtractedFields, error) {
	if r := []rune(text); len(r) > maxPromptText {
		text = string(r[:maxPromptText])
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(fmt.Sprintf(extractionPrompt, text)))
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}

	reply, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	fields, err := utils.ParseLLMFields(reply)
	if err != nil {
		return nil, fmt.Errorf("gemini reply: %w", err)
	}
	log.Printf("Gemini extracted fields from %d characters of text", len(text))
	return fields, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return "", errors.New("empty response from Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	reply := strings.TrimSpace(sb.String())
	if reply == "" {
		return "", errors.New("no text in Gemini response")
	}
	return reply, nil
}

func (g *GeminiClient) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
