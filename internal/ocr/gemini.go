package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiPrompt = `Extract every line of text from this receipt image.
Respond with a JSON array only, no prose. Each element:
{"text": "<line text>", "confidence": <0-100>, "box": [x, y, width, height]}
Preserve the top-to-bottom reading order of the receipt.`

// GeminiConfig holds Gemini engine settings.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Gemini is an Engine backed by the Gemini vision API. It is an
// alternative to the local Tesseract engine for deployments without a
// Tesseract installation.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a Gemini-backed engine.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	m := client.GenerativeModel(model)
	m.ResponseMIMEType = "application/json"

	return &Gemini{client: client, model: m}, nil
}

// Recognize sends the image to Gemini and parses the structured reply.
// The language hint is folded into the prompt; Gemini handles mixed
// languages without explicit configuration.
func (g *Gemini) Recognize(ctx context.Context, png []byte, languages string) (*Result, error) {
	prompt := geminiPrompt
	if languages != "" {
		prompt += "\nThe receipt language is one of: " + languages + "."
	}

	resp, err := g.model.GenerateContent(ctx,
		genai.ImageData("png", png),
		genai.Text(prompt),
	)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return parseGeminiRegions(sb.String())
}

// Close closes the Gemini client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

type geminiRegion struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Box        []int   `json:"box"`
}

func parseGeminiRegions(raw string) (*Result, error) {
	text := strings.TrimSpace(raw)
	// The model occasionally wraps the payload in a markdown fence even
	// when asked for bare JSON.
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var parsed []geminiRegion
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("parsing gemini response: %w", err)
	}

	res := &Result{Regions: make([]Region, 0, len(parsed))}
	for _, p := range parsed {
		reg := Region{Text: p.Text, Confidence: p.Confidence}
		if len(p.Box) == 4 {
			reg.X, reg.Y, reg.Width, reg.Height = p.Box[0], p.Box[1], p.Box[2], p.Box[3]
		}
		res.Regions = append(res.Regions, reg)
	}
	return res, nil
}
