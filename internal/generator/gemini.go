package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Gemini generates content through the Gemini API, trying each model in
// order and falling back on quota or availability errors.
type Gemini struct {
	client *genai.Client
	models []string
}

func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &Gemini{
		client: client,
		models: []string{"gemini-2.5-flash", "gemini-2.5-flash-lite"},
	}, nil
}

type geminiPayload struct {
	Content  string   `json:"content"`
	Hashtags []string `json:"hashtags"`
}

func (g *Gemini) Generate(ctx context.Context, req Request) (Result, error) {
	prompt := buildPrompt(req)

	var lastErr error
	for _, model := range g.models {
		result, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err != nil {
			errStr := strings.ToLower(err.Error())
			if strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit") ||
				strings.Contains(errStr, "exhausted") || strings.Contains(errStr, "not found") {
				lastErr = err
				continue
			}
			return Result{}, err
		}
		if result == nil || len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
			lastErr = fmt.Errorf("model %s returned no candidates", model)
			continue
		}
		return parseGeminiText(result.Candidates[0].Content.Parts[0].Text, req)
	}
	return Result{}, fmt.Errorf("all gemini models failed: %w", lastErr)
}

func buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s post about %q.", req.Platform, req.Topic)
	if req.PostType != "" {
		fmt.Fprintf(&b, " The post is a %s post.", req.PostType)
	}
	if req.Tone != "" {
		fmt.Fprintf(&b, " Use a %s tone.", req.Tone)
	}
	switch req.Length {
	case "short":
		b.WriteString(" Keep it to one or two sentences.")
	case "long":
		b.WriteString(" Write several paragraphs with detail.")
	}
	if req.Instructions != "" {
		fmt.Fprintf(&b, " Additional instructions: %s", req.Instructions)
	}
	if req.IncludeHashtags {
		b.WriteString(" Include up to 8 relevant hashtags.")
	}
	if req.IncludeEmojis {
		b.WriteString(" Use fitting emojis.")
	} else {
		b.WriteString(" Do not use emojis.")
	}
	b.WriteString(` Respond with JSON only: {"content": "...", "hashtags": ["#..."]}`)
	return b.String()
}

// parseGeminiText accepts either the requested JSON shape or, when the
// model ignores it, the raw text as content.
func parseGeminiText(text string, req Request) (Result, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	res := Result{
		GeneratedAt:  time.Now().UTC(),
		Confidence:   0.9,
		Alternatives: []string{},
		Hashtags:     []string{},
	}

	var payload geminiPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err == nil && payload.Content != "" {
		res.Content = payload.Content
		if req.IncludeHashtags && payload.Hashtags != nil {
			res.Hashtags = payload.Hashtags
		}
		return res, nil
	}
	res.Content = cleaned
	return res, nil
}
