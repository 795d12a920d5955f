// Package generator produces platform-shaped social post content.
package generator

import (
	"context"
	"time"

	"github.com/aivahq/aiva-backend/internal/models"
)

type Request struct {
	CompanyID       string                `json:"companyId"`
	Platform        models.SocialPlatform `json:"platform"`
	PostType        string                `json:"postType,omitempty"`
	Topic           string                `json:"topic"`
	Tone            string                `json:"tone,omitempty"`
	Length          string                `json:"length,omitempty"`
	IncludeHashtags bool                  `json:"includeHashtags"`
	IncludeEmojis   bool                  `json:"includeEmojis"`
	Instructions    string                `json:"instructions,omitempty"`
}

type Result struct {
	Content      string    `json:"content"`
	Hashtags     []string  `json:"hashtags"`
	GeneratedAt  time.Time `json:"generatedAt"`
	Confidence   float64   `json:"confidence"`
	Alternatives []string  `json:"alternatives"`
}

type Generator interface {
	Generate(ctx context.Context, req Request) (Result, error)
}
