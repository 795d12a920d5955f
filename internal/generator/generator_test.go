package generator

import (
	"context"
	"strings"
	"testing"

	"github.com/aivahq/aiva-backend/internal/models"
)

func TestMockGenerateUsesTopic(t *testing.T) {
	res, err := Mock{}.Generate(context.Background(), Request{
		Platform:        models.PlatformTwitter,
		Topic:           "coffee roasting",
		IncludeHashtags: true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(res.Content, "coffee roasting") {
		t.Fatalf("content should mention topic: %q", res.Content)
	}
	if res.Confidence != 0.9 {
		t.Fatalf("expected confidence 0.9, got %v", res.Confidence)
	}
	if len(res.Alternatives) != 2 {
		t.Fatalf("expected 2 alternatives, got %d", len(res.Alternatives))
	}
}

func TestMockGenerateHashtags(t *testing.T) {
	res, err := Mock{}.Generate(context.Background(), Request{
		Platform:        models.PlatformInstagram,
		Topic:           "Coffee Roasting",
		IncludeHashtags: true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Hashtags) == 0 || len(res.Hashtags) > 8 {
		t.Fatalf("expected 1..8 hashtags, got %d", len(res.Hashtags))
	}
	if res.Hashtags[0] != "#coffeeroasting" {
		t.Fatalf("expected topic hashtag first, got %q", res.Hashtags[0])
	}
	for _, tag := range res.Hashtags {
		if !strings.HasPrefix(tag, "#") {
			t.Fatalf("hashtag missing # prefix: %q", tag)
		}
	}
}

func TestMockGenerateDefaults(t *testing.T) {
	// Unknown platform falls back to facebook templates; empty topic is filled.
	res, err := Mock{}.Generate(context.Background(), Request{Platform: models.SocialPlatform("myspace")})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(res.Content, "your business") {
		t.Fatalf("expected default topic, got %q", res.Content)
	}
	if len(res.Hashtags) != 0 {
		t.Fatalf("hashtags should be empty when not requested")
	}
}

func TestMockGenerateIsDeterministic(t *testing.T) {
	req := Request{CompanyID: "c1", Platform: models.PlatformLinkedIn, Topic: "ai tooling"}
	first, err := Mock{}.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := Mock{}.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if first.Content != second.Content {
		t.Fatalf("same request picked different variants: %q vs %q", first.Content, second.Content)
	}
	if len(first.Alternatives) != len(second.Alternatives) {
		t.Fatalf("alternatives differ between runs")
	}
	for i := range first.Alternatives {
		if first.Alternatives[i] != second.Alternatives[i] {
			t.Fatalf("alternative %d differs between runs", i)
		}
	}
}

func TestMockGenerateEmojiToggle(t *testing.T) {
	req := Request{Platform: models.PlatformInstagram, Topic: "latte art"}
	plain, err := Mock{}.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, r := range plain.Content {
		if r >= 0x1F000 || r == '✨' {
			t.Fatalf("emoji %q in content despite includeEmojis=false: %q", r, plain.Content)
		}
	}
	req.IncludeEmojis = true
	emoji, err := Mock{}.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if emoji.Content == plain.Content {
		t.Fatalf("includeEmojis should change the content: %q", emoji.Content)
	}
}

func TestMockGenerateLength(t *testing.T) {
	req := Request{Platform: models.PlatformInstagram, Topic: "latte art", Length: "short", IncludeEmojis: true}
	short, err := Mock{}.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if strings.Contains(short.Content, "\n") {
		t.Fatalf("short content should be a single line: %q", short.Content)
	}
	req.Length = "long"
	long, err := Mock{}.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(long.Content, "Follow us for weekly updates") {
		t.Fatalf("long content should carry the follow-up line: %q", long.Content)
	}
}

func TestParseGeminiTextJSON(t *testing.T) {
	raw := "```json\n{\"content\": \"hello world\", \"hashtags\": [\"#go\"]}\n```"
	res, err := parseGeminiText(raw, Request{IncludeHashtags: true})
	if err != nil {
		t.Fatalf("parseGeminiText: %v", err)
	}
	if res.Content != "hello world" {
		t.Fatalf("expected parsed content, got %q", res.Content)
	}
	if len(res.Hashtags) != 1 || res.Hashtags[0] != "#go" {
		t.Fatalf("expected parsed hashtags, got %v", res.Hashtags)
	}
}

func TestBuildPromptCarriesRequestFields(t *testing.T) {
	p := buildPrompt(Request{
		Platform:        models.PlatformTwitter,
		PostType:        "promotion",
		Topic:           "summer sale",
		Tone:            "casual",
		Length:          "short",
		IncludeHashtags: true,
		Instructions:    "mention the discount code",
	})
	for _, want := range []string{"promotion", "casual", "one or two sentences", "mention the discount code", "hashtags", "Do not use emojis"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q: %q", want, p)
		}
	}
}

func TestParseGeminiTextPlain(t *testing.T) {
	res, err := parseGeminiText("just some text", Request{})
	if err != nil {
		t.Fatalf("parseGeminiText: %v", err)
	}
	if res.Content != "just some text" {
		t.Fatalf("expected raw text fallback, got %q", res.Content)
	}
}
