package generator

import (
	"context"
	"hash/fnv"
	"strings"
	"time"

	"github.com/aivahq/aiva-backend/internal/models"
)

// Mock generates templated content per platform. It is the default
// backend when no Gemini API key is configured.
type Mock struct{}

var mockTemplates = map[models.SocialPlatform][]string{
	models.PlatformFacebook: {
		"🚀 Exciting news about %s! Here's what you need to know...",
		"💡 Did you know that %s can transform your business? Let's explore how!",
		"🌟 Today we're diving deep into %s. Here are our top insights:",
	},
	models.PlatformInstagram: {
		"✨ %s vibes ✨\n\nSwipe to see our latest insights! 👉",
		"🔥 Hot take on %s! 🔥\n\nWhat do you think? Drop your thoughts below! 👇",
		"📸 Behind the scenes: %s\n\nStay tuned for more! 💫",
	},
	models.PlatformTwitter: {
		"🧵 Thread: Everything you need to know about %s 👇",
		"Hot take: %s is going to change everything. Here's why... 🔥",
		"Quick question: What's your experience with %s? 🤔",
	},
	models.PlatformLinkedIn: {
		"Professional insight: %s is reshaping our industry. Here's my analysis:",
		"Thought leadership: The future of %s and what it means for professionals",
		"Industry update: Key trends in %s that every professional should know",
	},
	models.PlatformTikTok: {
		"POV: You're learning about %s 👀",
		"This %s hack will blow your mind! 🤯 #lifehack",
		"Day in the life working with %s ✨ #dayinthelife",
	},
}

var mockPlatformHashtags = map[models.SocialPlatform][]string{
	models.PlatformInstagram: {"instagood", "photooftheday", "follow", "like4like"},
	models.PlatformTikTok:    {"fyp", "viral", "trending", "foryou"},
	models.PlatformTwitter:   {"thread", "discussion", "thoughts"},
	models.PlatformLinkedIn:  {"professional", "networking", "career", "industry"},
	models.PlatformFacebook:  {"community", "share", "discuss"},
}

func (Mock) Generate(_ context.Context, req Request) (Result, error) {
	topic := req.Topic
	if topic == "" {
		topic = "your business"
	}

	templates, ok := mockTemplates[req.Platform]
	if !ok {
		templates = mockTemplates[models.PlatformFacebook]
	}
	// Variant selection is a stable function of the request, so the
	// same request always regenerates the same draft.
	pick := variantIndex(req, len(templates))
	content := renderVariant(templates[pick], topic, req)

	alternatives := []string{}
	for i, tpl := range templates {
		if i != pick {
			alternatives = append(alternatives, renderVariant(tpl, topic, req))
		}
	}

	res := Result{
		Content:      content,
		GeneratedAt:  time.Now().UTC(),
		Confidence:   0.9,
		Alternatives: alternatives,
		Hashtags:     []string{},
	}
	if req.IncludeHashtags {
		res.Hashtags = mockHashtags(req.Platform, req.Topic)
	}
	return res, nil
}

func variantIndex(req Request, n int) int {
	h := fnv.New32a()
	h.Write([]byte(req.CompanyID))
	h.Write([]byte(req.Platform))
	h.Write([]byte(req.PostType))
	h.Write([]byte(req.Topic))
	return int(h.Sum32() % uint32(n))
}

func renderVariant(tpl, topic string, req Request) string {
	content := strings.ReplaceAll(tpl, "%s", topic)
	switch req.Length {
	case "short":
		if i := strings.IndexByte(content, '\n'); i >= 0 {
			content = content[:i]
		}
	case "long":
		content += "\n\nWant more on " + topic + "? Follow us for weekly updates."
	}
	if !req.IncludeEmojis {
		content = stripEmojis(content)
	}
	return content
}

// stripEmojis removes emoji and variation selectors, then tidies the
// whitespace they leave behind.
func stripEmojis(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 0x1F000 && r <= 0x1FAFF,
			r >= 0x2600 && r <= 0x27BF,
			r >= 0x2B00 && r <= 0x2BFF,
			r == 0xFE0F || r == 0x200D:
			continue
		}
		b.WriteRune(r)
	}
	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// mockHashtags combines the topic with generic and platform tags, capped at 8.
func mockHashtags(platform models.SocialPlatform, topic string) []string {
	if topic == "" {
		topic = "business"
	}
	tags := []string{
		strings.ToLower(strings.ReplaceAll(topic, " ", "")),
		"business",
		"growth",
		"innovation",
	}
	tags = append(tags, mockPlatformHashtags[platform]...)
	if len(tags) > 8 {
		tags = tags[:8]
	}
	out := make([]string, len(tags))
	for i, tag := range tags {
		if strings.HasPrefix(tag, "#") {
			out[i] = tag
		} else {
			out[i] = "#" + tag
		}
	}
	return out
}
