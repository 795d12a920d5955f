package storage

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestValidateImage(t *testing.T) {
	if err := ValidateImage("image/png", 1024); err != nil {
		t.Fatalf("png should validate: %v", err)
	}
	if err := ValidateImage("application/pdf", 1024); err == nil {
		t.Fatalf("pdf should be rejected")
	}
	if err := ValidateImage("image/jpeg", MaxImageSize+1); err == nil {
		t.Fatalf("oversize image should be rejected")
	}
	if err := ValidateImage("image/jpeg", MaxImageSize); err != nil {
		t.Fatalf("image at exactly the limit should validate: %v", err)
	}
}

func TestNewUploaderRequiresConfig(t *testing.T) {
	_, err := NewUploader(Config{Region: "us-east-1", AccessKey: "k", SecretKey: "s", PublicBaseURL: "http://x"})
	if err == nil || !strings.Contains(err.Error(), "bucket") {
		t.Fatalf("expected bucket error, got %v", err)
	}
	_, err = NewUploader(Config{Bucket: "b", Region: "us-east-1", PublicBaseURL: "http://x"})
	if err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestPresignGetSignsURL(t *testing.T) {
	u, err := NewUploader(Config{
		Endpoint: "http://localhost:9000", UsePathStyle: true,
		Bucket: "b", Region: "us-east-1", AccessKey: "k", SecretKey: "s",
		PublicBaseURL: "https://cdn.example.com",
	})
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}

	url, err := u.PresignGet(context.Background(), "post-images/2026/01/01/x.png", 10*time.Minute)
	if err != nil {
		t.Fatalf("PresignGet: %v", err)
	}
	if !strings.Contains(url, "post-images/2026/01/01/x.png") {
		t.Fatalf("signed url should reference the key: %q", url)
	}
	if !strings.Contains(url, "X-Amz-Signature=") {
		t.Fatalf("url is not signed: %q", url)
	}
	if !strings.Contains(url, "X-Amz-Expires=600") {
		t.Fatalf("expected 600s expiry in url: %q", url)
	}

	if _, err := u.PresignGet(context.Background(), "", 0); err == nil {
		t.Fatalf("empty key should be rejected")
	}
}

func TestGenerateKeyShape(t *testing.T) {
	u, err := NewUploader(Config{
		Bucket: "b", Region: "us-east-1", AccessKey: "k", SecretKey: "s",
		PublicBaseURL: "https://cdn.example.com",
	})
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}
	key := u.generateKey("image/png")
	if !strings.HasPrefix(key, "post-images/") {
		t.Fatalf("expected default prefix, got %q", key)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("expected .png extension, got %q", key)
	}
	// prefix/yyyy/mm/dd/uuid.ext
	if parts := strings.Split(key, "/"); len(parts) != 5 {
		t.Fatalf("expected date-partitioned key, got %q", key)
	}
}
