package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"skill-hire/internal/config"
	"skill-hire/internal/domain/application"

	"github.com/google/uuid"
)

func TestNewMinIO_RequiresEndpoint(t *testing.T) {
	_, err := NewMinIO(context.Background(), config.StorageConfig{ResumeBucket: "resumes"}, nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCheckObjectName(t *testing.T) {
	for _, bad := range []string{"", " ", "../etc/passwd", "/abs", "a/../b"} {
		if err := checkObjectName(bad); !errors.Is(err, ErrInvalidObjectName) {
			t.Fatalf("%q: expected ErrInvalidObjectName, got %v", bad, err)
		}
	}
	if err := checkObjectName("u/123-cv.pdf"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestCheckObjectName_AcceptsResumeKeys(t *testing.T) {
	uid := uuid.New()
	at := time.UnixMilli(1700000000000)
	for _, name := range []string{"cv.pdf", "John..Doe.pdf", "../../cv.docx", "my cv...v2.doc"} {
		key := application.ResumeObjectPath(uid, at, name)
		if err := checkObjectName(key); err != nil {
			t.Fatalf("%q -> %q rejected: %v", name, key, err)
		}
	}
}
