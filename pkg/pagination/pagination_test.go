package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default %d, got %d", DefaultLimit, got)
	}
	if got := NormalizeLimit(-3); got != DefaultLimit {
		t.Fatalf("expected default for negative, got %d", got)
	}
	if got := NormalizeLimit(1000); got != MaxLimit {
		t.Fatalf("expected cap %d, got %d", MaxLimit, got)
	}
	if got := NormalizeLimit(40); got != 40 {
		t.Fatalf("expected passthrough 40, got %d", got)
	}
	if got := LimitWithBuffer(40); got != 41 {
		t.Fatalf("expected buffer 41, got %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{
		CreatedAt: time.Date(2025, 6, 1, 12, 30, 45, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	encoded := EncodeCursor(original)
	parsed, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("ParseCursor failed: %v", err)
	}
	if parsed == nil {
		t.Fatal("expected cursor, got nil")
	}
	if !parsed.CreatedAt.Equal(original.CreatedAt) {
		t.Fatalf("timestamp mismatch: %v vs %v", parsed.CreatedAt, original.CreatedAt)
	}
	if parsed.ID != original.ID {
		t.Fatalf("id mismatch: %s vs %s", parsed.ID, original.ID)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if cursor, err := ParseCursor(""); err != nil || cursor != nil {
		t.Fatalf("empty cursor should be nil, got %v %v", cursor, err)
	}
	if _, err := ParseCursor("not-base64!!"); err == nil {
		t.Fatal("expected decode failure")
	}
	if _, err := ParseCursor("bm90LWEtY3Vyc29y"); err == nil {
		t.Fatal("expected format failure")
	}
}

func TestTrim(t *testing.T) {
	rows := []int{1, 2, 3, 4}
	page, hasMore := Trim(rows, 3)
	if !hasMore {
		t.Fatal("expected more pages")
	}
	if len(page) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(page))
	}

	page, hasMore = Trim(rows[:2], 3)
	if hasMore {
		t.Fatal("expected final page")
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(page))
	}
}
