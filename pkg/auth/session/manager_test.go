package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type fakeSessionStore struct {
	values map[string]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{values: map[string]string{}}
}

func (f *fakeSessionStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, key string) (string, error) {
	val, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (f *fakeSessionStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) AccessSessionKey(accessID string) string {
	return "test:session:access:" + accessID
}

func newTestManager() (*Manager, *fakeSessionStore) {
	store := newFakeSessionStore()
	return &Manager{store: store, keyer: fakeKeyer{}, ttl: time.Hour}, store
}

func TestGenerateAndHasSession(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	token, err := manager.Generate(ctx, "jti-1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty refresh token")
	}

	active, err := manager.HasSession(ctx, "jti-1")
	if err != nil {
		t.Fatalf("HasSession failed: %v", err)
	}
	if !active {
		t.Fatal("expected session to be active")
	}

	active, err = manager.HasSession(ctx, "jti-unknown")
	if err != nil {
		t.Fatalf("HasSession failed: %v", err)
	}
	if active {
		t.Fatal("unknown access id must not have a session")
	}
}

func TestRotateInvalidatesOldSession(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	token, err := manager.Generate(ctx, "jti-old")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	newAccessID, newToken, err := manager.Rotate(ctx, "jti-old", token)
	if err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	if newAccessID == "" || newToken == "" {
		t.Fatal("expected fresh access id and token")
	}
	if newToken == token {
		t.Fatal("rotated token should differ")
	}

	if active, _ := manager.HasSession(ctx, "jti-old"); active {
		t.Fatal("old session should be revoked after rotation")
	}
	if active, _ := manager.HasSession(ctx, newAccessID); !active {
		t.Fatal("new session should be active after rotation")
	}

	// Replaying the old refresh token must fail.
	if _, _, err := manager.Rotate(ctx, "jti-old", token); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRotateRejectsWrongToken(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	if _, err := manager.Generate(ctx, "jti-1"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, _, err := manager.Rotate(ctx, "jti-1", "forged-token"); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
	if _, _, err := manager.Rotate(ctx, "", ""); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken for blanks, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	manager, store := newTestManager()
	ctx := context.Background()

	if _, err := manager.Generate(ctx, "jti-1"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if err := manager.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if len(store.values) != 0 {
		t.Fatalf("expected empty store, got %v", store.values)
	}
}
