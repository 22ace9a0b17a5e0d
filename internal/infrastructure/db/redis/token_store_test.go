package redis

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/agrofeira/cliente-auth/internal/core/domain"
)

func TestNewToken_OpaqueAndUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		tok, err := newToken()
		if err != nil {
			t.Fatalf("newToken: %v", err)
		}
		if len(tok) != 43 {
			t.Fatalf("expected 43 chars for 32 random bytes, got %d", len(tok))
		}
		if strings.ContainsAny(tok, "+/=") {
			t.Fatalf("token must be url-safe: %q", tok)
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token generated")
		}
		seen[tok] = struct{}{}
	}
}

func TestSessionKey_HashesToken(t *testing.T) {
	key := sessionKey("abc")
	want := "session:ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if key != want {
		t.Fatalf("sessionKey = %q, want %q", key, want)
	}
	if strings.Contains(key, "abc") {
		t.Fatalf("key must not contain the plain token")
	}
}

func TestSessionFromHash(t *testing.T) {
	key := sessionKey("tok")

	if _, ok := sessionFromHash(key, map[string]string{}); ok {
		t.Fatalf("empty hash must not decode")
	}

	created := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	s, ok := sessionFromHash(key, map[string]string{
		fieldClienteID: "c-1",
		fieldCreatedAt: created.Format(time.RFC3339Nano),
	})
	if !ok || !s.Active() || s.ClienteID != "c-1" || !s.CreatedAt.Equal(created) {
		t.Fatalf("unexpected active session: %+v", s)
	}
	if s.TokenHash != hashToken("tok") {
		t.Fatalf("unexpected token hash %q", s.TokenHash)
	}

	s, ok = sessionFromHash(key, map[string]string{
		fieldClienteID: "c-1",
		fieldRevokedAt: "garbage",
	})
	if !ok || s.Active() {
		t.Fatalf("a revoked_at field of any shape must deactivate the session")
	}
}

// Integration test, enabled when TEST_REDIS_ADDR is set.
func TestTokenStore_Redis_Lifecycle(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set; skipping Redis integration test")
	}

	ctx := context.Background()
	client, err := Connect(ctx, Config{Addr: addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	store := NewTokenStore(client, TokenStoreOptions{RevokedRetention: time.Minute})

	token, err := store.Issue(ctx, "cliente-int-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	t.Cleanup(func() { client.Del(context.Background(), sessionKey(token)) })

	if id, err := store.Resolve(ctx, token); err != nil || id != "cliente-int-1" {
		t.Fatalf("Resolve = %q, %v", id, err)
	}
	if err := store.Revoke(ctx, token); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := store.Resolve(ctx, token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("revoked token resolved: %v", err)
	}
	if err := store.Revoke(ctx, token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("second revoke: expected ErrSessionNotFound, got %v", err)
	}
	if n, _ := client.Exists(ctx, sessionKey(token)).Result(); n != 1 {
		t.Fatalf("revoked record should be retained")
	}
}

func TestTokenStore_Redis_TTL(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set; skipping Redis integration test")
	}

	ctx := context.Background()
	client, err := Connect(ctx, Config{Addr: addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	store := NewTokenStore(client, TokenStoreOptions{TTL: time.Hour})
	token, err := store.Issue(ctx, "cliente-int-2")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	t.Cleanup(func() { client.Del(context.Background(), sessionKey(token)) })

	ttl, err := client.TTL(ctx, sessionKey(token)).Result()
	if err != nil || ttl <= 0 || ttl > time.Hour {
		t.Fatalf("unexpected ttl %v (%v)", ttl, err)
	}
}
