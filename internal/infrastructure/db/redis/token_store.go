package redis

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agrofeira/cliente-auth/internal/core/domain"
)

const (
	tokenBytes       = 32
	sessionKeyPrefix = "session:"

	fieldClienteID = "cliente_id"
	fieldCreatedAt = "created_at"
	fieldRevokedAt = "revoked_at"
)

// revokeScript marks an active session as revoked and keeps the record around
// for ARGV[2] seconds (0 deletes it). Returns 0 when there was nothing to revoke.
var revokeScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], 'cliente_id') == 0 then
	return 0
end
if redis.call('HEXISTS', KEYS[1], 'revoked_at') == 1 then
	return 0
end
local retention = tonumber(ARGV[2])
if retention > 0 then
	redis.call('HSET', KEYS[1], 'revoked_at', ARGV[1])
	redis.call('EXPIRE', KEYS[1], retention)
else
	redis.call('DEL', KEYS[1])
end
return 1
`)

// TokenStoreOptions tunes token lifetime. A zero TTL means tokens never expire.
type TokenStoreOptions struct {
	TTL              time.Duration
	RevokedRetention time.Duration
}

// TokenStore implements ports.TokenStore on Redis.
// Key format: session:<sha256(token) hex>. The plain token is never stored.
type TokenStore struct {
	client *redis.Client
	opts   TokenStoreOptions
	now    func() time.Time
}

// NewTokenStore creates a TokenStore wrapping the given Redis client.
func NewTokenStore(client *redis.Client, opts TokenStoreOptions) *TokenStore {
	return &TokenStore{client: client, opts: opts, now: time.Now}
}

// Issue creates a new active session for clienteID and returns its opaque token.
func (s *TokenStore) Issue(ctx context.Context, clienteID string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	key := sessionKey(token)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldClienteID, clienteID,
			fieldCreatedAt, s.now().UTC().Format(time.RFC3339Nano),
		)
		if s.opts.TTL > 0 {
			pipe.Expire(ctx, key, s.opts.TTL)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Resolve returns the owner of an active token.
func (s *TokenStore) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrSessionNotFound
	}
	key := sessionKey(token)

	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("resolve token: %w", err)
	}

	session, ok := sessionFromHash(key, fields)
	if !ok || !session.Active() {
		return "", domain.ErrSessionNotFound
	}
	return session.ClienteID, nil
}

// Revoke ends the session behind token. Revoking twice yields domain.ErrSessionNotFound.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrSessionNotFound
	}

	n, err := revokeScript.Run(ctx, s.client,
		[]string{sessionKey(token)},
		s.now().UTC().Format(time.RFC3339Nano),
		int64(s.opts.RevokedRetention/time.Second),
	).Int()
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// newToken returns tokenBytes of randomness, base64url encoded without padding.
func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func sessionKey(token string) string {
	return sessionKeyPrefix + hashToken(token)
}

// sessionFromHash decodes a session hash. It reports false for missing or
// malformed records.
func sessionFromHash(key string, fields map[string]string) (*domain.Session, bool) {
	clienteID := fields[fieldClienteID]
	if clienteID == "" {
		return nil, false
	}

	s := &domain.Session{
		TokenHash: key[len(sessionKeyPrefix):],
		ClienteID: clienteID,
	}
	if raw, ok := fields[fieldCreatedAt]; ok {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			s.CreatedAt = t
		}
	}
	if raw, ok := fields[fieldRevokedAt]; ok {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			// Unparseable revocation still counts as revoked.
			t = time.Time{}
		}
		s.RevokedAt = &t
	}
	return s, true
}
