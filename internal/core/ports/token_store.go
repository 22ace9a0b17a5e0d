package ports

import "context"

// TokenStore issues, resolves and revokes opaque bearer tokens.
// Resolve and Revoke return domain.ErrSessionNotFound for tokens that are
// unknown, expired or already revoked.
type TokenStore interface {
	Issue(ctx context.Context, clienteID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}
