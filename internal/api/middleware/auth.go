package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agrofeira/cliente-auth/internal/api/metrics"
	"github.com/agrofeira/cliente-auth/internal/core/domain"
)

// Context keys set by Auth for downstream handlers.
const (
	ContextKeyCliente = "cliente"
	ContextKeyToken   = "token"
)

// Authenticator resolves a bearer token to the cliente that owns it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Cliente, error)
}

// Auth resolves the bearer token and injects the principal and the token into context.
func Auth(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.AuthRejectionsTotal.WithLabelValues("missing_header").Inc()
				return domain.ErrUnauthenticated
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				metrics.AuthRejectionsTotal.WithLabelValues("malformed_header").Inc()
				return domain.ErrUnauthenticated
			}
			token := strings.TrimSpace(parts[1])

			cliente, err := authn.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					metrics.AuthRejectionsTotal.WithLabelValues("invalid_token").Inc()
				}
				return err
			}

			c.Set(ContextKeyCliente, cliente)
			c.Set(ContextKeyToken, token)

			return next(c)
		}
	}
}
