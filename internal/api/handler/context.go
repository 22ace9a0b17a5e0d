package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/agrofeira/cliente-auth/internal/api/middleware"
	"github.com/agrofeira/cliente-auth/internal/core/domain"
)

// principal returns the cliente injected by the Auth middleware, or nil when
// the route was reached without it. The service turns nil into ErrUnauthenticated.
func principal(c echo.Context) *domain.Cliente {
	cliente, _ := c.Get(middleware.ContextKeyCliente).(*domain.Cliente)
	return cliente
}

func bearerToken(c echo.Context) string {
	token, _ := c.Get(middleware.ContextKeyToken).(string)
	return token
}
