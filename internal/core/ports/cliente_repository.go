package ports

import (
	"context"

	"github.com/agrofeira/cliente-auth/internal/core/domain"
)

// ClienteRepository defines persistence for cliente records.
// Create must reject duplicate emails and CPFs atomically, returning
// domain.ErrEmailTaken or domain.ErrCPFTaken.
type ClienteRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Cliente, error)
	FindByID(ctx context.Context, id string) (*domain.Cliente, error)
	Create(ctx context.Context, cliente *domain.Cliente) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByTaxID(ctx context.Context, cpf string) (bool, error)
}
