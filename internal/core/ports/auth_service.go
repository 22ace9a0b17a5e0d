package ports

import (
	"context"

	"github.com/agrofeira/cliente-auth/internal/core/domain"
)

// RegisterInput is the raw registration payload, before validation.
// IsProdutor holds the decoded JSON value as-is so the validator can
// accept the loose boolean forms clients send (true, 1, "1", ...).
type RegisterInput struct {
	NomeCompleto   string
	Email          string
	Senha          string
	CPF            string
	Telefone       string
	DataNascimento string
	CEP            string
	Rua            string
	Numero         string
	Complemento    string
	IsProdutor     any

	// WrongType lists wire fields that arrived as a JSON value other than a string.
	WrongType []string
}

// LoginInput is the raw login payload.
type LoginInput struct {
	Email string
	Senha string

	WrongType []string
}

// ClienteView is the public projection of an authenticated cliente.
type ClienteView struct {
	ID     string `json:"id"`
	Nome   string `json:"nome"`
	Email  string `json:"email"`
	Tipo   string `json:"tipo"`
	Logado bool   `json:"logado"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Cliente  ClienteView
	Token    string
	Redirect string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Authenticate(ctx context.Context, token string) (*domain.Cliente, error)
	CurrentUser(principal *domain.Cliente) (*ClienteView, error)
	Logout(ctx context.Context, principal *domain.Cliente, token string) error
}
