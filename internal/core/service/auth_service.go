package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrofeira/cliente-auth/internal/core/domain"
	"github.com/agrofeira/cliente-auth/internal/core/ports"
)

// AuthService implements registration, login, session lookup and logout.
type AuthService struct {
	repo      ports.ClienteRepository
	tokens    ports.TokenStore
	log       zerolog.Logger
	cost      int
	now       func() time.Time
	newID     func() string
	dummyHash []byte
}

// Option customises an AuthService.
type Option func(*AuthService)

// WithBcryptCost sets the bcrypt work factor. Out-of-range values fall back
// to bcrypt.DefaultCost.
func WithBcryptCost(cost int) Option {
	return func(s *AuthService) { s.cost = cost }
}

// WithClock replaces time.Now, used for the birth date rule and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// WithIDGenerator replaces the UUID generator for new clientes.
func WithIDGenerator(newID func() string) Option {
	return func(s *AuthService) { s.newID = newID }
}

func NewAuthService(repo ports.ClienteRepository, tokens ports.TokenStore, log zerolog.Logger, opts ...Option) *AuthService {
	s := &AuthService{
		repo:   repo,
		tokens: tokens,
		log:    log,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cost < bcrypt.MinCost || s.cost > bcrypt.MaxCost {
		s.cost = bcrypt.DefaultCost
	}

	// Compared against when the email is unknown so both failure paths pay for one bcrypt run.
	hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
	if err != nil {
		panic(fmt.Sprintf("auth: dummy hash: %v", err))
	}
	s.dummyHash = hash
	return s
}

// Register validates the payload, stores a new cliente and opens a session for it.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	in = NormalizeRegister(in)
	verr := &domain.ValidationError{Fields: ValidateRegister(in, s.now())}

	if !verr.Has("email") {
		taken, err := s.repo.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return nil, fmt.Errorf("register: check email: %w", err)
		}
		if taken {
			verr.Add("email", message("email", "unique", ""))
		}
	}
	if !verr.Has("cpf") {
		taken, err := s.repo.ExistsByTaxID(ctx, in.CPF)
		if err != nil {
			return nil, fmt.Errorf("register: check cpf: %w", err)
		}
		if taken {
			verr.Add("cpf", message("cpf", "unique", ""))
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Senha), s.cost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}
	born, _ := ParseDate(in.DataNascimento)
	produtor, _ := ParseBool(in.IsProdutor)

	now := s.now().UTC()
	cliente := &domain.Cliente{
		ID:             s.newID(),
		NomeCompleto:   in.NomeCompleto,
		Email:          in.Email,
		SenhaHash:      string(hash),
		CPF:            in.CPF,
		Telefone:       in.Telefone,
		DataNascimento: dateOnly(born),
		CEP:            in.CEP,
		Rua:            in.Rua,
		Numero:         in.Numero,
		Complemento:    in.Complemento,
		IsProdutor:     produtor,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, cliente); err != nil {
		// Lost a race against a concurrent registration; the unique index decided.
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			return nil, uniqueViolation("email")
		case errors.Is(err, domain.ErrCPFTaken):
			return nil, uniqueViolation("cpf")
		}
		return nil, fmt.Errorf("register: create cliente: %w", err)
	}

	result, err := s.openSession(ctx, cliente)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().
		Str("cliente_id", cliente.ID).
		Str("tipo", cliente.Tipo()).
		Msg("cliente registered")

	return result, nil
}

// Login checks the credentials and opens a new session. Sessions opened
// earlier stay valid.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	in = NormalizeLogin(in)
	if fields := ValidateLogin(in); len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	cliente, err := s.repo.FindByEmail(ctx, in.Email)
	if errors.Is(err, domain.ErrClienteNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Senha))
		return nil, s.refuse(domain.ReasonEmailNotFound, "")
	}
	if err != nil {
		return nil, fmt.Errorf("login: find cliente: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cliente.SenhaHash), []byte(in.Senha)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.log.Error().Err(err).Str("cliente_id", cliente.ID).Msg("stored password hash unusable")
		}
		return nil, s.refuse(domain.ReasonWrongPassword, cliente.ID)
	}

	result, err := s.openSession(ctx, cliente)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("cliente_id", cliente.ID).Msg("login succeeded")
	return result, nil
}

// Authenticate resolves a bearer token to the cliente that owns it.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Cliente, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	clienteID, err := s.tokens.Resolve(ctx, token)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: resolve token: %w", err)
	}

	cliente, err := s.repo.FindByID(ctx, clienteID)
	if errors.Is(err, domain.ErrClienteNotFound) {
		s.log.Warn().Str("cliente_id", clienteID).Msg("token owner no longer exists")
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: find cliente: %w", err)
	}
	return cliente, nil
}

// CurrentUser projects the authenticated principal. It has no side effects.
func (s *AuthService) CurrentUser(principal *domain.Cliente) (*ports.ClienteView, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}
	view := viewOf(principal)
	return &view, nil
}

// Logout revokes exactly the token used for the current request.
func (s *AuthService) Logout(ctx context.Context, principal *domain.Cliente, token string) error {
	if principal == nil || token == "" {
		return domain.ErrUnauthenticated
	}

	err := s.tokens.Revoke(ctx, token)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.ErrUnauthenticated
	}
	if err != nil {
		return fmt.Errorf("logout: revoke token: %w", err)
	}

	s.log.Info().Str("cliente_id", principal.ID).Msg("session revoked")
	return nil
}

func (s *AuthService) openSession(ctx context.Context, cliente *domain.Cliente) (*ports.AuthResult, error) {
	token, err := s.tokens.Issue(ctx, cliente.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.AuthResult{
		Cliente:  viewOf(cliente),
		Token:    token,
		Redirect: cliente.RedirectPath(),
	}, nil
}

func (s *AuthService) refuse(reason, clienteID string) error {
	evt := s.log.Warn().Str("reason", reason)
	if clienteID != "" {
		evt = evt.Str("cliente_id", clienteID)
	}
	evt.Msg("login refused")
	return domain.InvalidCredentialsError{Reason: reason}
}

func viewOf(c *domain.Cliente) ports.ClienteView {
	return ports.ClienteView{
		ID:     c.ID,
		Nome:   c.NomeCompleto,
		Email:  c.Email,
		Tipo:   c.Tipo(),
		Logado: true,
	}
}

func uniqueViolation(field string) error {
	verr := &domain.ValidationError{}
	verr.Add(field, message(field, "unique", ""))
	return verr
}
