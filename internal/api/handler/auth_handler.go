package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrofeira/cliente-auth/internal/api/metrics"
	"github.com/agrofeira/cliente-auth/internal/core/domain"
	"github.com/agrofeira/cliente-auth/internal/core/ports"
)

const (
	msgRegistered     = "Cliente registrado com sucesso"
	msgLoggedIn       = "Login realizado com sucesso"
	msgLoggedOut      = "Logout realizado com sucesso"
	msgInvalidPayload = "Payload inválido"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	NomeCompleto   jsonText `json:"nome_completo" swaggertype:"string"`
	Email          jsonText `json:"email" swaggertype:"string"`
	Senha          jsonText `json:"senha" swaggertype:"string"`
	CPF            jsonText `json:"cpf" swaggertype:"string"`
	Telefone       jsonText `json:"telefone" swaggertype:"string"`
	DataNascimento jsonText `json:"data_nascimento" swaggertype:"string"`
	CEP            jsonText `json:"cep" swaggertype:"string"`
	Rua            jsonText `json:"rua" swaggertype:"string"`
	Numero         jsonText `json:"numero" swaggertype:"string"`
	Complemento    jsonText `json:"complemento,omitempty" swaggertype:"string"`
	IsProdutor     any      `json:"isProdutor,omitempty" swaggertype:"boolean"`
}

type loginRequest struct {
	Email jsonText `json:"email" swaggertype:"string"`
	Senha jsonText `json:"senha" swaggertype:"string"`
}

type authResponse struct {
	Message  string            `json:"message"`
	Cliente  ports.ClienteView `json:"cliente"`
	Token    string            `json:"token"`
	Redirect string            `json:"redirect"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (r registerRequest) toInput() ports.RegisterInput {
	var wrong wrongTypes
	in := ports.RegisterInput{
		NomeCompleto:   wrong.text("nome_completo", r.NomeCompleto),
		Email:          wrong.text("email", r.Email),
		Senha:          wrong.text("senha", r.Senha),
		CPF:            wrong.text("cpf", r.CPF),
		Telefone:       wrong.text("telefone", r.Telefone),
		DataNascimento: wrong.text("data_nascimento", r.DataNascimento),
		CEP:            wrong.text("cep", r.CEP),
		Rua:            wrong.text("rua", r.Rua),
		Numero:         wrong.text("numero", r.Numero),
		Complemento:    wrong.text("complemento", r.Complemento),
		IsProdutor:     r.IsProdutor,
	}
	in.WrongType = wrong
	return in
}

func (r loginRequest) toInput() ports.LoginInput {
	var wrong wrongTypes
	in := ports.LoginInput{
		Email: wrong.text("email", r.Email),
		Senha: wrong.text("senha", r.Senha),
	}
	in.WrongType = wrong
	return in
}

// Register creates a new cliente account and opens a session for it.
//
// @Summary      Register a new cliente
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Cliente registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  messageResponse
// @Failure      422   {object}  map[string]interface{}
// @Failure      500   {object}  messageResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidPayload)
	}

	res, err := h.authService.Register(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(res.Cliente.Tipo).Inc()
	return c.JSON(http.StatusCreated, toAuthResponse(msgRegistered, res))
}

// Login authenticates a cliente and returns a new bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      422   {object}  map[string]interface{}
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidPayload)
	}

	res, err := h.authService.Login(c.Request().Context(), req.toInput())
	if err != nil {
		recordLoginFailure(err)
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, toAuthResponse(msgLoggedIn, res))
}

// Me returns the cliente behind the bearer token.
//
// @Summary      Current cliente
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.ClienteView
// @Failure      401  {object}  messageResponse
// @Router       /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	view, err := h.authService.CurrentUser(principal(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Logout revokes the bearer token used for this request.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), principal(c), bearerToken(c)); err != nil {
		return err
	}

	metrics.LogoutsTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: msgLoggedOut})
}

func toAuthResponse(message string, res *ports.AuthResult) authResponse {
	return authResponse{
		Message:  message,
		Cliente:  res.Cliente,
		Token:    res.Token,
		Redirect: res.Redirect,
	}
}

func recordLoginFailure(err error) {
	var (
		ice  domain.InvalidCredentialsError
		verr *domain.ValidationError
	)
	switch {
	case errors.As(err, &ice):
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		metrics.LoginFailuresTotal.WithLabelValues(ice.Reason).Inc()
	case errors.As(err, &verr):
		metrics.LoginsTotal.WithLabelValues("validation_error").Inc()
	default:
		metrics.LoginsTotal.WithLabelValues("error").Inc()
	}
}
