package domain

import "time"

const (
	TipoCliente    = "cliente"
	TipoFornecedor = "fornecedor"

	RedirectCliente    = "/"
	RedirectFornecedor = "/fornecedor/dashboard"
)

// Cliente models one registered account. Suppliers and customers share the
// same record shape and differ only by IsProdutor.
type Cliente struct {
	ID             string    `json:"id"`
	NomeCompleto   string    `json:"nome_completo"`
	Email          string    `json:"email"`
	SenhaHash      string    `json:"-"`
	CPF            string    `json:"cpf"`
	Telefone       string    `json:"telefone"`
	DataNascimento time.Time `json:"data_nascimento"`
	CEP            string    `json:"cep"`
	Rua            string    `json:"rua"`
	Numero         string    `json:"numero"`
	Complemento    string    `json:"complemento,omitempty"`
	IsProdutor     bool      `json:"isProdutor"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Tipo returns the account-type label exposed to clients.
func (c *Cliente) Tipo() string {
	if c.IsProdutor {
		return TipoFornecedor
	}
	return TipoCliente
}

// RedirectPath is where the front end sends the account after authenticating.
func (c *Cliente) RedirectPath() string {
	if c.IsProdutor {
		return RedirectFornecedor
	}
	return RedirectCliente
}
