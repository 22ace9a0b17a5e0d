package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/agrofeira/cliente-auth/internal/core/domain"
	"github.com/agrofeira/cliente-auth/internal/core/ports"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

const maxPasswordBytes = 72

// dateLayouts are the accepted forms of data_nascimento.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

type registerRules struct {
	NomeCompleto   string `json:"nome_completo"   validate:"required,max=255"`
	Email          string `json:"email"           validate:"required,email,max=255"`
	Senha          string `json:"senha"           validate:"required,min=6"`
	CPF            string `json:"cpf"             validate:"required,max=14"`
	Telefone       string `json:"telefone"        validate:"required,max=15"`
	DataNascimento string `json:"data_nascimento" validate:"required"`
	CEP            string `json:"cep"             validate:"required,max=9"`
	Rua            string `json:"rua"             validate:"required,max=255"`
	Numero         string `json:"numero"          validate:"required,max=10"`
	Complemento    string `json:"complemento"     validate:"omitempty,max=255"`
}

type loginRules struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required"`
}

var registerFieldOrder = []string{
	"nome_completo", "email", "senha", "cpf", "telefone", "data_nascimento",
	"cep", "rua", "numero", "complemento", "isProdutor",
}

var loginFieldOrder = []string{"email", "senha"}

// NormalizeRegister trims surrounding whitespace from every text field.
func NormalizeRegister(in ports.RegisterInput) ports.RegisterInput {
	in.NomeCompleto = strings.TrimSpace(in.NomeCompleto)
	in.Email = strings.TrimSpace(in.Email)
	in.CPF = strings.TrimSpace(in.CPF)
	in.Telefone = strings.TrimSpace(in.Telefone)
	in.DataNascimento = strings.TrimSpace(in.DataNascimento)
	in.CEP = strings.TrimSpace(in.CEP)
	in.Rua = strings.TrimSpace(in.Rua)
	in.Numero = strings.TrimSpace(in.Numero)
	in.Complemento = strings.TrimSpace(in.Complemento)
	return in
}

// NormalizeLogin trims the email. The password is compared verbatim.
func NormalizeLogin(in ports.LoginInput) ports.LoginInput {
	in.Email = strings.TrimSpace(in.Email)
	return in
}

// ValidateRegister checks the shape of a registration payload. Uniqueness is
// not checked here since it needs the store. today is the reference date for
// the birth date rule.
func ValidateRegister(in ports.RegisterInput, today time.Time) []domain.FieldError {
	byField := collect(registerRules{
		NomeCompleto:   in.NomeCompleto,
		Email:          in.Email,
		Senha:          in.Senha,
		CPF:            in.CPF,
		Telefone:       in.Telefone,
		DataNascimento: in.DataNascimento,
		CEP:            in.CEP,
		Rua:            in.Rua,
		Numero:         in.Numero,
		Complemento:    in.Complemento,
	})

	// bcrypt only looks at the first 72 bytes of a password.
	if _, failed := byField["senha"]; !failed && len(in.Senha) > maxPasswordBytes {
		byField["senha"] = []string{message("senha", "max", fmt.Sprint(maxPasswordBytes))}
	}

	if _, failed := byField["data_nascimento"]; !failed {
		born, ok := ParseDate(in.DataNascimento)
		switch {
		case !ok:
			byField["data_nascimento"] = []string{message("data_nascimento", "date", "")}
		case !dateOnly(born).Before(dateOnly(today)):
			byField["data_nascimento"] = []string{message("data_nascimento", "before", "today")}
		}
	}

	if _, ok := ParseBool(in.IsProdutor); !ok {
		byField["isProdutor"] = []string{message("isProdutor", "boolean", "")}
	}

	markWrongType(byField, in.WrongType)
	return ordered(byField, registerFieldOrder)
}

// ValidateLogin checks the shape of a login payload.
func ValidateLogin(in ports.LoginInput) []domain.FieldError {
	byField := collect(loginRules{Email: in.Email, Senha: in.Senha})
	markWrongType(byField, in.WrongType)
	return ordered(byField, loginFieldOrder)
}

// markWrongType replaces the errors of fields that were not sent as text.
// Their zero value would otherwise be reported as missing.
func markWrongType(byField map[string][]string, fields []string) {
	for _, field := range fields {
		tag := "string"
		if field == "data_nascimento" {
			tag = "date"
		}
		byField[field] = []string{message(field, tag, "")}
	}
}

// ParseDate accepts the supported date layouts.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseBool accepts true, false, 1, 0, "1" and "0". A nil value is false.
func ParseBool(v any) (bool, bool) {
	switch b := v.(type) {
	case nil:
		return false, true
	case bool:
		return b, true
	case float64:
		if b == 0 || b == 1 {
			return b == 1, true
		}
	case int:
		if b == 0 || b == 1 {
			return b == 1, true
		}
	case string:
		switch b {
		case "1":
			return true, true
		case "0":
			return false, true
		}
	}
	return false, false
}

func collect(rules any) map[string][]string {
	byField := make(map[string][]string)
	err := validate.Struct(rules)
	if err == nil {
		return byField
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		// Only reachable with a programming error in the rule structs.
		panic(fmt.Sprintf("validation: %v", err))
	}
	for _, fe := range ve {
		byField[fe.Field()] = append(byField[fe.Field()], message(fe.Field(), fe.Tag(), fe.Param()))
	}
	return byField
}

func ordered(byField map[string][]string, order []string) []domain.FieldError {
	var out []domain.FieldError
	for _, field := range order {
		for _, msg := range byField[field] {
			out = append(out, domain.FieldError{Field: field, Message: msg})
		}
	}
	return out
}

// message renders a rule violation the way the front end already displays them.
func message(field, tag, param string) string {
	attr := strings.ReplaceAll(field, "_", " ")
	switch tag {
	case "required":
		return fmt.Sprintf("The %s field is required.", attr)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", attr)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", attr, param)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", attr, param)
	case "string":
		return fmt.Sprintf("The %s field must be a string.", attr)
	case "date":
		return fmt.Sprintf("The %s field must be a valid date.", attr)
	case "before":
		return fmt.Sprintf("The %s field must be a date before %s.", attr, param)
	case "boolean":
		return fmt.Sprintf("The %s field must be true or false.", attr)
	case "unique":
		return fmt.Sprintf("The %s has already been taken.", attr)
	default:
		return fmt.Sprintf("The %s field is invalid.", attr)
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
