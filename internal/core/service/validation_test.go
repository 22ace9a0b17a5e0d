package service

import (
	"strings"
	"testing"
	"time"

	"github.com/agrofeira/cliente-auth/internal/core/domain"
	"github.com/agrofeira/cliente-auth/internal/core/ports"
)

func fieldsOf(errs []domain.FieldError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Message
	}
	return out
}

func TestValidateRegister_Valid(t *testing.T) {
	if errs := ValidateRegister(anaInput(), fixedNow); len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
}

func TestValidateRegister_RequiredFields(t *testing.T) {
	errs := fieldsOf(ValidateRegister(ports.RegisterInput{}, fixedNow))

	for _, field := range []string{"nome_completo", "email", "senha", "cpf", "telefone", "data_nascimento", "cep", "rua", "numero"} {
		if _, ok := errs[field]; !ok {
			t.Fatalf("expected required violation on %s, got %+v", field, errs)
		}
	}
	if _, ok := errs["complemento"]; ok {
		t.Fatalf("complemento is optional")
	}
	if _, ok := errs["isProdutor"]; ok {
		t.Fatalf("absent isProdutor defaults to false")
	}
	if errs["nome_completo"] != "The nome completo field is required." {
		t.Fatalf("unexpected message: %q", errs["nome_completo"])
	}
}

func TestValidateRegister_FieldOrder(t *testing.T) {
	errs := ValidateRegister(ports.RegisterInput{IsProdutor: "yes"}, fixedNow)
	if len(errs) == 0 || errs[0].Field != "nome_completo" || errs[len(errs)-1].Field != "isProdutor" {
		t.Fatalf("errors not in field order: %+v", errs)
	}
}

func TestValidateRegister_Lengths(t *testing.T) {
	in := anaInput()
	in.NomeCompleto = strings.Repeat("a", 256)
	in.CPF = strings.Repeat("1", 15)
	in.Telefone = strings.Repeat("9", 16)
	in.CEP = "0100000000"
	in.Numero = strings.Repeat("1", 11)
	in.Complemento = strings.Repeat("c", 256)
	in.Senha = "12345"

	errs := fieldsOf(ValidateRegister(in, fixedNow))
	for _, field := range []string{"nome_completo", "cpf", "telefone", "cep", "numero", "complemento", "senha"} {
		if _, ok := errs[field]; !ok {
			t.Fatalf("expected length violation on %s, got %+v", field, errs)
		}
	}
	if errs["cpf"] != "The cpf field must not be greater than 14 characters." {
		t.Fatalf("unexpected cpf message: %q", errs["cpf"])
	}
	if errs["senha"] != "The senha field must be at least 6 characters." {
		t.Fatalf("unexpected senha message: %q", errs["senha"])
	}
}

func TestValidateRegister_MaxCountsCharactersNotBytes(t *testing.T) {
	in := anaInput()
	in.NomeCompleto = strings.Repeat("ç", 255)
	if errs := fieldsOf(ValidateRegister(in, fixedNow)); errs["nome_completo"] != "" {
		t.Fatalf("255 multi-byte characters must be accepted, got %q", errs["nome_completo"])
	}
}

func TestValidateRegister_PasswordTooLongForBcrypt(t *testing.T) {
	in := anaInput()
	in.Senha = strings.Repeat("x", 73)
	if _, ok := fieldsOf(ValidateRegister(in, fixedNow))["senha"]; !ok {
		t.Fatalf("expected senha violation for a 73 byte password")
	}
}

func TestValidateRegister_BirthDate(t *testing.T) {
	cases := []struct {
		value   string
		wantErr bool
	}{
		{"1990-01-01", false},
		{"2026-10-14", false},
		{"2026-10-15", true}, // today
		{"2030-01-01", true},
		{"1990-01-01T10:00:00Z", false},
		{"1990-01-01 10:00:00", false},
		{"01/01/1990", true},
		{"not-a-date", true},
	}
	for _, tc := range cases {
		in := anaInput()
		in.DataNascimento = tc.value
		_, got := fieldsOf(ValidateRegister(in, fixedNow))["data_nascimento"]
		if got != tc.wantErr {
			t.Fatalf("data_nascimento=%q: error=%v, want %v", tc.value, got, tc.wantErr)
		}
	}
}

func TestValidateRegister_IsProdutor(t *testing.T) {
	accepted := []any{nil, true, false, float64(1), float64(0), "1", "0", 1, 0}
	for _, v := range accepted {
		in := anaInput()
		in.IsProdutor = v
		if _, ok := fieldsOf(ValidateRegister(in, fixedNow))["isProdutor"]; ok {
			t.Fatalf("isProdutor=%#v must be accepted", v)
		}
	}

	rejected := []any{"true", "yes", float64(2), []any{}, map[string]any{}}
	for _, v := range rejected {
		in := anaInput()
		in.IsProdutor = v
		if msg := fieldsOf(ValidateRegister(in, fixedNow))["isProdutor"]; msg != "The isProdutor field must be true or false." {
			t.Fatalf("isProdutor=%#v: unexpected message %q", v, msg)
		}
	}
}

func TestNormalizeRegister_Trims(t *testing.T) {
	in := anaInput()
	in.Email = "  ana@x.com\t"
	in.Complemento = "   "
	in.Senha = " abcdef "

	out := NormalizeRegister(in)
	if out.Email != "ana@x.com" || out.Complemento != "" {
		t.Fatalf("unexpected normalization: %+v", out)
	}
	if out.Senha != " abcdef " {
		t.Fatalf("password must not be altered")
	}
}

func TestValidateLogin(t *testing.T) {
	if errs := ValidateLogin(ports.LoginInput{Email: "ana@x.com", Senha: "x"}); len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}

	errs := fieldsOf(ValidateLogin(ports.LoginInput{Email: "ana", Senha: ""}))
	if errs["email"] != "The email field must be a valid email address." {
		t.Fatalf("unexpected email message: %q", errs["email"])
	}
	if errs["senha"] != "The senha field is required." {
		t.Fatalf("unexpected senha message: %q", errs["senha"])
	}
}

func TestParseDate_KeepsCalendarDay(t *testing.T) {
	d, ok := ParseDate("1990-01-01T23:30:00-03:00")
	if !ok {
		t.Fatalf("expected RFC3339 date to parse")
	}
	if got := dateOnly(d); !got.Equal(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected calendar day: %v", got)
	}
}

func TestValidateRegister_WrongTypedFields(t *testing.T) {
	in := anaInput()
	in.Telefone = ""
	in.Numero = ""
	in.DataNascimento = ""
	in.WrongType = []string{"telefone", "numero", "data_nascimento"}

	errs := ValidateRegister(in, fixedNow)
	got := fieldsOf(errs)
	if len(errs) != 3 {
		t.Fatalf("expected one error per wrong-typed field, got %+v", errs)
	}
	if got["telefone"] != "The telefone field must be a string." || got["numero"] != "The numero field must be a string." {
		t.Fatalf("unexpected messages: %+v", got)
	}
	if got["data_nascimento"] != "The data nascimento field must be a valid date." {
		t.Fatalf("unexpected date message: %q", got["data_nascimento"])
	}
}

func TestValidateLogin_WrongTypedPassword(t *testing.T) {
	errs := ValidateLogin(ports.LoginInput{Email: "ana@x.com", WrongType: []string{"senha"}})
	if len(errs) != 1 || errs[0].Field != "senha" || errs[0].Message != "The senha field must be a string." {
		t.Fatalf("unexpected errors: %+v", errs)
	}
}
