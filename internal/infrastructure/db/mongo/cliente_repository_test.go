package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/agrofeira/cliente-auth/internal/core/domain"
)

func dupKey(index string) mongo.WriteException {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: fmt.Sprintf(`E11000 duplicate key error collection: agrofeira.clientes index: %s dup key: { x: "1" }`, index),
	}}}
}

func TestDuplicateKeyError_MapsIndexToField(t *testing.T) {
	if err := duplicateKeyError(dupKey(indexCPF)); !errors.Is(err, domain.ErrCPFTaken) {
		t.Fatalf("expected ErrCPFTaken, got %v", err)
	}
	if err := duplicateKeyError(dupKey(indexEmail)); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if !mongo.IsDuplicateKeyError(dupKey(indexEmail)) {
		t.Fatalf("fixture must be recognised as a duplicate key error")
	}
}

func TestDuplicateKeyError_OtherIndexIsNotAFieldConflict(t *testing.T) {
	for _, index := range []string{"_id_", "email_unique_old"} {
		err := duplicateKeyError(dupKey(index))
		if errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, domain.ErrCPFTaken) {
			t.Fatalf("index %s: must not map to a field conflict, got %v", index, err)
		}
		var we mongo.WriteException
		if !errors.As(err, &we) {
			t.Fatalf("index %s: original error must stay wrapped, got %v", index, err)
		}
	}
}

// Integration test, enabled when TEST_MONGO_URI is set.
func TestClienteRepository_Mongo_Uniqueness(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI is not set; skipping MongoDB integration test")
	}

	ctx := context.Background()
	client, db, err := Connect(ctx, Config{
		URI:      uri,
		Database: fmt.Sprintf("cliente_auth_test_%d", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	repo := NewClienteRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	now := time.Now().UTC()
	ana := &domain.Cliente{
		ID:             "c-1",
		NomeCompleto:   "Ana Silva",
		Email:          "ana@x.com",
		SenhaHash:      "hash",
		CPF:            "123.456.789-00",
		DataNascimento: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		IsProdutor:     true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := repo.Create(ctx, ana); err != nil {
		t.Fatalf("Create: %v", err)
	}

	sameEmail := *ana
	sameEmail.ID, sameEmail.CPF = "c-2", "999"
	if err := repo.Create(ctx, &sameEmail); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("duplicate email: expected ErrEmailTaken, got %v", err)
	}

	sameCPF := *ana
	sameCPF.ID, sameCPF.Email = "c-3", "other@x.com"
	if err := repo.Create(ctx, &sameCPF); !errors.Is(err, domain.ErrCPFTaken) {
		t.Fatalf("duplicate cpf: expected ErrCPFTaken, got %v", err)
	}

	sameID := *ana
	sameID.Email, sameID.CPF = "third@x.com", "888"
	err = repo.Create(ctx, &sameID)
	if err == nil || errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, domain.ErrCPFTaken) {
		t.Fatalf("duplicate id: expected a non-field error, got %v", err)
	}

	got, err := repo.FindByEmail(ctx, "ana@x.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if got.ID != "c-1" || got.SenhaHash != "hash" || !got.IsProdutor || !got.DataNascimento.Equal(ana.DataNascimento) {
		t.Fatalf("unexpected cliente: %+v", got)
	}
	if _, err := repo.FindByID(ctx, "c-1"); err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if _, err := repo.FindByEmail(ctx, "ghost@x.com"); !errors.Is(err, domain.ErrClienteNotFound) {
		t.Fatalf("unknown email: expected ErrClienteNotFound, got %v", err)
	}
	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, domain.ErrClienteNotFound) {
		t.Fatalf("unknown id: expected ErrClienteNotFound, got %v", err)
	}

	if ok, err := repo.ExistsByEmail(ctx, "ana@x.com"); err != nil || !ok {
		t.Fatalf("ExistsByEmail = %v, %v", ok, err)
	}
	if ok, err := repo.ExistsByEmail(ctx, "ghost@x.com"); err != nil || ok {
		t.Fatalf("ExistsByEmail(ghost) = %v, %v", ok, err)
	}
	if ok, err := repo.ExistsByTaxID(ctx, "123.456.789-00"); err != nil || !ok {
		t.Fatalf("ExistsByTaxID = %v, %v", ok, err)
	}
	if ok, err := repo.ExistsByTaxID(ctx, "000"); err != nil || ok {
		t.Fatalf("ExistsByTaxID(000) = %v, %v", ok, err)
	}

	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes must be idempotent: %v", err)
	}
}
