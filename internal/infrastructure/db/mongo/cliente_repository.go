package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agrofeira/cliente-auth/internal/core/domain"
)

const (
	collectionClientes = "clientes"

	indexEmail = "email_unique"
	indexCPF   = "cpf_unique"
)

// ClienteRepository implements ports.ClienteRepository using MongoDB.
// Uniqueness of email and cpf relies on the indexes created by EnsureIndexes.
type ClienteRepository struct {
	col *mongo.Collection
}

func NewClienteRepository(db *mongo.Database) *ClienteRepository {
	return &ClienteRepository{col: db.Collection(collectionClientes)}
}

type mongoCliente struct {
	ID             string    `bson:"_id"`
	NomeCompleto   string    `bson:"nome_completo"`
	Email          string    `bson:"email"`
	SenhaHash      string    `bson:"senha"`
	CPF            string    `bson:"cpf"`
	Telefone       string    `bson:"telefone"`
	DataNascimento time.Time `bson:"data_nascimento"`
	CEP            string    `bson:"cep"`
	Rua            string    `bson:"rua"`
	Numero         string    `bson:"numero"`
	Complemento    string    `bson:"complemento,omitempty"`
	IsProdutor     bool      `bson:"is_produtor"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func toDocument(c *domain.Cliente) mongoCliente {
	return mongoCliente{
		ID:             c.ID,
		NomeCompleto:   c.NomeCompleto,
		Email:          c.Email,
		SenhaHash:      c.SenhaHash,
		CPF:            c.CPF,
		Telefone:       c.Telefone,
		DataNascimento: c.DataNascimento.UTC(),
		CEP:            c.CEP,
		Rua:            c.Rua,
		Numero:         c.Numero,
		Complemento:    c.Complemento,
		IsProdutor:     c.IsProdutor,
		CreatedAt:      c.CreatedAt.UTC(),
		UpdatedAt:      c.UpdatedAt.UTC(),
	}
}

func (d mongoCliente) toDomain() *domain.Cliente {
	return &domain.Cliente{
		ID:             d.ID,
		NomeCompleto:   d.NomeCompleto,
		Email:          d.Email,
		SenhaHash:      d.SenhaHash,
		CPF:            d.CPF,
		Telefone:       d.Telefone,
		DataNascimento: d.DataNascimento.UTC(),
		CEP:            d.CEP,
		Rua:            d.Rua,
		Numero:         d.Numero,
		Complemento:    d.Complemento,
		IsProdutor:     d.IsProdutor,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}

// Create inserts a new cliente document.
func (r *ClienteRepository) Create(ctx context.Context, c *domain.Cliente) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toDocument(c)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateKeyError(err)
		}
		return fmt.Errorf("insert cliente: %w", err)
	}
	return nil
}

// FindByEmail retrieves a cliente by exact email match.
func (r *ClienteRepository) FindByEmail(ctx context.Context, email string) (*domain.Cliente, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByID retrieves a cliente by its identifier.
func (r *ClienteRepository) FindByID(ctx context.Context, id string) (*domain.Cliente, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ClienteRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *ClienteRepository) ExistsByTaxID(ctx context.Context, cpf string) (bool, error) {
	return r.exists(ctx, bson.M{"cpf": cpf})
}

func (r *ClienteRepository) findOne(ctx context.Context, filter bson.M) (*domain.Cliente, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoCliente
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClienteNotFound
		}
		return nil, fmt.Errorf("find cliente: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ClienteRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count clientes: %w", err)
	}
	return n > 0, nil
}

// EnsureIndexes creates the unique indexes on the clientes collection.
func (r *ClienteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(indexEmail).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "cpf", Value: 1}},
			Options: options.Index().SetName(indexCPF).SetUnique(true),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// duplicateKeyError maps a duplicate key failure to the field whose index
// rejected it. Conflicts on any other index are returned as plain errors.
func duplicateKeyError(err error) error {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			switch duplicateIndex(e.Message) {
			case indexCPF:
				return fmt.Errorf("insert cliente: %w", domain.ErrCPFTaken)
			case indexEmail:
				return fmt.Errorf("insert cliente: %w", domain.ErrEmailTaken)
			}
		}
	}
	return fmt.Errorf("insert cliente: %w", err)
}

// duplicateIndex extracts the index name from an E11000 server message:
// "E11000 duplicate key error collection: db.clientes index: cpf_unique dup key: {...}".
func duplicateIndex(msg string) string {
	_, rest, ok := strings.Cut(msg, " index: ")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(rest, " ")
	return name
}
