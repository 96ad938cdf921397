package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/andescredit/loan-engine/internal/domain"
)

type clientRepository struct {
	db *sqlx.DB
}

func NewClientRepository(db *sqlx.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clients (id, dni, first_name, last_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.DNI,
		client.FirstName,
		client.LastName,
		client.CreatedAt,
	)

	return err
}

func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	query := `
		SELECT id, dni, first_name, last_name, created_at
		FROM clients
		WHERE id = $1
	`

	var client domain.Client
	if err := r.db.GetContext(ctx, &client, query, id); err != nil {
		return nil, err
	}

	return &client, nil
}

func (r *clientRepository) GetByDNI(ctx context.Context, dni string) (*domain.Client, error) {
	query := `
		SELECT id, dni, first_name, last_name, created_at
		FROM clients
		WHERE dni = $1
	`

	var client domain.Client
	if err := r.db.GetContext(ctx, &client, query, dni); err != nil {
		return nil, err
	}

	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, query, dniPrefix string) ([]*domain.Client, error) {
	sql := `
		SELECT id, dni, first_name, last_name, created_at
		FROM clients
		WHERE ($1 = '' OR first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%' OR dni LIKE '%' || $1 || '%')
		  AND ($2 = '' OR dni LIKE $2 || '%')
		ORDER BY created_at DESC
	`

	clients := make([]*domain.Client, 0)
	if err := r.db.SelectContext(ctx, &clients, sql, query, dniPrefix); err != nil {
		return nil, err
	}

	return clients, nil
}
