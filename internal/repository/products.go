package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/salaviva/backend/internal/model"
)

type ProductsRepository struct {
	db Querier
}

const productColumns = `id, name, description, credit_hours, price, active, position, created_at, updated_at`

func scanProduct(s scanner) (*model.Product, error) {
	var p model.Product
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.CreditHours,
		&p.Price,
		&p.Active,
		&p.Position,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductsRepository) List(ctx context.Context, activeOnly bool) ([]*model.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY position, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan product")
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	return products, nil
}

func (r *ProductsRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, noRows(err, "products")
		}
		return nil, errors.Wrap(err, "failed to fetch product")
	}
	return p, nil
}

func (r *ProductsRepository) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	q := `
		INSERT INTO products (name, description, credit_hours, price, active, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + productColumns

	created, err := scanProduct(r.db.QueryRow(ctx, q,
		p.Name, p.Description, p.CreditHours, p.Price, p.Active, p.Position,
	))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create product")
	}
	return created, nil
}

func (r *ProductsRepository) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	q := `
		UPDATE products SET
			name         = $2,
			description  = $3,
			credit_hours = $4,
			price        = $5,
			active       = $6,
			position     = $7,
			updated_at   = now()
		WHERE id = $1
		RETURNING ` + productColumns

	updated, err := scanProduct(r.db.QueryRow(ctx, q,
		p.ID, p.Name, p.Description, p.CreditHours, p.Price, p.Active, p.Position,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, noRows(err, "products")
		}
		return nil, errors.Wrap(err, "failed to update product")
	}
	return updated, nil
}

func (r *ProductsRepository) Deactivate(ctx context.Context, id int64) error {
	q := `UPDATE products SET active = FALSE, updated_at = now() WHERE id = $1`

	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return errors.Wrap(err, "failed to deactivate product")
	}
	if tag.RowsAffected() == 0 {
		return noRows(pgx.ErrNoRows, "products")
	}
	return nil
}

func (r *ProductsRepository) Delete(ctx context.Context, id int64) error {
	q := `DELETE FROM products WHERE id = $1`

	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete product")
	}
	if tag.RowsAffected() == 0 {
		return noRows(pgx.ErrNoRows, "products")
	}
	return nil
}
