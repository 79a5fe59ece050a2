package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/repository"
)

type VariantRepo struct {
	db db.DB
}

func NewVariantRepo(db db.DB) *VariantRepo {
	return &VariantRepo{db: db}
}

func (r *VariantRepo) GetByID(ctx context.Context, id string) (*repository.Variant, error) {
	var variant repository.Variant
	err := r.db.Get(ctx, &variant, "SELECT * FROM variants WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &variant, nil
}

// AdjustStock applies delta to the variant's stock in a single UPDATE so
// concurrent adjustments to the same variant never lose updates. Stock is
// clamped at zero and the out-of-stock flag is derived in the same statement.
func (r *VariantRepo) AdjustStock(ctx context.Context, id string, delta int) (*repository.Variant, error) {
	var variant repository.Variant
	err := r.db.Get(ctx, &variant, `
        UPDATE variants
        SET
            stock = GREATEST(stock + $2, 0),
            out_of_stock = (stock + $2) <= 0,
            updated_at = now()
        WHERE id = $1
        RETURNING id, title, stock, out_of_stock, price, updated_at
    `, id, delta)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &variant, nil
}

func (r *VariantRepo) GetByIDs(ctx context.Context, ids []string) ([]*repository.Variant, error) {
	var variants []*repository.Variant
	err := r.db.Select(ctx, &variants, "SELECT * FROM variants WHERE id = ANY($1)", ids)
	return variants, err
}
