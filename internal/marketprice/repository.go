package marketprice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("market price not found")

type Repository interface {
	Create(ctx context.Context, mp *MarketPrice) error
	GetByID(ctx context.Context, id int64) (*MarketPrice, error)
	List(ctx context.Context) ([]MarketPrice, error)
	UpdatePrice(ctx context.Context, id int64, price float64) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, mp *MarketPrice) error {
	query := `
		INSERT INTO market_prices (product_name, category, price)
		VALUES ($1, $2, $3)
		RETURNING id, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, mp.ProductName, mp.Category, mp.Price).
		Scan(&mp.ID, &mp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert market price: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*MarketPrice, error) {
	var mp MarketPrice
	query := `SELECT * FROM market_prices WHERE id = $1`
	err := r.db.GetContext(ctx, &mp, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to get market price %d: %w", id, err)
	}
	return &mp, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]MarketPrice, error) {
	prices := make([]MarketPrice, 0)
	query := `SELECT * FROM market_prices ORDER BY product_name`
	if err := r.db.SelectContext(ctx, &prices, query); err != nil {
		return nil, fmt.Errorf("repository: failed to list market prices: %w", err)
	}
	return prices, nil
}

// UpdatePrice replaces the current price and keeps the old one as
// previous_price in the same statement.
func (r *postgresRepository) UpdatePrice(ctx context.Context, id int64, price float64) error {
	query := `
		UPDATE market_prices
		SET previous_price = price, price = $1, updated_at = now()
		WHERE id = $2
	`
	res, err := r.db.ExecContext(ctx, query, price, id)
	if err != nil {
		return fmt.Errorf("repository: failed to update market price %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: failed to read update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
