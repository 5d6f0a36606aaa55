package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient product stock")
	ErrStatusConflict    = errors.New("order status changed concurrently")
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]Order, error)
	ListByFarmer(ctx context.Context, farmerID int64) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	IsFarmerParticipant(ctx context.Context, farmerID, orderID int64) (bool, error)
	FarmerIDsForOrder(ctx context.Context, orderID int64) ([]int64, error)
	UpdateStatus(ctx context.Context, orderID int64, from, to Status) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// Create inserts the order with its items and decrements each product's
// stock, all in one transaction. The decrement is conditional on remaining
// stock so a product quantity can never go negative; hitting that condition
// aborts the whole order with ErrInsufficientStock.
func (r *postgresRepository) Create(ctx context.Context, o *Order) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("repository: failed to rollback after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("repository: failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	queryOrder := `
		INSERT INTO orders (buyer_id, order_number, status, total)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, queryOrder,
		o.BuyerID,
		o.OrderNumber,
		o.Status,
		o.Total,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID

		queryItem := `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		err = tx.QueryRow(ctx, queryItem,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.Price,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for product %d: %w", item.ProductID, err)
		}

		queryStock := `
			UPDATE products
			SET quantity = quantity - $1, updated_at = now()
			WHERE id = $2 AND quantity >= $1
		`
		cmdTag, execErr := tx.Exec(ctx, queryStock, item.Quantity, item.ProductID)
		if execErr != nil {
			err = fmt.Errorf("repository: failed to decrement stock for product %d: %w", item.ProductID, execErr)
			return err
		}
		if cmdTag.RowsAffected() == 0 {
			err = fmt.Errorf("%w: product %d", ErrInsufficientStock, item.ProductID)
			return err
		}
	}

	return nil
}

const orderColumns = "id, buyer_id, order_number, status, total, created_at"

func (r *postgresRepository) GetByID(ctx context.Context, orderID int64) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var o Order
	err := r.db.QueryRow(ctx, query, orderID).Scan(
		&o.ID,
		&o.BuyerID,
		&o.OrderNumber,
		&o.Status,
		&o.Total,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order %d: %w", orderID, err)
	}

	items, err := r.loadItems(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	if o.Items == nil {
		o.Items = make([]OrderItem, 0)
	}

	return &o, nil
}

func (r *postgresRepository) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
	`
	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64][]OrderItem)
	for rows.Next() {
		var item OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}
	return items, nil
}

func (r *postgresRepository) collectOrders(ctx context.Context, rows pgx.Rows) ([]Order, error) {
	defer rows.Close()

	orders := make([]Order, 0)
	var orderIDs []int64
	for rows.Next() {
		var o Order
		err := rows.Scan(&o.ID, &o.BuyerID, &o.OrderNumber, &o.Status, &o.Total, &o.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Items = make([]OrderItem, 0)
		orders = append(orders, o)
		orderIDs = append(orderIDs, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if list, ok := items[orders[i].ID]; ok {
			orders[i].Items = list
		}
	}
	return orders, nil
}

func (r *postgresRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for buyer %d: %w", buyerID, err)
	}
	return r.collectOrders(ctx, rows)
}

// ListByFarmer returns every order containing at least one item whose product
// belongs to the farmer — a genuine set-membership query over all of the
// farmer's products.
func (r *postgresRepository) ListByFarmer(ctx context.Context, farmerID int64) ([]Order, error) {
	query := `
		SELECT DISTINCT o.id, o.buyer_id, o.order_number, o.status, o.total, o.created_at
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		WHERE p.farmer_id = $1
		ORDER BY o.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, farmerID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for farmer %d: %w", farmerID, err)
	}
	return r.collectOrders(ctx, rows)
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	return r.collectOrders(ctx, rows)
}

func (r *postgresRepository) IsFarmerParticipant(ctx context.Context, farmerID, orderID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM order_items oi
			JOIN products p ON p.id = oi.product_id
			WHERE oi.order_id = $1 AND p.farmer_id = $2
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, orderID, farmerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("repository: failed to check farmer participation: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) FarmerIDsForOrder(ctx context.Context, orderID int64) ([]int64, error) {
	query := `
		SELECT DISTINCT p.farmer_id
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query farmers for order %d: %w", orderID, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repository: failed to scan farmer id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating farmer ids: %w", err)
	}
	return ids, nil
}

// UpdateStatus moves an order from one exact status to another. The condition
// is part of the UPDATE itself, so two concurrent callers racing through the
// same transition see exactly one success; the loser gets ErrStatusConflict.
func (r *postgresRepository) UpdateStatus(ctx context.Context, orderID int64, from, to Status) error {
	query := `UPDATE orders SET status = $1 WHERE id = $2 AND status = $3`
	cmdTag, err := r.db.Exec(ctx, query, to, orderID, from)
	if err != nil {
		return fmt.Errorf("repository: failed to update order %d status: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either the order does not exist or its status moved under us.
		var exists bool
		if checkErr := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); checkErr != nil {
			return fmt.Errorf("repository: failed to check order %d existence: %w", orderID, checkErr)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStatusConflict
	}
	return nil
}
