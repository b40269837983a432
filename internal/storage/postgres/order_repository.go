package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Create(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, total_minor, order_date, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		order.ID, order.CustomerID, order.TotalMinor, order.OrderDate, order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateID
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for position, productID := range order.ProductIDs {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_products (order_id, product_id, position)
			VALUES ($1,$2,$3)
		`,
			order.ID, productID, position,
		); err != nil {
			return fmt.Errorf("insert order product: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}

	return nil
}

func (r *orderRepository) Get(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var order domain.Order
	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, total_minor, order_date, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&order.ID, &order.CustomerID, &order.TotalMinor, &order.OrderDate, &order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	productIDs, err := r.loadProductIDs(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.ProductIDs = productIDs

	return order, nil
}

func (r *orderRepository) List(filter domain.OrderFilter) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		conditions []string
		args       []any
	)
	addCondition := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filter.TotalFrom != nil {
		addCondition("o.total_minor >= $%d", *filter.TotalFrom)
	}
	if filter.TotalTo != nil {
		addCondition("o.total_minor <= $%d", *filter.TotalTo)
	}
	if filter.OrderedFrom != nil {
		addCondition("o.order_date >= $%d", *filter.OrderedFrom)
	}
	if filter.OrderedTo != nil {
		addCondition("o.order_date <= $%d", *filter.OrderedTo)
	}
	if filter.CustomerNameContains != "" {
		addCondition("c.name ILIKE '%%' || $%d || '%%'", filter.CustomerNameContains)
	}
	if filter.ProductNameContains != "" {
		addCondition(`EXISTS (
			SELECT 1 FROM order_products op
			JOIN products p ON p.id = op.product_id
			WHERE op.order_id = o.id AND p.name ILIKE '%%' || $%d || '%%'
		)`, filter.ProductNameContains)
	}
	if filter.ProductID != "" {
		addCondition(`EXISTS (
			SELECT 1 FROM order_products op
			WHERE op.order_id = o.id AND op.product_id = $%d
		)`, filter.ProductID)
	}

	query := `
		SELECT o.id, o.customer_id, o.total_minor, o.order_date, o.created_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
	`
	if len(conditions) > 0 {
		query += "WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY o.created_at DESC, o.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID, &order.CustomerID, &order.TotalMinor, &order.OrderDate, &order.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		productIDs, err := r.loadProductIDs(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].ProductIDs = productIDs
	}

	return orders, nil
}

func (r *orderRepository) loadProductIDs(ctx context.Context, orderID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id
		FROM order_products
		WHERE order_id = $1
		ORDER BY position ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order products: %w", err)
	}
	defer rows.Close()

	productIDs := make([]string, 0)
	for rows.Next() {
		var productID string
		if err := rows.Scan(&productID); err != nil {
			return nil, fmt.Errorf("scan order product id: %w", err)
		}
		productIDs = append(productIDs, productID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order products: %w", err)
	}

	return productIDs, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
