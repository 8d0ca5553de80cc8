package order

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// StatusUpdate carries the only fields writable after creation. Line items,
// totals and the order number are fixed once the order exists.
type StatusUpdate struct {
	Status          Status
	PaymentStatus   PaymentStatus
	PaymentMethodID *uuid.UUID
}

type Repository interface {
	Create(ctx context.Context, o *Order) error
	FindMany(ctx context.Context, scope Scope) ([]Order, error)
	// FindOne returns nil when no order matches the id within the scope.
	FindOne(ctx context.Context, id uuid.UUID, scope Scope) (*Order, error)
	// UpdateStatus applies upd only if the order still has status `from` and
	// matches the scope. It reports whether a row was updated; false means
	// the guard failed (concurrent transition, scope mismatch, or no such
	// order).
	UpdateStatus(ctx context.Context, id uuid.UUID, from Status, upd StatusUpdate, scope Scope) (bool, error)
}

const (
	maxAttempts = 3
	retryDelay  = 100 * time.Millisecond
)

type postgresRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewRepository(db *pgxpool.Pool, timeout time.Duration) Repository {
	return &postgresRepository{db: db, timeout: timeout}
}

// retryable classifies storage failures worth another attempt: timeouts,
// broken connections, serialization conflicts and deadlocks.
func retryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "08006", "08003":
			return true
		}
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// withRetry runs fn with a bounded per-attempt timeout, retrying transient
// failures a fixed number of times before surfacing an InfraError.
func (r *postgresRepository) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return newInfraError(op, false, err)
		}
		if ctx.Err() != nil {
			break
		}

		log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("repository: transient storage failure")
		if attempt < maxAttempts {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return newInfraError(op, true, ctx.Err())
			}
		}
	}
	return newInfraError(op, true, lastErr)
}

// nextOrderNumber reserves the next per-year sequence value inside tx. The
// upsert increments atomically, so concurrent creations can never observe
// the same value.
func nextOrderNumber(ctx context.Context, tx pgx.Tx, now time.Time) (string, error) {
	query := `
		INSERT INTO order_counters (year, current_value)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET current_value = order_counters.current_value + 1
		RETURNING current_value
	`

	year := now.Year()
	var seq int64
	if err := tx.QueryRow(ctx, query, year).Scan(&seq); err != nil {
		return "", fmt.Errorf("repository: failed to advance order counter for year %d: %w", year, err)
	}

	return FormatOrderNumber(year, seq), nil
}

// FormatOrderNumber renders the human-readable order number for a per-year
// sequence value.
func FormatOrderNumber(year int, seq int64) string {
	return fmt.Sprintf("ORD-%d-%04d", year, seq)
}

func (r *postgresRepository) Create(ctx context.Context, o *Order) error {
	if o.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate order ID: %w", err)
		}
		o.ID = id
	}

	return r.withRetry(ctx, "create", func(ctx context.Context) (err error) {
		tx, err := r.db.Begin(ctx)
		if err != nil {
			return fmt.Errorf("repository: failed to begin transaction: %w", err)
		}
		defer func() {
			if err != nil {
				if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
					log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("repository: failed to rollback create transaction")
				}
			}
		}()

		now := time.Now().UTC()

		orderNumber, err := nextOrderNumber(ctx, tx, now)
		if err != nil {
			return err
		}
		o.OrderNumber = orderNumber
		o.CreatedAt = now
		o.UpdatedAt = now

		queryOrder := `
			INSERT INTO orders (id, order_number, owner_user_id, owner_country, restaurant_id, restaurant_name,
				total_amount, status, payment_status, payment_method_id, created_by_user_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`
		_, err = tx.Exec(ctx, queryOrder,
			o.ID,
			o.OrderNumber,
			o.OwnerUserID,
			o.OwnerCountry,
			o.RestaurantID,
			o.RestaurantName,
			o.TotalAmount,
			string(o.Status),
			string(o.PaymentStatus),
			o.PaymentMethodID,
			o.CreatedByUserID,
			o.CreatedAt,
			o.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order: %w", err)
		}

		queryItem := `
			INSERT INTO order_items (id, order_id, menu_item_id, name, unit_price, quantity, subtotal, position, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		for i := range o.LineItems {
			item := &o.LineItems[i]

			itemID, genErr := uuid.NewV4()
			if genErr != nil {
				return fmt.Errorf("repository: failed to generate line item ID: %w", genErr)
			}
			item.ID = itemID

			_, err = tx.Exec(ctx, queryItem,
				item.ID,
				o.ID,
				item.MenuItemID,
				item.Name,
				item.UnitPrice,
				item.Quantity,
				item.Subtotal,
				i,
				now,
			)
			if err != nil {
				return fmt.Errorf("repository: failed to insert line item for order %s: %w", o.ID, err)
			}
		}

		if err = tx.Commit(ctx); err != nil {
			return fmt.Errorf("repository: failed to commit create transaction: %w", err)
		}
		return nil
	})
}

const orderColumns = `id, order_number, owner_user_id, owner_country, restaurant_id, restaurant_name,
	total_amount, status, payment_status, payment_method_id, created_by_user_id, created_at, updated_at`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.OwnerUserID,
		&o.OwnerCountry,
		&o.RestaurantID,
		&o.RestaurantName,
		&o.TotalAmount,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentMethodID,
		&o.CreatedByUserID,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

func (r *postgresRepository) FindMany(ctx context.Context, scope Scope) (orders []Order, err error) {
	err = r.withRetry(ctx, "find_many", func(ctx context.Context) error {
		conds, args := scope.Append(nil, nil)
		query := "SELECT " + orderColumns + " FROM orders"
		if len(conds) > 0 {
			query += " WHERE " + strings.Join(conds, " AND ")
		}
		query += " ORDER BY created_at DESC"

		rows, err := r.db.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("repository: failed to query orders: %w", err)
		}
		defer rows.Close()

		ordersMap := make(map[uuid.UUID]*Order)
		var orderIDs []uuid.UUID
		result := make([]Order, 0)

		for rows.Next() {
			var o Order
			if err := scanOrder(rows, &o); err != nil {
				return fmt.Errorf("repository: failed to scan order: %w", err)
			}
			o.LineItems = make([]LineItem, 0)
			result = append(result, o)
			orderIDs = append(orderIDs, o.ID)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("repository: error iterating orders: %w", err)
		}

		for i := range result {
			ordersMap[result[i].ID] = &result[i]
		}

		if len(orderIDs) > 0 {
			if err := r.loadLineItems(ctx, orderIDs, ordersMap); err != nil {
				return err
			}
		}

		orders = result
		return nil
	})
	return orders, err
}

func (r *postgresRepository) loadLineItems(ctx context.Context, orderIDs []uuid.UUID, ordersMap map[uuid.UUID]*Order) error {
	query := `
		SELECT id, order_id, menu_item_id, name, unit_price, quantity, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY position
	`

	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return fmt.Errorf("repository: failed to query line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item LineItem
		var orderID uuid.UUID
		err := rows.Scan(
			&item.ID,
			&orderID,
			&item.MenuItemID,
			&item.Name,
			&item.UnitPrice,
			&item.Quantity,
			&item.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to scan line item: %w", err)
		}
		if o, ok := ordersMap[orderID]; ok {
			o.LineItems = append(o.LineItems, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("repository: error iterating line items: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindOne(ctx context.Context, id uuid.UUID, scope Scope) (result *Order, err error) {
	err = r.withRetry(ctx, "find_one", func(ctx context.Context) error {
		conds := []string{"id = $1"}
		args := []any{id}
		conds, args = scope.Append(conds, args)

		query := "SELECT " + orderColumns + " FROM orders WHERE " + strings.Join(conds, " AND ")

		var o Order
		if err := scanOrder(r.db.QueryRow(ctx, query, args...), &o); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				result = nil
				return nil
			}
			return fmt.Errorf("repository: failed to select order %s: %w", id, err)
		}

		o.LineItems = make([]LineItem, 0)
		ordersMap := map[uuid.UUID]*Order{o.ID: &o}
		if err := r.loadLineItems(ctx, []uuid.UUID{o.ID}, ordersMap); err != nil {
			return err
		}

		result = &o
		return nil
	})
	return result, err
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from Status, upd StatusUpdate, scope Scope) (updated bool, err error) {
	err = r.withRetry(ctx, "update_status", func(ctx context.Context) error {
		conds := []string{"id = $4", "status = $5"}
		args := []any{string(upd.Status), string(upd.PaymentStatus), upd.PaymentMethodID, id, string(from)}
		conds, args = scope.Append(conds, args)

		query := `
			UPDATE orders
			SET status = $1, payment_status = $2, payment_method_id = COALESCE($3, payment_method_id), updated_at = NOW()
			WHERE ` + strings.Join(conds, " AND ")

		cmdTag, err := r.db.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("repository: failed to update order %s status: %w", id, err)
		}

		updated = cmdTag.RowsAffected() > 0
		return nil
	})
	return updated, err
}
