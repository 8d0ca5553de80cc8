package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrMenuItemNotFound   = errors.New("menu item not found")
)

// RestaurantFilter narrows restaurant queries. Zero values mean no
// restriction.
type RestaurantFilter struct {
	Country    string
	ActiveOnly bool
}

type Repository interface {
	CreateRestaurant(ctx context.Context, r *Restaurant) error
	UpdateRestaurant(ctx context.Context, r *Restaurant) error
	RestaurantByID(ctx context.Context, id uuid.UUID) (*Restaurant, error)
	ListRestaurants(ctx context.Context, filter RestaurantFilter) ([]Restaurant, error)

	CreateMenuItem(ctx context.Context, m *MenuItem) error
	UpdateMenuItem(ctx context.Context, m *MenuItem) error
	MenuItemByID(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	ListMenuItems(ctx context.Context, restaurantID uuid.UUID, availableOnly bool) ([]MenuItem, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateRestaurant(ctx context.Context, rest *Restaurant) error {
	if rest.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate restaurant ID: %w", err)
		}
		rest.ID = id
	}
	now := time.Now().UTC()
	rest.CreatedAt = now
	rest.UpdatedAt = now

	query := `
		INSERT INTO restaurants (id, name, country, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, rest.ID, rest.Name, rest.Country, rest.IsActive, rest.CreatedAt, rest.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert restaurant: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateRestaurant(ctx context.Context, rest *Restaurant) error {
	rest.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE restaurants
		SET name = $1, country = $2, is_active = $3, updated_at = $4
		WHERE id = $5
	`
	cmdTag, err := r.db.Exec(ctx, query, rest.Name, rest.Country, rest.IsActive, rest.UpdatedAt, rest.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to update restaurant %s: %w", rest.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}

func (r *postgresRepository) RestaurantByID(ctx context.Context, id uuid.UUID) (*Restaurant, error) {
	query := `
		SELECT id, name, country, is_active, created_at, updated_at
		FROM restaurants
		WHERE id = $1
	`

	var rest Restaurant
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rest.ID, &rest.Name, &rest.Country, &rest.IsActive, &rest.CreatedAt, &rest.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: failed to select restaurant %s: %w", id, err)
	}
	return &rest, nil
}

func (r *postgresRepository) ListRestaurants(ctx context.Context, filter RestaurantFilter) ([]Restaurant, error) {
	conds := make([]string, 0, 2)
	args := make([]any, 0, 2)
	if filter.ActiveOnly {
		conds = append(conds, "is_active = TRUE")
	}
	if filter.Country != "" {
		args = append(args, filter.Country)
		conds = append(conds, fmt.Sprintf("country = $%d", len(args)))
	}

	query := "SELECT id, name, country, is_active, created_at, updated_at FROM restaurants"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := make([]Restaurant, 0)
	for rows.Next() {
		var rest Restaurant
		err := rows.Scan(&rest.ID, &rest.Name, &rest.Country, &rest.IsActive, &rest.CreatedAt, &rest.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan restaurant: %w", err)
		}
		restaurants = append(restaurants, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating restaurants: %w", err)
	}
	return restaurants, nil
}

func (r *postgresRepository) CreateMenuItem(ctx context.Context, m *MenuItem) error {
	if m.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate menu item ID: %w", err)
		}
		m.ID = id
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	query := `
		INSERT INTO menu_items (id, restaurant_id, name, description, price, category, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		m.ID, m.RestaurantID, m.Name, m.Description, m.Price, m.Category, m.IsAvailable, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert menu item: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateMenuItem(ctx context.Context, m *MenuItem) error {
	m.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE menu_items
		SET name = $1, description = $2, price = $3, category = $4, is_available = $5, updated_at = $6
		WHERE id = $7
	`
	cmdTag, err := r.db.Exec(ctx, query, m.Name, m.Description, m.Price, m.Category, m.IsAvailable, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to update menu item %s: %w", m.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

func (r *postgresRepository) MenuItemByID(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	query := `
		SELECT id, restaurant_id, name, description, price, category, is_available, created_at, updated_at
		FROM menu_items
		WHERE id = $1
	`

	var m MenuItem
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Price, &m.Category, &m.IsAvailable, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: failed to select menu item %s: %w", id, err)
	}
	return &m, nil
}

func (r *postgresRepository) ListMenuItems(ctx context.Context, restaurantID uuid.UUID, availableOnly bool) ([]MenuItem, error) {
	query := `
		SELECT id, restaurant_id, name, description, price, category, is_available, created_at, updated_at
		FROM menu_items
		WHERE restaurant_id = $1
	`
	if availableOnly {
		query += " AND is_available = TRUE"
	}
	query += " ORDER BY category, name"

	rows, err := r.db.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query menu items for restaurant %s: %w", restaurantID, err)
	}
	defer rows.Close()

	items := make([]MenuItem, 0)
	for rows.Next() {
		var m MenuItem
		err := rows.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Price, &m.Category, &m.IsAvailable, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan menu item: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating menu items: %w", err)
	}
	return items, nil
}
