package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/mayank1327/food-ordering-app/internal/identity"
)

var (
	ErrNotFound   = errors.New("payment method not found")
	ErrValidation = errors.New("invalid payment method input")
)

const (
	TypeCreditCard = "credit_card"
	TypeDebitCard  = "debit_card"
	TypeUPI        = "upi"
)

func ValidType(t string) bool {
	switch t {
	case TypeCreditCard, TypeDebitCard, TypeUPI:
		return true
	}
	return false
}

type PaymentMethod struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Type      string    `json:"type"`
	Label     string    `json:"label"`
	LastFour  string    `json:"last_four"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AddInput struct {
	Type      string `json:"type"`
	Label     string `json:"label"`
	LastFour  string `json:"last_four"`
	IsDefault bool   `json:"is_default"`
}

type Repository interface {
	Create(ctx context.Context, pm *PaymentMethod) error
	ByID(ctx context.Context, id uuid.UUID) (*PaymentMethod, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]PaymentMethod, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, pm *PaymentMethod) error {
	if pm.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate payment method ID: %w", err)
		}
		pm.ID = id
	}
	now := time.Now().UTC()
	pm.CreatedAt = now
	pm.UpdatedAt = now

	query := `
		INSERT INTO payment_methods (id, user_id, type, label, last_four, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query, pm.ID, pm.UserID, pm.Type, pm.Label, pm.LastFour, pm.IsDefault, pm.CreatedAt, pm.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert payment method: %w", err)
	}
	return nil
}

func (r *postgresRepository) ByID(ctx context.Context, id uuid.UUID) (*PaymentMethod, error) {
	query := `
		SELECT id, user_id, type, label, last_four, is_default, created_at, updated_at
		FROM payment_methods
		WHERE id = $1
	`

	var pm PaymentMethod
	err := r.db.QueryRow(ctx, query, id).Scan(
		&pm.ID, &pm.UserID, &pm.Type, &pm.Label, &pm.LastFour, &pm.IsDefault, &pm.CreatedAt, &pm.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: failed to select payment method %s: %w", id, err)
	}
	return &pm, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]PaymentMethod, error) {
	query := `
		SELECT id, user_id, type, label, last_four, is_default, created_at, updated_at
		FROM payment_methods
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query payment methods for user %s: %w", userID, err)
	}
	defer rows.Close()

	methods := make([]PaymentMethod, 0)
	for rows.Next() {
		var pm PaymentMethod
		err := rows.Scan(&pm.ID, &pm.UserID, &pm.Type, &pm.Label, &pm.LastFour, &pm.IsDefault, &pm.CreatedAt, &pm.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan payment method: %w", err)
		}
		methods = append(methods, pm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating payment methods: %w", err)
	}
	return methods, nil
}

type Service interface {
	List(ctx context.Context, caller identity.Identity) ([]PaymentMethod, error)
	Get(ctx context.Context, caller identity.Identity, id uuid.UUID) (*PaymentMethod, error)
	Add(ctx context.Context, caller identity.Identity, in AddInput) (*PaymentMethod, error)
	// PaymentMethodExists is the presence check the order engine consumes
	// when placing an order.
	PaymentMethodExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, caller identity.Identity) ([]PaymentMethod, error) {
	methods, err := s.repo.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list payment methods: %w", err)
	}
	return methods, nil
}

func (s *service) Get(ctx context.Context, caller identity.Identity, id uuid.UUID) (*PaymentMethod, error) {
	pm, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch payment method: %w", err)
	}
	// Non-admin callers only ever see their own methods; a foreign id looks
	// like it does not exist.
	if pm == nil || (caller.Role != identity.RoleAdmin && pm.UserID != caller.UserID) {
		return nil, ErrNotFound
	}
	return pm, nil
}

func (s *service) Add(ctx context.Context, caller identity.Identity, in AddInput) (*PaymentMethod, error) {
	if !ValidType(in.Type) {
		return nil, fmt.Errorf("%w: unknown type %q", ErrValidation, in.Type)
	}
	if in.Label == "" {
		return nil, fmt.Errorf("%w: label is required", ErrValidation)
	}

	pm := &PaymentMethod{
		UserID:    caller.UserID,
		Type:      in.Type,
		Label:     in.Label,
		LastFour:  in.LastFour,
		IsDefault: in.IsDefault,
	}
	if err := s.repo.Create(ctx, pm); err != nil {
		return nil, fmt.Errorf("service: failed to add payment method: %w", err)
	}

	log.Info().Stringer("payment_method_id", pm.ID).Stringer("user_id", caller.UserID).Msg("service: payment method added")
	return pm, nil
}

func (s *service) PaymentMethodExists(ctx context.Context, id uuid.UUID) (bool, error) {
	pm, err := s.repo.ByID(ctx, id)
	if err != nil {
		return false, err
	}
	return pm != nil, nil
}
