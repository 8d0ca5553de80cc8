package order

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mayank1327/food-ordering-app/internal/identity"
)

// Wallet is the payment-method collaborator contract: presence by id only,
// card details are never seen here.
type Wallet interface {
	PaymentMethodExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type CreateInput struct {
	RestaurantID uuid.UUID     `json:"restaurant_id"`
	Items        []ItemRequest `json:"items"`
}

type Service interface {
	Create(ctx context.Context, caller identity.Identity, in CreateInput) (*Order, error)
	List(ctx context.Context, caller identity.Identity) ([]Order, error)
	Get(ctx context.Context, caller identity.Identity, orderID uuid.UUID) (*Order, error)
	Place(ctx context.Context, caller identity.Identity, orderID, paymentMethodID uuid.UUID) (*Order, error)
	Cancel(ctx context.Context, caller identity.Identity, orderID uuid.UUID) (*Order, error)
}

type service struct {
	repo    Repository
	catalog CatalogLookup
	wallet  Wallet
}

func NewService(repo Repository, catalog CatalogLookup, wallet Wallet) Service {
	return &service{repo: repo, catalog: catalog, wallet: wallet}
}

func (s *service) Create(ctx context.Context, caller identity.Identity, in CreateInput) (*Order, error) {
	if !Permitted(OpCreate, caller.Role) {
		return nil, ErrForbidden
	}
	if in.RestaurantID == uuid.Nil {
		return nil, fmt.Errorf("%w: restaurant id is required", ErrValidation)
	}
	if len(in.Items) == 0 {
		log.Warn().Stringer("user_id", caller.UserID).Msg("service: attempt to create order with no items")
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}

	restaurant, err := s.catalog.RestaurantByID(ctx, in.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to look up restaurant %s: %w", in.RestaurantID, err)
	}
	if restaurant == nil {
		return nil, fmt.Errorf("%w: %s", ErrRestaurantNotFound, in.RestaurantID)
	}

	lineItems, total, err := PriceOrder(ctx, in.Items, s.catalog)
	if err != nil {
		return nil, err
	}

	o := &Order{
		OwnerUserID:     caller.UserID,
		OwnerCountry:    caller.Country,
		RestaurantID:    restaurant.ID,
		RestaurantName:  restaurant.Name,
		LineItems:       lineItems,
		TotalAmount:     total,
		Status:          StatusPending,
		PaymentStatus:   PaymentUnpaid,
		CreatedByUserID: caller.UserID,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error().Err(err).Stringer("user_id", caller.UserID).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().
		Stringer("order_id", o.ID).
		Str("order_number", o.OrderNumber).
		Stringer("user_id", caller.UserID).
		Msg("service: order created")

	snapshot := o.Snapshot()
	return &snapshot, nil
}

func (s *service) List(ctx context.Context, caller identity.Identity) ([]Order, error) {
	if !Permitted(OpList, caller.Role) {
		return nil, ErrForbidden
	}

	orders, err := s.repo.FindMany(ctx, ResolveScope(caller))
	if err != nil {
		log.Error().Err(err).Stringer("user_id", caller.UserID).Msg("service: failed to list orders")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *service) Get(ctx context.Context, caller identity.Identity, orderID uuid.UUID) (*Order, error) {
	if !Permitted(OpGet, caller.Role) {
		return nil, ErrForbidden
	}

	o, err := s.repo.FindOne(ctx, orderID, ResolveScope(caller))
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch order")
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}
	if o == nil {
		return nil, ErrNotFound
	}

	snapshot := o.Snapshot()
	return &snapshot, nil
}

func (s *service) Place(ctx context.Context, caller identity.Identity, orderID, paymentMethodID uuid.UUID) (*Order, error) {
	if !Permitted(OpPlace, caller.Role) {
		return nil, ErrForbidden
	}
	if paymentMethodID == uuid.Nil {
		return nil, fmt.Errorf("%w: payment method is required", ErrValidation)
	}

	exists, err := s.wallet.PaymentMethodExists(ctx, paymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to check payment method %s: %w", paymentMethodID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: unknown payment method", ErrValidation)
	}

	scope := ResolveActionScope(caller)

	// The pending precondition and the scope sit in the same guarded update,
	// so of two concurrent placements exactly one can win.
	upd := StatusUpdate{
		Status:          StatusConfirmed,
		PaymentStatus:   PaymentPaid,
		PaymentMethodID: &paymentMethodID,
	}
	updated, err := s.repo.UpdateStatus(ctx, orderID, StatusPending, upd, scope)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to place order")
		return nil, fmt.Errorf("service: failed to place order: %w", err)
	}
	if !updated {
		return nil, ErrNotFoundOrProcessed
	}

	log.Info().Stringer("order_id", orderID).Stringer("user_id", caller.UserID).Msg("service: order placed")

	return s.Get(ctx, caller, orderID)
}

func (s *service) Cancel(ctx context.Context, caller identity.Identity, orderID uuid.UUID) (*Order, error) {
	if !Permitted(OpCancel, caller.Role) {
		return nil, ErrForbidden
	}

	scope := ResolveActionScope(caller)

	// Optimistic read-then-guarded-update: losing a race re-reads once so
	// the caller gets the error matching the order's final state.
	for attempt := 0; attempt < 2; attempt++ {
		current, err := s.repo.FindOne(ctx, orderID, scope)
		if err != nil {
			log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch order for cancel")
			return nil, fmt.Errorf("service: failed to fetch order for cancel: %w", err)
		}
		if current == nil {
			return nil, ErrNotFound
		}

		switch current.Status {
		case StatusCancelled:
			return nil, ErrAlreadyCancelled
		case StatusDelivered:
			return nil, ErrTerminalState
		}
		if !CanTransition(current.Status, StatusCancelled) {
			return nil, fmt.Errorf("%w: cannot cancel from status %s", ErrTerminalState, current.Status)
		}

		paymentStatus := current.PaymentStatus
		if paymentStatus == PaymentPaid {
			paymentStatus = PaymentRefunded
		}

		upd := StatusUpdate{Status: StatusCancelled, PaymentStatus: paymentStatus}
		updated, err := s.repo.UpdateStatus(ctx, orderID, current.Status, upd, scope)
		if err != nil {
			log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to cancel order")
			return nil, fmt.Errorf("service: failed to cancel order: %w", err)
		}
		if !updated {
			// Raced with a concurrent transition; re-read to report the
			// state that won.
			continue
		}

		log.Info().
			Stringer("order_id", orderID).
			Str("old_status", current.Status.String()).
			Str("payment_status", paymentStatus.String()).
			Msg("service: order cancelled")

		return s.Get(ctx, caller, orderID)
	}

	return nil, ErrNotFoundOrProcessed
}
