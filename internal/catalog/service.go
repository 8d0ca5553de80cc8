package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/mayank1327/food-ordering-app/internal/identity"
)

var (
	ErrForbidden  = errors.New("operation not permitted for role")
	ErrValidation = errors.New("invalid catalog input")
)

type RestaurantInput struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

type MenuItemInput struct {
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        string    `json:"price"`
	Category     string    `json:"category"`
}

type Service interface {
	ListRestaurants(ctx context.Context, caller identity.Identity) ([]Restaurant, error)
	GetRestaurant(ctx context.Context, caller identity.Identity, id uuid.UUID) (*Restaurant, error)
	ListMenu(ctx context.Context, caller identity.Identity, restaurantID uuid.UUID) ([]MenuItem, error)

	CreateRestaurant(ctx context.Context, caller identity.Identity, in RestaurantInput) (*Restaurant, error)
	UpdateRestaurant(ctx context.Context, caller identity.Identity, id uuid.UUID, in RestaurantInput) (*Restaurant, error)
	DeactivateRestaurant(ctx context.Context, caller identity.Identity, id uuid.UUID) (*Restaurant, error)

	CreateMenuItem(ctx context.Context, caller identity.Identity, in MenuItemInput) (*MenuItem, error)
	UpdateMenuItem(ctx context.Context, caller identity.Identity, id uuid.UUID, in MenuItemInput) (*MenuItem, error)
	DeactivateMenuItem(ctx context.Context, caller identity.Identity, id uuid.UUID) (*MenuItem, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func parsePrice(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: price is required", ErrValidation)
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed price %q", ErrValidation, raw)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return price, nil
}

// browseFilter scopes browsing to the caller's country for everyone but
// ADMIN, mirroring the order engine's country predicate.
func browseFilter(caller identity.Identity) RestaurantFilter {
	filter := RestaurantFilter{ActiveOnly: true}
	if caller.Role != identity.RoleAdmin {
		filter.Country = caller.Country
	}
	return filter
}

func (s *service) ListRestaurants(ctx context.Context, caller identity.Identity) ([]Restaurant, error) {
	restaurants, err := s.repo.ListRestaurants(ctx, browseFilter(caller))
	if err != nil {
		return nil, fmt.Errorf("service: failed to list restaurants: %w", err)
	}
	return restaurants, nil
}

func (s *service) GetRestaurant(ctx context.Context, caller identity.Identity, id uuid.UUID) (*Restaurant, error) {
	rest, err := s.repo.RestaurantByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch restaurant: %w", err)
	}
	if rest == nil || !visible(rest, caller) {
		return nil, ErrRestaurantNotFound
	}
	return rest, nil
}

func visible(rest *Restaurant, caller identity.Identity) bool {
	if !rest.IsActive {
		return false
	}
	if caller.Role == identity.RoleAdmin {
		return true
	}
	return rest.Country == caller.Country
}

func (s *service) ListMenu(ctx context.Context, caller identity.Identity, restaurantID uuid.UUID) ([]MenuItem, error) {
	if _, err := s.GetRestaurant(ctx, caller, restaurantID); err != nil {
		return nil, err
	}

	items, err := s.repo.ListMenuItems(ctx, restaurantID, true)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list menu items: %w", err)
	}
	return items, nil
}

func (s *service) CreateRestaurant(ctx context.Context, caller identity.Identity, in RestaurantInput) (*Restaurant, error) {
	if caller.Role != identity.RoleAdmin {
		return nil, ErrForbidden
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !identity.ValidCountry(in.Country) {
		return nil, fmt.Errorf("%w: unknown country %q", ErrValidation, in.Country)
	}

	rest := &Restaurant{Name: in.Name, Country: in.Country, IsActive: true}
	if err := s.repo.CreateRestaurant(ctx, rest); err != nil {
		return nil, fmt.Errorf("service: failed to create restaurant: %w", err)
	}

	log.Info().Stringer("restaurant_id", rest.ID).Str("country", rest.Country).Msg("service: restaurant created")
	return rest, nil
}

func (s *service) UpdateRestaurant(ctx context.Context, caller identity.Identity, id uuid.UUID, in RestaurantInput) (*Restaurant, error) {
	if caller.Role != identity.RoleAdmin {
		return nil, ErrForbidden
	}

	rest, err := s.repo.RestaurantByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch restaurant: %w", err)
	}
	if rest == nil {
		return nil, ErrRestaurantNotFound
	}

	if in.Name != "" {
		rest.Name = in.Name
	}
	if in.Country != "" {
		if !identity.ValidCountry(in.Country) {
			return nil, fmt.Errorf("%w: unknown country %q", ErrValidation, in.Country)
		}
		rest.Country = in.Country
	}

	if err := s.repo.UpdateRestaurant(ctx, rest); err != nil {
		return nil, fmt.Errorf("service: failed to update restaurant: %w", err)
	}
	return rest, nil
}

func (s *service) DeactivateRestaurant(ctx context.Context, caller identity.Identity, id uuid.UUID) (*Restaurant, error) {
	if caller.Role != identity.RoleAdmin {
		return nil, ErrForbidden
	}

	rest, err := s.repo.RestaurantByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch restaurant: %w", err)
	}
	if rest == nil {
		return nil, ErrRestaurantNotFound
	}

	rest.IsActive = false
	if err := s.repo.UpdateRestaurant(ctx, rest); err != nil {
		return nil, fmt.Errorf("service: failed to deactivate restaurant: %w", err)
	}

	log.Info().Stringer("restaurant_id", rest.ID).Msg("service: restaurant deactivated")
	return rest, nil
}

func (s *service) CreateMenuItem(ctx context.Context, caller identity.Identity, in MenuItemInput) (*MenuItem, error) {
	if caller.Role != identity.RoleAdmin {
		return nil, ErrForbidden
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !ValidCategory(in.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, in.Category)
	}

	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}

	rest, err := s.repo.RestaurantByID(ctx, in.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch restaurant: %w", err)
	}
	if rest == nil {
		return nil, ErrRestaurantNotFound
	}

	item := &MenuItem{
		RestaurantID: rest.ID,
		Name:         in.Name,
		Description:  in.Description,
		Price:        price,
		Category:     in.Category,
		IsAvailable:  true,
	}
	if err := s.repo.CreateMenuItem(ctx, item); err != nil {
		return nil, fmt.Errorf("service: failed to create menu item: %w", err)
	}

	log.Info().Stringer("menu_item_id", item.ID).Stringer("restaurant_id", rest.ID).Msg("service: menu item created")
	return item, nil
}

func (s *service) UpdateMenuItem(ctx context.Context, caller identity.Identity, id uuid.UUID, in MenuItemInput) (*MenuItem, error) {
	if caller.Role != identity.RoleAdmin {
		return nil, ErrForbidden
	}

	item, err := s.repo.MenuItemByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch menu item: %w", err)
	}
	if item == nil {
		return nil, ErrMenuItemNotFound
	}

	if in.Name != "" {
		item.Name = in.Name
	}
	if in.Description != "" {
		item.Description = in.Description
	}
	if in.Category != "" {
		if !ValidCategory(in.Category) {
			return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, in.Category)
		}
		item.Category = in.Category
	}
	if in.Price != "" {
		price, err := parsePrice(in.Price)
		if err != nil {
			return nil, err
		}
		item.Price = price
	}

	if err := s.repo.UpdateMenuItem(ctx, item); err != nil {
		return nil, fmt.Errorf("service: failed to update menu item: %w", err)
	}
	return item, nil
}

func (s *service) DeactivateMenuItem(ctx context.Context, caller identity.Identity, id uuid.UUID) (*MenuItem, error) {
	if caller.Role != identity.RoleAdmin {
		return nil, ErrForbidden
	}

	item, err := s.repo.MenuItemByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch menu item: %w", err)
	}
	if item == nil {
		return nil, ErrMenuItemNotFound
	}

	item.IsAvailable = false
	if err := s.repo.UpdateMenuItem(ctx, item); err != nil {
		return nil, fmt.Errorf("service: failed to deactivate menu item: %w", err)
	}

	log.Info().Stringer("menu_item_id", item.ID).Msg("service: menu item deactivated")
	return item, nil
}
