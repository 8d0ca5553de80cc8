package catalog

import (
	"context"

	"github.com/gofrs/uuid"

	"github.com/mayank1327/food-ordering-app/internal/order"
)

// Lookup adapts the catalog repository to the order engine's collaborator
// contract. Availability flags pass through untouched; the order engine
// decides what unavailable means.
type Lookup struct {
	repo Repository
}

func NewLookup(repo Repository) *Lookup {
	return &Lookup{repo: repo}
}

func (l *Lookup) MenuItemByID(ctx context.Context, id uuid.UUID) (*order.CatalogItem, error) {
	item, err := l.repo.MenuItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	return &order.CatalogItem{
		ID:           item.ID,
		RestaurantID: item.RestaurantID,
		Name:         item.Name,
		Price:        item.Price,
		Available:    item.IsAvailable,
	}, nil
}

func (l *Lookup) RestaurantByID(ctx context.Context, id uuid.UUID) (*order.CatalogRestaurant, error) {
	rest, err := l.repo.RestaurantByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rest == nil {
		return nil, nil
	}
	return &order.CatalogRestaurant{
		ID:      rest.ID,
		Name:    rest.Name,
		Country: rest.Country,
		Active:  rest.IsActive,
	}, nil
}
