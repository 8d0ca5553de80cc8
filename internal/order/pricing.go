package order

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// CatalogItem is the snapshot of a menu item the pricing step works from.
type CatalogItem struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	Price        decimal.Decimal
	Available    bool
}

// CatalogRestaurant is the restaurant view the order engine consumes.
type CatalogRestaurant struct {
	ID      uuid.UUID
	Name    string
	Country string
	Active  bool
}

// CatalogLookup is the catalog collaborator contract. A nil result with a
// nil error means the entity does not exist.
type CatalogLookup interface {
	MenuItemByID(ctx context.Context, id uuid.UUID) (*CatalogItem, error)
	RestaurantByID(ctx context.Context, id uuid.UUID) (*CatalogRestaurant, error)
}

// ItemRequest is one requested order line: which menu item and how many.
// Price and name always come from the catalog, never from the caller.
type ItemRequest struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
}

// PriceOrder resolves each requested item against the catalog and builds
// priced line items plus the order total. Duplicate menu item ids produce
// separate line items; quantities are not merged.
func PriceOrder(ctx context.Context, requested []ItemRequest, catalog CatalogLookup) ([]LineItem, decimal.Decimal, error) {
	lineItems := make([]LineItem, 0, len(requested))
	total := decimal.Zero

	for _, req := range requested {
		if req.Quantity < 1 {
			return nil, decimal.Zero, fmt.Errorf("%w: menu item %s requested with quantity %d", ErrInvalidQuantity, req.MenuItemID, req.Quantity)
		}

		item, err := catalog.MenuItemByID(ctx, req.MenuItemID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("pricing: failed to look up menu item %s: %w", req.MenuItemID, err)
		}
		if item == nil || !item.Available {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", ErrItemUnavailable, req.MenuItemID)
		}

		subtotal := item.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))

		lineItems = append(lineItems, LineItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			UnitPrice:  item.Price,
			Quantity:   req.Quantity,
			Subtotal:   subtotal,
		})
		total = total.Add(subtotal)
	}

	return lineItems, total, nil
}
