package order

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusDelivered Status = "delivered"
)

func (s Status) String() string {
	return string(s)
}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func (ps PaymentStatus) String() string {
	return string(ps)
}

// LineItem is a priced snapshot of one menu item within an order. Name and
// unit price are copied from the catalog at creation time and never
// re-resolved.
type LineItem struct {
	ID         uuid.UUID       `json:"id"`
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"order_number"`
	OwnerUserID     uuid.UUID       `json:"owner_user_id"`
	OwnerCountry    string          `json:"owner_country"`
	RestaurantID    uuid.UUID       `json:"restaurant_id"`
	RestaurantName  string          `json:"restaurant_name"`
	LineItems       []LineItem      `json:"line_items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          Status          `json:"status"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	PaymentMethodID *uuid.UUID      `json:"payment_method_id,omitempty"`
	CreatedByUserID uuid.UUID       `json:"created_by_user_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Snapshot returns a value copy safe to hand to callers; mutating it does
// not touch the stored order.
func (o *Order) Snapshot() Order {
	cp := *o
	cp.LineItems = make([]LineItem, len(o.LineItems))
	copy(cp.LineItems, o.LineItems)
	if o.PaymentMethodID != nil {
		id := *o.PaymentMethodID
		cp.PaymentMethodID = &id
	}
	return cp
}

// allowedTransitions enumerates every legal status move. Delivered is set
// by the fulfillment system, never by this service, so no transition leads
// into it here; both terminal states have no way out.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusCancelled: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return allowedTransitions[from][to]
}
