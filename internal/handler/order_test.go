package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayank1327/food-ordering-app/internal/handler"
	"github.com/mayank1327/food-ordering-app/internal/identity"
	"github.com/mayank1327/food-ordering-app/internal/order"
)

type mockOrderService struct {
	createFunc func(ctx context.Context, caller identity.Identity, in order.CreateInput) (*order.Order, error)
	listFunc   func(ctx context.Context, caller identity.Identity) ([]order.Order, error)
	getFunc    func(ctx context.Context, caller identity.Identity, orderID uuid.UUID) (*order.Order, error)
	placeFunc  func(ctx context.Context, caller identity.Identity, orderID, paymentMethodID uuid.UUID) (*order.Order, error)
	cancelFunc func(ctx context.Context, caller identity.Identity, orderID uuid.UUID) (*order.Order, error)
}

func (m *mockOrderService) Create(ctx context.Context, caller identity.Identity, in order.CreateInput) (*order.Order, error) {
	return m.createFunc(ctx, caller, in)
}

func (m *mockOrderService) List(ctx context.Context, caller identity.Identity) ([]order.Order, error) {
	return m.listFunc(ctx, caller)
}

func (m *mockOrderService) Get(ctx context.Context, caller identity.Identity, orderID uuid.UUID) (*order.Order, error) {
	return m.getFunc(ctx, caller, orderID)
}

func (m *mockOrderService) Place(ctx context.Context, caller identity.Identity, orderID, paymentMethodID uuid.UUID) (*order.Order, error) {
	return m.placeFunc(ctx, caller, orderID, paymentMethodID)
}

func (m *mockOrderService) Cancel(ctx context.Context, caller identity.Identity, orderID uuid.UUID) (*order.Order, error) {
	return m.cancelFunc(ctx, caller, orderID)
}

func newOrderRouter(svc order.Service) chi.Router {
	h := handler.NewOrderHandler(svc)
	r := chi.NewRouter()
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/place", h.Place)
		r.Post("/{id}/cancel", h.Cancel)
	})
	return r
}

func testCaller(t *testing.T, role identity.Role) identity.Identity {
	t.Helper()
	userID, err := uuid.NewV4()
	require.NoError(t, err)
	return identity.Identity{UserID: userID, Role: role, Country: identity.CountryIndia}
}

func authed(req *http.Request, caller identity.Identity) *http.Request {
	return req.WithContext(identity.NewContext(req.Context(), caller))
}

func sampleOrder(t *testing.T, owner identity.Identity) *order.Order {
	t.Helper()
	id, err := uuid.NewV4()
	require.NoError(t, err)
	return &order.Order{
		ID:            id,
		OrderNumber:   "ORD-2026-0001",
		OwnerUserID:   owner.UserID,
		OwnerCountry:  owner.Country,
		TotalAmount:   decimal.NewFromInt(25),
		Status:        order.StatusPending,
		PaymentStatus: order.PaymentUnpaid,
	}
}

func TestOrderHandlerCreate(t *testing.T) {
	caller := testCaller(t, identity.RoleMember)
	restaurantID, err := uuid.NewV4()
	require.NoError(t, err)
	body := fmt.Sprintf(`{"restaurant_id":%q,"items":[{"menu_item_id":%q,"quantity":2}]}`, restaurantID, restaurantID)

	t.Run("created", func(t *testing.T) {
		svc := &mockOrderService{
			createFunc: func(_ context.Context, got identity.Identity, in order.CreateInput) (*order.Order, error) {
				assert.Equal(t, caller.UserID, got.UserID)
				assert.Equal(t, restaurantID, in.RestaurantID)
				assert.Len(t, in.Items, 1)
				return sampleOrder(t, got), nil
			},
		}

		req := authed(httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body)), caller)
		w := httptest.NewRecorder()
		newOrderRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		var got order.Order
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "ORD-2026-0001", got.OrderNumber)
	})

	t.Run("invalid_body", func(t *testing.T) {
		svc := &mockOrderService{}
		req := authed(httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString("{")), caller)
		w := httptest.NewRecorder()
		newOrderRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no_identity", func(t *testing.T) {
		svc := &mockOrderService{}
		req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		newOrderRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("validation_error", func(t *testing.T) {
		svc := &mockOrderService{
			createFunc: func(context.Context, identity.Identity, order.CreateInput) (*order.Order, error) {
				return nil, fmt.Errorf("%w: order must contain at least one item", order.ErrValidation)
			},
		}
		req := authed(httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body)), caller)
		w := httptest.NewRecorder()
		newOrderRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), order.ErrValidation.Error())
		assert.NotContains(t, w.Body.String(), "at least one item")
	})

	t.Run("unknown_restaurant", func(t *testing.T) {
		svc := &mockOrderService{
			createFunc: func(context.Context, identity.Identity, order.CreateInput) (*order.Order, error) {
				return nil, fmt.Errorf("%w: %s", order.ErrRestaurantNotFound, restaurantID)
			},
		}
		req := authed(httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body)), caller)
		w := httptest.NewRecorder()
		newOrderRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderHandlerList(t *testing.T) {
	caller := testCaller(t, identity.RoleAdmin)
	svc := &mockOrderService{
		listFunc: func(_ context.Context, got identity.Identity) ([]order.Order, error) {
			assert.Equal(t, caller.UserID, got.UserID)
			return []order.Order{*sampleOrder(t, got), *sampleOrder(t, got)}, nil
		},
	}

	req := authed(httptest.NewRequest(http.MethodGet, "/orders", nil), caller)
	w := httptest.NewRecorder()
	newOrderRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []order.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestOrderHandlerGet(t *testing.T) {
	caller := testCaller(t, identity.RoleMember)

	t.Run("found", func(t *testing.T) {
		want := sampleOrder(t, caller)
		svc := &mockOrderService{
			getFunc: func(_ context.Context, _ identity.Identity, orderID uuid.UUID) (*order.Order, error) {
				assert.Equal(t, want.ID, orderID)
				return want, nil
			},
		}

		req := authed(httptest.NewRequest(http.MethodGet, "/orders/"+want.ID.String(), nil), caller)
		w := httptest.NewRecorder()
		newOrderRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid_id", func(t *testing.T) {
		svc := &mockOrderService{}
		req := authed(httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil), caller)
		w := httptest.NewRecorder()
		newOrderRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not_found", func(t *testing.T) {
		svc := &mockOrderService{
			getFunc: func(context.Context, identity.Identity, uuid.UUID) (*order.Order, error) {
				return nil, order.ErrNotFound
			},
		}
		id, err := uuid.NewV4()
		require.NoError(t, err)
		req := authed(httptest.NewRequest(http.MethodGet, "/orders/"+id.String(), nil), caller)
		w := httptest.NewRecorder()
		newOrderRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderHandlerPlace(t *testing.T) {
	caller := testCaller(t, identity.RoleManager)
	orderID, err := uuid.NewV4()
	require.NoError(t, err)
	pmID, err := uuid.NewV4()
	require.NoError(t, err)
	body := fmt.Sprintf(`{"payment_method_id":%q}`, pmID)

	t.Run("placed", func(t *testing.T) {
		svc := &mockOrderService{
			placeFunc: func(_ context.Context, _ identity.Identity, gotOrder, gotPM uuid.UUID) (*order.Order, error) {
				assert.Equal(t, orderID, gotOrder)
				assert.Equal(t, pmID, gotPM)
				placed := sampleOrder(t, caller)
				placed.Status = order.StatusConfirmed
				placed.PaymentStatus = order.PaymentPaid
				return placed, nil
			},
		}

		req := authed(httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/place", bytes.NewBufferString(body)), caller)
		w := httptest.NewRecorder()
		newOrderRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var got order.Order
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, order.StatusConfirmed, got.Status)
	})

	t.Run("forbidden", func(t *testing.T) {
		svc := &mockOrderService{
			placeFunc: func(context.Context, identity.Identity, uuid.UUID, uuid.UUID) (*order.Order, error) {
				return nil, order.ErrForbidden
			},
		}
		req := authed(httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/place", bytes.NewBufferString(body)), caller)
		w := httptest.NewRecorder()
		newOrderRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("already_processed", func(t *testing.T) {
		svc := &mockOrderService{
			placeFunc: func(context.Context, identity.Identity, uuid.UUID, uuid.UUID) (*order.Order, error) {
				return nil, order.ErrNotFoundOrProcessed
			},
		}
		req := authed(httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/place", bytes.NewBufferString(body)), caller)
		w := httptest.NewRecorder()
		newOrderRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("storage_unavailable", func(t *testing.T) {
		svc := &mockOrderService{
			placeFunc: func(context.Context, identity.Identity, uuid.UUID, uuid.UUID) (*order.Order, error) {
				return nil, fmt.Errorf("service: failed to place order: %w",
					&order.InfraError{Op: "update order status", Retryable: true, Cause: context.DeadlineExceeded})
			},
		}
		req := authed(httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/place", bytes.NewBufferString(body)), caller)
		w := httptest.NewRecorder()
		newOrderRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestOrderHandlerCancel(t *testing.T) {
	caller := testCaller(t, identity.RoleManager)
	orderID, err := uuid.NewV4()
	require.NoError(t, err)

	t.Run("cancelled", func(t *testing.T) {
		svc := &mockOrderService{
			cancelFunc: func(_ context.Context, _ identity.Identity, got uuid.UUID) (*order.Order, error) {
				assert.Equal(t, orderID, got)
				cancelled := sampleOrder(t, caller)
				cancelled.Status = order.StatusCancelled
				return cancelled, nil
			},
		}
		req := authed(httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/cancel", nil), caller)
		w := httptest.NewRecorder()
		newOrderRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("already_cancelled", func(t *testing.T) {
		svc := &mockOrderService{
			cancelFunc: func(context.Context, identity.Identity, uuid.UUID) (*order.Order, error) {
				return nil, order.ErrAlreadyCancelled
			},
		}
		req := authed(httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/cancel", nil), caller)
		w := httptest.NewRecorder()
		newOrderRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("delivered", func(t *testing.T) {
		svc := &mockOrderService{
			cancelFunc: func(context.Context, identity.Identity, uuid.UUID) (*order.Order, error) {
				return nil, order.ErrTerminalState
			},
		}
		req := authed(httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/cancel", nil), caller)
		w := httptest.NewRecorder()
		newOrderRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
