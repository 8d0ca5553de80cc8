package catalog_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayank1327/food-ordering-app/internal/catalog"
	"github.com/mayank1327/food-ordering-app/internal/identity"
)

// fakeRepo keeps restaurants and menu items in memory and honors the
// filter semantics of the real repository.
type fakeRepo struct {
	restaurants map[uuid.UUID]catalog.Restaurant
	menuItems   map[uuid.UUID]catalog.MenuItem
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		restaurants: make(map[uuid.UUID]catalog.Restaurant),
		menuItems:   make(map[uuid.UUID]catalog.MenuItem),
	}
}

func (f *fakeRepo) CreateRestaurant(_ context.Context, r *catalog.Restaurant) error {
	if r.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		r.ID = id
	}
	f.restaurants[r.ID] = *r
	return nil
}

func (f *fakeRepo) UpdateRestaurant(_ context.Context, r *catalog.Restaurant) error {
	if _, ok := f.restaurants[r.ID]; !ok {
		return catalog.ErrRestaurantNotFound
	}
	f.restaurants[r.ID] = *r
	return nil
}

func (f *fakeRepo) RestaurantByID(_ context.Context, id uuid.UUID) (*catalog.Restaurant, error) {
	r, ok := f.restaurants[id]
	if !ok {
		return nil, nil
	}
	cp := r
	return &cp, nil
}

func (f *fakeRepo) ListRestaurants(_ context.Context, filter catalog.RestaurantFilter) ([]catalog.Restaurant, error) {
	out := make([]catalog.Restaurant, 0)
	for _, r := range f.restaurants {
		if filter.ActiveOnly && !r.IsActive {
			continue
		}
		if filter.Country != "" && r.Country != filter.Country {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRepo) CreateMenuItem(_ context.Context, m *catalog.MenuItem) error {
	if m.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		m.ID = id
	}
	f.menuItems[m.ID] = *m
	return nil
}

func (f *fakeRepo) UpdateMenuItem(_ context.Context, m *catalog.MenuItem) error {
	if _, ok := f.menuItems[m.ID]; !ok {
		return catalog.ErrMenuItemNotFound
	}
	f.menuItems[m.ID] = *m
	return nil
}

func (f *fakeRepo) MenuItemByID(_ context.Context, id uuid.UUID) (*catalog.MenuItem, error) {
	m, ok := f.menuItems[id]
	if !ok {
		return nil, nil
	}
	cp := m
	return &cp, nil
}

func (f *fakeRepo) ListMenuItems(_ context.Context, restaurantID uuid.UUID, availableOnly bool) ([]catalog.MenuItem, error) {
	out := make([]catalog.MenuItem, 0)
	for _, m := range f.menuItems {
		if m.RestaurantID != restaurantID {
			continue
		}
		if availableOnly && !m.IsAvailable {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

type fixture struct {
	repo    *fakeRepo
	svc     catalog.Service
	admin   identity.Identity
	manager identity.Identity
	member  identity.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeRepo()
	return &fixture{
		repo:    repo,
		svc:     catalog.NewService(repo),
		admin:   newIdentity(t, identity.RoleAdmin, identity.CountryAmerica),
		manager: newIdentity(t, identity.RoleManager, identity.CountryIndia),
		member:  newIdentity(t, identity.RoleMember, identity.CountryIndia),
	}
}

func newIdentity(t *testing.T, role identity.Role, country string) identity.Identity {
	t.Helper()
	id, err := uuid.NewV4()
	require.NoError(t, err)
	return identity.Identity{UserID: id, Role: role, Country: country}
}

func (fx *fixture) seedRestaurant(t *testing.T, name, country string, active bool) catalog.Restaurant {
	t.Helper()
	rest := catalog.Restaurant{Name: name, Country: country, IsActive: active}
	require.NoError(t, fx.repo.CreateRestaurant(context.Background(), &rest))
	return rest
}

func (fx *fixture) seedMenuItem(t *testing.T, restaurantID uuid.UUID, name string, price int64, available bool) catalog.MenuItem {
	t.Helper()
	item := catalog.MenuItem{
		RestaurantID: restaurantID,
		Name:         name,
		Price:        decimal.NewFromInt(price),
		Category:     catalog.CategoryMainCourse,
		IsAvailable:  available,
	}
	require.NoError(t, fx.repo.CreateMenuItem(context.Background(), &item))
	return item
}

func TestListRestaurantsScoping(t *testing.T) {
	fx := newFixture(t)
	fx.seedRestaurant(t, "Spice Route", identity.CountryIndia, true)
	fx.seedRestaurant(t, "Burger Barn", identity.CountryAmerica, true)
	fx.seedRestaurant(t, "Closed Kitchen", identity.CountryIndia, false)

	t.Run("member_sees_own_country_active_only", func(t *testing.T) {
		restaurants, err := fx.svc.ListRestaurants(context.Background(), fx.member)
		require.NoError(t, err)
		require.Len(t, restaurants, 1)
		assert.Equal(t, "Spice Route", restaurants[0].Name)
	})

	t.Run("manager_scoped_like_member", func(t *testing.T) {
		restaurants, err := fx.svc.ListRestaurants(context.Background(), fx.manager)
		require.NoError(t, err)
		require.Len(t, restaurants, 1)
		assert.Equal(t, "Spice Route", restaurants[0].Name)
	})

	t.Run("admin_sees_all_countries", func(t *testing.T) {
		restaurants, err := fx.svc.ListRestaurants(context.Background(), fx.admin)
		require.NoError(t, err)
		assert.Len(t, restaurants, 2)
	})
}

func TestGetRestaurantVisibility(t *testing.T) {
	fx := newFixture(t)
	indian := fx.seedRestaurant(t, "Spice Route", identity.CountryIndia, true)
	american := fx.seedRestaurant(t, "Burger Barn", identity.CountryAmerica, true)
	inactive := fx.seedRestaurant(t, "Closed Kitchen", identity.CountryIndia, false)

	t.Run("member_own_country", func(t *testing.T) {
		got, err := fx.svc.GetRestaurant(context.Background(), fx.member, indian.ID)
		require.NoError(t, err)
		assert.Equal(t, indian.ID, got.ID)
	})

	t.Run("member_foreign_country_hidden", func(t *testing.T) {
		_, err := fx.svc.GetRestaurant(context.Background(), fx.member, american.ID)
		assert.ErrorIs(t, err, catalog.ErrRestaurantNotFound)
	})

	t.Run("inactive_hidden_even_from_admin", func(t *testing.T) {
		_, err := fx.svc.GetRestaurant(context.Background(), fx.admin, inactive.ID)
		assert.ErrorIs(t, err, catalog.ErrRestaurantNotFound)
	})

	t.Run("admin_any_country", func(t *testing.T) {
		got, err := fx.svc.GetRestaurant(context.Background(), fx.admin, american.ID)
		require.NoError(t, err)
		assert.Equal(t, american.ID, got.ID)
	})
}

func TestListMenu(t *testing.T) {
	fx := newFixture(t)
	rest := fx.seedRestaurant(t, "Spice Route", identity.CountryIndia, true)
	fx.seedMenuItem(t, rest.ID, "Butter Chicken", 10, true)
	fx.seedMenuItem(t, rest.ID, "Retired Dish", 8, false)
	foreign := fx.seedRestaurant(t, "Burger Barn", identity.CountryAmerica, true)
	fx.seedMenuItem(t, foreign.ID, "Cheeseburger", 7, true)

	t.Run("available_items_only", func(t *testing.T) {
		items, err := fx.svc.ListMenu(context.Background(), fx.member, rest.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Butter Chicken", items[0].Name)
	})

	t.Run("foreign_restaurant_menu_hidden", func(t *testing.T) {
		_, err := fx.svc.ListMenu(context.Background(), fx.member, foreign.ID)
		assert.ErrorIs(t, err, catalog.ErrRestaurantNotFound)
	})
}

func TestRestaurantAdministration(t *testing.T) {
	t.Run("create_requires_admin", func(t *testing.T) {
		fx := newFixture(t)
		in := catalog.RestaurantInput{Name: "Spice Route", Country: identity.CountryIndia}

		_, err := fx.svc.CreateRestaurant(context.Background(), fx.manager, in)
		assert.ErrorIs(t, err, catalog.ErrForbidden)
		_, err = fx.svc.CreateRestaurant(context.Background(), fx.member, in)
		assert.ErrorIs(t, err, catalog.ErrForbidden)

		rest, err := fx.svc.CreateRestaurant(context.Background(), fx.admin, in)
		require.NoError(t, err)
		assert.True(t, rest.IsActive)
		assert.NotEqual(t, uuid.Nil, rest.ID)
	})

	t.Run("create_rejects_unknown_country", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.svc.CreateRestaurant(context.Background(), fx.admin, catalog.RestaurantInput{
			Name: "Atlantis Diner", Country: "Atlantis",
		})
		assert.ErrorIs(t, err, catalog.ErrValidation)
	})

	t.Run("update_partial_fields", func(t *testing.T) {
		fx := newFixture(t)
		rest := fx.seedRestaurant(t, "Spice Route", identity.CountryIndia, true)

		got, err := fx.svc.UpdateRestaurant(context.Background(), fx.admin, rest.ID, catalog.RestaurantInput{Name: "Spice Route 2"})
		require.NoError(t, err)
		assert.Equal(t, "Spice Route 2", got.Name)
		assert.Equal(t, identity.CountryIndia, got.Country)
	})

	t.Run("deactivate_hides_from_browsing", func(t *testing.T) {
		fx := newFixture(t)
		rest := fx.seedRestaurant(t, "Spice Route", identity.CountryIndia, true)

		got, err := fx.svc.DeactivateRestaurant(context.Background(), fx.admin, rest.ID)
		require.NoError(t, err)
		assert.False(t, got.IsActive)

		_, err = fx.svc.GetRestaurant(context.Background(), fx.member, rest.ID)
		assert.ErrorIs(t, err, catalog.ErrRestaurantNotFound)
	})
}

func TestMenuItemAdministration(t *testing.T) {
	t.Run("create_validates_price_and_category", func(t *testing.T) {
		fx := newFixture(t)
		rest := fx.seedRestaurant(t, "Spice Route", identity.CountryIndia, true)

		tests := []struct {
			name string
			in   catalog.MenuItemInput
		}{
			{"missing_price", catalog.MenuItemInput{RestaurantID: rest.ID, Name: "Dish", Category: catalog.CategoryStarter}},
			{"malformed_price", catalog.MenuItemInput{RestaurantID: rest.ID, Name: "Dish", Price: "ten", Category: catalog.CategoryStarter}},
			{"negative_price", catalog.MenuItemInput{RestaurantID: rest.ID, Name: "Dish", Price: "-5.00", Category: catalog.CategoryStarter}},
			{"unknown_category", catalog.MenuItemInput{RestaurantID: rest.ID, Name: "Dish", Price: "5.00", Category: "Snacks"}},
			{"missing_name", catalog.MenuItemInput{RestaurantID: rest.ID, Price: "5.00", Category: catalog.CategoryStarter}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := fx.svc.CreateMenuItem(context.Background(), fx.admin, tt.in)
				assert.ErrorIs(t, err, catalog.ErrValidation)
			})
		}
	})

	t.Run("create_requires_existing_restaurant", func(t *testing.T) {
		fx := newFixture(t)
		unknown, err := uuid.NewV4()
		require.NoError(t, err)

		_, err = fx.svc.CreateMenuItem(context.Background(), fx.admin, catalog.MenuItemInput{
			RestaurantID: unknown, Name: "Dish", Price: "5.00", Category: catalog.CategoryStarter,
		})
		assert.ErrorIs(t, err, catalog.ErrRestaurantNotFound)
	})

	t.Run("create_success", func(t *testing.T) {
		fx := newFixture(t)
		rest := fx.seedRestaurant(t, "Spice Route", identity.CountryIndia, true)

		item, err := fx.svc.CreateMenuItem(context.Background(), fx.admin, catalog.MenuItemInput{
			RestaurantID: rest.ID, Name: "Butter Chicken", Price: "10.50", Category: catalog.CategoryMainCourse,
		})
		require.NoError(t, err)
		assert.True(t, item.IsAvailable)
		assert.True(t, item.Price.Equal(decimal.RequireFromString("10.50")))
	})

	t.Run("update_price", func(t *testing.T) {
		fx := newFixture(t)
		rest := fx.seedRestaurant(t, "Spice Route", identity.CountryIndia, true)
		item := fx.seedMenuItem(t, rest.ID, "Butter Chicken", 10, true)

		got, err := fx.svc.UpdateMenuItem(context.Background(), fx.admin, item.ID, catalog.MenuItemInput{Price: "12.00"})
		require.NoError(t, err)
		assert.True(t, got.Price.Equal(decimal.NewFromInt(12)))
		assert.Equal(t, "Butter Chicken", got.Name)
	})

	t.Run("deactivate_requires_admin", func(t *testing.T) {
		fx := newFixture(t)
		rest := fx.seedRestaurant(t, "Spice Route", identity.CountryIndia, true)
		item := fx.seedMenuItem(t, rest.ID, "Butter Chicken", 10, true)

		_, err := fx.svc.DeactivateMenuItem(context.Background(), fx.manager, item.ID)
		assert.ErrorIs(t, err, catalog.ErrForbidden)

		got, err := fx.svc.DeactivateMenuItem(context.Background(), fx.admin, item.ID)
		require.NoError(t, err)
		assert.False(t, got.IsAvailable)
	})
}
