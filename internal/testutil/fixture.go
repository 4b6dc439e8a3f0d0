// Package testutil provides test fixtures for the foodapp services.
package testutil

import (
	"context"
	"testing"

	"github.com/Sternrassler/foodapp/pkg/cache"
	"github.com/Sternrassler/foodapp/pkg/model"
	"github.com/Sternrassler/foodapp/pkg/service"
	"github.com/Sternrassler/foodapp/pkg/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Fixture is a fully wired service graph over in-memory stores. The stores
// are exposed so tests can count the calls that reach them.
type Fixture struct {
	Foods       *store.Memory[model.Food]
	Restaurants *store.Memory[model.Restaurant]
	Orders      *store.MemoryOrders
	Users       *store.Memory[model.User]
	Menu        *store.MemoryMenu

	Backend  cache.Backend
	Cache    *cache.Manager
	Services *service.Services
}

// NewFixture wires the services over a memory cache backend.
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	return NewFixtureWithBackend(t, cache.NewMemoryBackend(0))
}

// NewRedisFixture wires the services over a Redis cache backend served by
// an in-process miniredis.
func NewRedisFixture(t *testing.T) (*Fixture, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})
	return NewFixtureWithBackend(t, cache.NewRedisBackend(client, "")), mr
}

// NewFixtureWithBackend wires the services over backend.
func NewFixtureWithBackend(t *testing.T, backend cache.Backend) *Fixture {
	t.Helper()

	foods := store.NewFoods()
	f := &Fixture{
		Foods:       foods,
		Restaurants: store.NewRestaurants(),
		Orders:      store.NewOrders(),
		Users:       store.NewUsers(),
		Menu:        store.NewMemoryMenu(foods),
		Backend:     backend,
	}
	f.Cache = cache.NewManager(backend, zerolog.Nop())
	f.Services = service.New(service.Stores{
		Foods:       f.Foods,
		Restaurants: f.Restaurants,
		Orders:      f.Orders,
		Users:       f.Users,
		Menu:        f.Menu,
		OrderIndex:  f.Orders,
	}, f.Cache, zerolog.Nop())
	return f
}

// ResetCalls zeroes the call counters of every repository and the menu.
func (f *Fixture) ResetCalls() {
	f.Menu.ResetCalls()
	f.Foods.ResetCalls()
	f.Restaurants.ResetCalls()
	f.Orders.ResetCalls()
	f.Users.ResetCalls()
}

// Cached reports whether key is present in region.
func (f *Fixture) Cached(t *testing.T, region cache.Region, key string) bool {
	t.Helper()
	_, ok := f.Cache.Get(context.Background(), region, key)
	return ok
}

// SeedFood creates a food through the service.
func (f *Fixture) SeedFood(t *testing.T, name string, price float64) model.Food {
	t.Helper()
	food, err := f.Services.Foods.Create(context.Background(), model.Food{Name: name, Price: price})
	if err != nil {
		t.Fatalf("seed food %q: %v", name, err)
	}
	return food
}

// SeedRestaurant creates a valid restaurant through the service.
func (f *Fixture) SeedRestaurant(t *testing.T, name string) model.Restaurant {
	t.Helper()
	r, err := f.Services.Restaurants.Create(context.Background(), model.Restaurant{
		Name:          name,
		Address:       "1 Market Street",
		ContactNumber: "9876543210",
		Email:         "kitchen@example.com",
	})
	if err != nil {
		t.Fatalf("seed restaurant %q: %v", name, err)
	}
	return r
}

// SeedUser creates a valid user through the service.
func (f *Fixture) SeedUser(t *testing.T, username string) model.User {
	t.Helper()
	u, err := f.Services.Users.Create(context.Background(), model.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     "USER",
	})
	if err != nil {
		t.Fatalf("seed user %q: %v", username, err)
	}
	return u
}

// SeedMenu creates a restaurant serving the given foods.
func (f *Fixture) SeedMenu(t *testing.T, name string, foods ...model.Food) model.Restaurant {
	t.Helper()
	r := f.SeedRestaurant(t, name)
	ids := make([]int, len(foods))
	for i, food := range foods {
		ids[i] = food.ID
	}
	if _, err := f.Services.Restaurants.AssignFoods(context.Background(), r.ID, ids); err != nil {
		t.Fatalf("assign menu of %q: %v", name, err)
	}
	return r
}
