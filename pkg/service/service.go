// Package service implements the foodapp use cases on top of the store and
// the region cache.
//
// Every read is a cache.LoadOrPopulate call and every write a
// cache.MutateAndInvalidate call, so the cache contract of each use case is
// visible at the call site. Failures are *Error values whose kind matches
// ErrNotFound, ErrValidationFailed, ErrPaymentRejected or
// ErrNoChildrenAssigned; caching never adds a failure of its own.
package service

import (
	"time"

	"github.com/Sternrassler/foodapp/pkg/cache"
	"github.com/Sternrassler/foodapp/pkg/model"
	"github.com/Sternrassler/foodapp/pkg/store"
	"github.com/rs/zerolog"
)

// Stores bundles the persistence collaborators.
type Stores struct {
	Foods       store.Repository[model.Food]
	Restaurants store.Repository[model.Restaurant]
	Orders      store.Repository[model.Order]
	Users       store.Repository[model.User]
	Menu        store.Menu
	OrderIndex  store.OrderIndex
}

// Services bundles every use case, wired to one cache manager.
type Services struct {
	Foods       *Foods
	Restaurants *Restaurants
	Orders      *Orders
	Users       *Users
}

// New wires all use cases.
func New(stores Stores, manager *cache.Manager, logger zerolog.Logger) *Services {
	foods := NewFoods(stores.Foods, stores.Menu, manager, logger)
	restaurants := NewRestaurants(stores.Restaurants, stores.Foods, stores.Menu, stores.OrderIndex, manager, logger)
	return &Services{
		Foods:       foods,
		Restaurants: restaurants,
		Orders:      NewOrders(stores.Orders, stores.Users, restaurants, foods, manager, logger),
		Users:       NewUsers(stores.Users, manager, logger),
	}
}

// clock is replaced in tests.
var clock = func() time.Time { return time.Now().UTC() }
