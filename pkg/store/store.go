// Package store defines the persistence contract the cache layer calls
// through, plus an in-memory implementation used by the demo process and
// by tests.
//
// A database-backed adapter is an external collaborator; it only needs to
// satisfy Repository and Menu.
package store

import (
	"context"
	"errors"

	"github.com/Sternrassler/foodapp/pkg/model"
)

var (
	// ErrNotFound indicates the requested id is absent from the store.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidSort indicates a page was requested with an unknown sort field.
	ErrInvalidSort = errors.New("invalid sort field")

	// ErrInvalidPage indicates a page request with a negative number or a
	// non-positive size.
	ErrInvalidPage = errors.New("invalid page request")
)

// Operation names reported by Memory.Calls and MemoryMenu.Calls.
const (
	OpFind               = "find"
	OpFindPage           = "find_page"
	OpFindAll            = "find_all"
	OpSave               = "save"
	OpDelete             = "delete"
	OpExists             = "exists"
	OpFoodsByRestaurant  = "foods_by_restaurant"
	OpRestaurantsByFood  = "restaurants_by_food"
	OpAssign             = "assign"
	OpRemoveFood         = "remove_food"
	OpRemoveRestaurant   = "remove_restaurant"
	OpOrdersByRestaurant = "orders_by_restaurant"
)

// PageRequest selects one page of a listing. Number is zero-based.
// SortBy is optional; when set the page is sorted descending by that field.
type PageRequest struct {
	Number int
	Size   int
	SortBy string
}

// Page is one page of a listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Number     int `json:"number"`
	Size       int `json:"size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// Repository is the keyed store for one entity type.
type Repository[T any] interface {
	// Find returns ErrNotFound when id is absent.
	Find(ctx context.Context, id int) (T, error)
	FindPage(ctx context.Context, req PageRequest) (Page[T], error)
	FindAll(ctx context.Context) ([]T, error)
	// Save inserts when the entity has no id and upserts otherwise.
	Save(ctx context.Context, v T) (T, error)
	// Delete returns ErrNotFound when id is absent.
	Delete(ctx context.Context, id int) error
	Exists(ctx context.Context, id int) (bool, error)
}

// Menu is the many-to-many association between restaurants and foods.
type Menu interface {
	FoodsByRestaurant(ctx context.Context, restaurantID int) ([]model.Food, error)
	RestaurantsByFood(ctx context.Context, foodID int) ([]int, error)
	// Assign replaces the restaurant's menu with foodIDs.
	Assign(ctx context.Context, restaurantID int, foodIDs []int) error
	RemoveFood(ctx context.Context, foodID int) error
	RemoveRestaurant(ctx context.Context, restaurantID int) error
}

// OrderIndex lists the orders placed with one restaurant.
type OrderIndex interface {
	OrdersByRestaurant(ctx context.Context, restaurantID int) ([]model.Order, error)
}
