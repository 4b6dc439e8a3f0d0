// Package model defines the entity snapshots and request types shared by the
// store, the cache layer and the use cases.
//
// All types are plain values with JSON tags; the cache stores them as JSON
// snapshots so a cached copy never aliases a store-owned value.
package model

import "time"

// Food is a menu item that can be listed by any number of restaurants.
type Food struct {
	ID          int     `json:"id"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=1"`
}

// Restaurant is a restaurant and its contact details. The menu (assigned
// foods) lives in the store's join table, not on the snapshot.
type Restaurant struct {
	ID            int       `json:"id"`
	Name          string    `json:"name" validate:"required"`
	Address       string    `json:"address" validate:"required"`
	ContactNumber string    `json:"contact_number" validate:"required,mobile"`
	Email         string    `json:"email" validate:"required,email"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPlaced         OrderStatus = "PLACED"
	OrderPreparing      OrderStatus = "PREPARING"
	OrderOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderDelivered      OrderStatus = "DELIVERED"
	OrderCancelled      OrderStatus = "CANCELLED"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPlaced, OrderPreparing, OrderOutForDelivery, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// OrderItem is one priced line of a placed order.
type OrderItem struct {
	FoodID   int     `json:"food_id"`
	FoodName string  `json:"food_name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order is a placed order.
type Order struct {
	ID           int         `json:"id"`
	RestaurantID int         `json:"restaurant_id"`
	UserID       int         `json:"user_id"`
	Items        []OrderItem `json:"items"`
	Status       OrderStatus `json:"status"`
	TotalPrice   float64     `json:"total_price"`
}

// User is a customer or admin account. Credentials are owned by the auth
// collaborator and never appear on the snapshot.
type User struct {
	ID            int    `json:"id"`
	Username      string `json:"username" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	ContactNumber string `json:"contact_number"`
	Address       string `json:"address"`
	Role          string `json:"role"`
	Image         []byte `json:"image,omitempty"`
}

// OrderItemRequest is one requested (food, quantity) pair.
type OrderItemRequest struct {
	FoodID   int `json:"food_id" validate:"gte=1"`
	Quantity int `json:"quantity" validate:"gte=1"`
}

// OrderRequest asks for a bill before payment.
type OrderRequest struct {
	RestaurantID int                `json:"restaurant_id" validate:"gte=1"`
	Items        []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// Payment carries the outcome of payment for a set of items.
type Payment struct {
	RestaurantID      int                `json:"restaurant_id" validate:"gte=1"`
	UserID            int                `json:"user_id" validate:"gte=1"`
	Items             []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentSuccessful bool               `json:"payment_successful"`
}

// Bill is the priced summary of an OrderRequest.
type Bill struct {
	RestaurantName string  `json:"restaurant_name"`
	Summary        string  `json:"summary"`
	TotalPrice     float64 `json:"total_price"`
}
