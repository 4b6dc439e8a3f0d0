package cache

import (
	"time"
)

// Region names one independent cache namespace.
type Region string

const (
	// RegionFood holds single foods by id.
	RegionFood Region = "food"

	// RegionFoodPage holds food pages by pagination parameters.
	RegionFoodPage Region = "food_page"

	// RegionRestaurant holds restaurants by id and restaurant pages by
	// pagination and sort parameters.
	RegionRestaurant Region = "restaurant"

	// RegionRestaurantFoods holds the menu of a restaurant by restaurant id.
	RegionRestaurantFoods Region = "restaurant_foods"

	// RegionOrder holds orders by id.
	RegionOrder Region = "order"

	// RegionOrdersAll holds the full order listing.
	RegionOrdersAll Region = "orders_all"

	// RegionUser holds users by id and the full user listing.
	RegionUser Region = "user"

	// RegionBill holds bills by order-request signature.
	RegionBill Region = "bill"
)

// Regions returns every region the application uses.
func Regions() []Region {
	return []Region{
		RegionFood,
		RegionFoodPage,
		RegionRestaurant,
		RegionRestaurantFoods,
		RegionOrder,
		RegionOrdersAll,
		RegionUser,
		RegionBill,
	}
}

// Entry is one cached value: a JSON snapshot and the time it was stored.
// There is no per-entry TTL; entries live until evicted or swept.
type Entry struct {
	// Data is the JSON encoded value
	Data []byte `json:"data"`

	// InsertedAt is when the entry was put
	InsertedAt time.Time `json:"inserted_at"`
}

// Age returns how long ago the entry was inserted, relative to now.
// Returns 0 for entries stamped in the future.
func (e Entry) Age(now time.Time) time.Duration {
	age := now.Sub(e.InsertedAt)
	if age < 0 {
		return 0
	}
	return age
}
