package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Sternrassler/foodapp/pkg/cache"
	"github.com/Sternrassler/foodapp/pkg/model"
	"github.com/Sternrassler/foodapp/pkg/store"
	"github.com/rs/zerolog"
)

// DefaultRestaurantSort is used when List is called without a sort field.
const DefaultRestaurantSort = "id"

// RestaurantSortFields lists the fields List accepts for sortBy.
var RestaurantSortFields = []string{"id", "name", "address", "email", "createdAt", "updatedAt"}

// Restaurants implements the restaurant use cases, including the menu of
// foods assigned to each restaurant.
type Restaurants struct {
	restaurants store.Repository[model.Restaurant]
	foods       store.Repository[model.Food]
	menu        store.Menu
	orders      store.OrderIndex
	cache       *cache.Manager
	logger      zerolog.Logger
}

// NewRestaurants creates the restaurant use cases.
func NewRestaurants(restaurants store.Repository[model.Restaurant], foods store.Repository[model.Food], menu store.Menu, orders store.OrderIndex, manager *cache.Manager, logger zerolog.Logger) *Restaurants {
	return &Restaurants{
		restaurants: restaurants,
		foods:       foods,
		menu:        menu,
		orders:      orders,
		cache:       manager,
		logger:      logger.With().Str("component", "restaurants").Logger(),
	}
}

// Create stores a new restaurant. Every cached restaurant page is dropped
// before the new restaurant's entry is written.
func (s *Restaurants) Create(ctx context.Context, r model.Restaurant) (model.Restaurant, error) {
	r.ID = 0
	if err := validateStruct(r); err != nil {
		return model.Restaurant{}, err
	}

	saved, err := cache.MutateAndInvalidate(ctx, s.cache,
		func(ctx context.Context) (model.Restaurant, error) {
			now := clock()
			r.CreatedAt = now
			r.UpdatedAt = now
			return s.restaurants.Save(ctx, r)
		},
		s.refreshPlan)
	if err != nil {
		return model.Restaurant{}, err
	}

	s.logger.Info().Int("restaurant_id", saved.ID).Msg("Restaurant created")
	return saved, nil
}

// Get returns the restaurant with id.
func (s *Restaurants) Get(ctx context.Context, id int) (model.Restaurant, error) {
	if err := validateID("restaurant id", id); err != nil {
		return model.Restaurant{}, err
	}

	return cache.LoadOrPopulate(ctx, s.cache, cache.RegionRestaurant, cache.IDKey(id),
		func(ctx context.Context) (model.Restaurant, error) {
			r, err := s.restaurants.Find(ctx, id)
			if err != nil {
				return model.Restaurant{}, storeErr(err, "no restaurant found with id %d", id)
			}
			return r, nil
		})
}

// List returns one page of restaurants sorted descending by sortBy.
func (s *Restaurants) List(ctx context.Context, number, size int, sortBy string) (store.Page[model.Restaurant], error) {
	if err := validatePage(number, size); err != nil {
		return store.Page[model.Restaurant]{}, err
	}
	if sortBy == "" {
		sortBy = DefaultRestaurantSort
	}
	if !slices.Contains(RestaurantSortFields, sortBy) {
		return store.Page[model.Restaurant]{}, validationFailed("cannot sort restaurants by %q", sortBy)
	}

	return cache.LoadOrPopulate(ctx, s.cache, cache.RegionRestaurant, cache.SortedPageKey(number, size, sortBy),
		func(ctx context.Context) (store.Page[model.Restaurant], error) {
			page, err := s.restaurants.FindPage(ctx, store.PageRequest{Number: number, Size: size, SortBy: sortBy})
			if errors.Is(err, store.ErrInvalidSort) {
				return page, validationFailed("cannot sort restaurants by %q", sortBy)
			}
			return page, err
		})
}

// Update replaces the fields of the restaurant with id.
func (s *Restaurants) Update(ctx context.Context, id int, r model.Restaurant) (model.Restaurant, error) {
	if err := validateID("restaurant id", id); err != nil {
		return model.Restaurant{}, err
	}
	if err := validateStruct(r); err != nil {
		return model.Restaurant{}, err
	}

	return cache.MutateAndInvalidate(ctx, s.cache,
		func(ctx context.Context) (model.Restaurant, error) {
			existing, err := s.restaurants.Find(ctx, id)
			if err != nil {
				return model.Restaurant{}, storeErr(err, "no restaurant found with id %d", id)
			}
			existing.Name = r.Name
			existing.Address = r.Address
			existing.ContactNumber = r.ContactNumber
			existing.Email = r.Email
			existing.UpdatedAt = clock()
			return s.restaurants.Save(ctx, existing)
		},
		s.refreshPlan)
}

// refreshPlan clears the restaurant region before writing the entry, so the
// fresh entry survives the clear.
func (s *Restaurants) refreshPlan(saved model.Restaurant) []cache.Action {
	return []cache.Action{
		cache.ClearRegion(cache.RegionRestaurant),
		cache.Refresh(cache.RegionRestaurant, cache.IDKey(saved.ID), saved),
	}
}

// Delete removes the restaurant with id together with its menu.
func (s *Restaurants) Delete(ctx context.Context, id int) error {
	if err := validateID("restaurant id", id); err != nil {
		return err
	}

	_, err := cache.MutateAndInvalidate(ctx, s.cache,
		func(ctx context.Context) (struct{}, error) {
			if _, err := s.restaurants.Find(ctx, id); err != nil {
				return struct{}{}, storeErr(err, "no restaurant found with id %d", id)
			}
			if err := s.menu.RemoveRestaurant(ctx, id); err != nil {
				return struct{}{}, err
			}
			if err := s.restaurants.Delete(ctx, id); err != nil {
				return struct{}{}, storeErr(err, "no restaurant found with id %d", id)
			}
			return struct{}{}, nil
		},
		func(struct{}) []cache.Action {
			return []cache.Action{
				cache.Evict(cache.RegionRestaurant, cache.IDKey(id)),
				cache.Evict(cache.RegionRestaurantFoods, cache.ChildrenKey(id)),
				cache.ClearRegion(cache.RegionRestaurant),
			}
		})
	if err != nil {
		return err
	}

	s.logger.Info().Int("restaurant_id", id).Msg("Restaurant deleted")
	return nil
}

// AssignFoods replaces the menu of the restaurant with id. Every food must
// exist; an empty list empties the menu.
func (s *Restaurants) AssignFoods(ctx context.Context, id int, foodIDs []int) (model.Restaurant, error) {
	if err := validateID("restaurant id", id); err != nil {
		return model.Restaurant{}, err
	}
	for _, fid := range foodIDs {
		if err := validateID("food id", fid); err != nil {
			return model.Restaurant{}, err
		}
	}

	saved, err := cache.MutateAndInvalidate(ctx, s.cache,
		func(ctx context.Context) (model.Restaurant, error) {
			r, err := s.restaurants.Find(ctx, id)
			if err != nil {
				return model.Restaurant{}, storeErr(err, "no restaurant found with id %d", id)
			}
			for _, fid := range foodIDs {
				ok, err := s.foods.Exists(ctx, fid)
				if err != nil {
					return model.Restaurant{}, err
				}
				if !ok {
					return model.Restaurant{}, notFound(nil, "food with id %d not found", fid)
				}
			}
			if err := s.menu.Assign(ctx, id, foodIDs); err != nil {
				return model.Restaurant{}, err
			}
			return r, nil
		},
		func(r model.Restaurant) []cache.Action {
			return []cache.Action{
				cache.Refresh(cache.RegionRestaurant, cache.IDKey(r.ID), r),
				cache.Evict(cache.RegionRestaurantFoods, cache.ChildrenKey(r.ID)),
			}
		})
	if err != nil {
		return model.Restaurant{}, err
	}

	s.logger.Info().Int("restaurant_id", id).Int("foods", len(foodIDs)).Msg("Menu assigned")
	return saved, nil
}

// Foods returns the menu of the restaurant with id. An empty menu is
// reported as ErrNoChildrenAssigned and is not cached.
func (s *Restaurants) Foods(ctx context.Context, id int) ([]model.Food, error) {
	if err := validateID("restaurant id", id); err != nil {
		return nil, err
	}

	return cache.LoadOrPopulate(ctx, s.cache, cache.RegionRestaurantFoods, cache.ChildrenKey(id),
		func(ctx context.Context) ([]model.Food, error) {
			ok, err := s.restaurants.Exists(ctx, id)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, notFound(nil, "no restaurant found with id %d", id)
			}
			foods, err := s.menu.FoodsByRestaurant(ctx, id)
			if err != nil {
				return nil, err
			}
			if len(foods) == 0 {
				return nil, &Error{
					Kind:    ErrNoChildrenAssigned,
					Message: fmt.Sprintf("no menu items are currently listed for restaurant %d", id),
				}
			}
			return foods, nil
		})
}

// Orders returns the orders placed with the restaurant with id. The result
// is read from the store on every call. A restaurant without orders is
// reported as ErrNotFound.
func (s *Restaurants) Orders(ctx context.Context, id int) ([]model.Order, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	orders, err := s.orders.OrdersByRestaurant(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, notFound(nil, "restaurant %d has no orders to process", id)
	}
	return orders, nil
}
