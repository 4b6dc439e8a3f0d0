package service

import (
	"context"

	"github.com/Sternrassler/foodapp/pkg/cache"
	"github.com/Sternrassler/foodapp/pkg/model"
	"github.com/Sternrassler/foodapp/pkg/store"
	"github.com/rs/zerolog"
)

// Foods implements the food use cases.
type Foods struct {
	foods  store.Repository[model.Food]
	menu   store.Menu
	cache  *cache.Manager
	logger zerolog.Logger
}

// NewFoods creates the food use cases.
func NewFoods(foods store.Repository[model.Food], menu store.Menu, manager *cache.Manager, logger zerolog.Logger) *Foods {
	return &Foods{
		foods:  foods,
		menu:   menu,
		cache:  manager,
		logger: logger.With().Str("component", "foods").Logger(),
	}
}

// Create stores a new food. Cached food pages are left to their sweep.
func (s *Foods) Create(ctx context.Context, f model.Food) (model.Food, error) {
	f.ID = 0
	if err := validateStruct(f); err != nil {
		return model.Food{}, err
	}

	saved, err := s.foods.Save(ctx, f)
	if err != nil {
		return model.Food{}, err
	}
	s.logger.Info().Int("food_id", saved.ID).Msg("Food created")
	return saved, nil
}

// Get returns the food with id.
func (s *Foods) Get(ctx context.Context, id int) (model.Food, error) {
	if err := validateID("food id", id); err != nil {
		return model.Food{}, err
	}

	return cache.LoadOrPopulate(ctx, s.cache, cache.RegionFood, cache.IDKey(id),
		func(ctx context.Context) (model.Food, error) {
			f, err := s.foods.Find(ctx, id)
			if err != nil {
				return model.Food{}, storeErr(err, "no food found with id %d", id)
			}
			return f, nil
		})
}

// List returns one page of foods.
func (s *Foods) List(ctx context.Context, number, size int) (store.Page[model.Food], error) {
	if err := validatePage(number, size); err != nil {
		return store.Page[model.Food]{}, err
	}

	return cache.LoadOrPopulate(ctx, s.cache, cache.RegionFoodPage, cache.PageKey(number, size),
		func(ctx context.Context) (store.Page[model.Food], error) {
			return s.foods.FindPage(ctx, store.PageRequest{Number: number, Size: size})
		})
}

// Update replaces the fields of the food with id. The food's own entry is
// refreshed and every cached page is dropped.
func (s *Foods) Update(ctx context.Context, id int, f model.Food) (model.Food, error) {
	if err := validateID("food id", id); err != nil {
		return model.Food{}, err
	}
	if err := validateStruct(f); err != nil {
		return model.Food{}, err
	}

	return cache.MutateAndInvalidate(ctx, s.cache,
		func(ctx context.Context) (model.Food, error) {
			// Every field is replaced, so the cached snapshot is enough
			// to prove existence
			existing, err := s.Get(ctx, id)
			if err != nil {
				return model.Food{}, err
			}
			existing.Name = f.Name
			existing.Description = f.Description
			existing.Price = f.Price
			return s.foods.Save(ctx, existing)
		},
		func(saved model.Food) []cache.Action {
			return []cache.Action{
				cache.Refresh(cache.RegionFood, cache.IDKey(saved.ID), saved),
				cache.ClearRegion(cache.RegionFoodPage),
			}
		})
}

// Delete removes the food with id and takes it off every menu. The menus
// of all restaurants that listed it are evicted.
func (s *Foods) Delete(ctx context.Context, id int) error {
	if err := validateID("food id", id); err != nil {
		return err
	}

	_, err := cache.MutateAndInvalidate(ctx, s.cache,
		func(ctx context.Context) ([]int, error) {
			if _, err := s.foods.Find(ctx, id); err != nil {
				return nil, storeErr(err, "no food found with id %d", id)
			}
			// Referencing restaurants must be read before the join rows go
			restaurantIDs, err := s.menu.RestaurantsByFood(ctx, id)
			if err != nil {
				return nil, err
			}
			if err := s.menu.RemoveFood(ctx, id); err != nil {
				return nil, err
			}
			if err := s.foods.Delete(ctx, id); err != nil {
				return nil, storeErr(err, "no food found with id %d", id)
			}
			return restaurantIDs, nil
		},
		func(restaurantIDs []int) []cache.Action {
			actions := []cache.Action{
				cache.Evict(cache.RegionFood, cache.IDKey(id)),
				cache.ClearRegion(cache.RegionFoodPage),
			}
			for _, rid := range restaurantIDs {
				actions = append(actions, cache.Evict(cache.RegionRestaurantFoods, cache.ChildrenKey(rid)))
			}
			return actions
		})
	if err != nil {
		return err
	}

	s.logger.Info().Int("food_id", id).Msg("Food deleted")
	return nil
}
