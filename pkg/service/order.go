package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Sternrassler/foodapp/pkg/cache"
	"github.com/Sternrassler/foodapp/pkg/model"
	"github.com/Sternrassler/foodapp/pkg/store"
	"github.com/rs/zerolog"
)

// Orders implements billing and the order lifecycle. Restaurants and foods
// are resolved through their cached use cases.
type Orders struct {
	orders      store.Repository[model.Order]
	users       store.Repository[model.User]
	restaurants *Restaurants
	foods       *Foods
	cache       *cache.Manager
	logger      zerolog.Logger
}

// NewOrders creates the order use cases.
func NewOrders(orders store.Repository[model.Order], users store.Repository[model.User], restaurants *Restaurants, foods *Foods, manager *cache.Manager, logger zerolog.Logger) *Orders {
	return &Orders{
		orders:      orders,
		users:       users,
		restaurants: restaurants,
		foods:       foods,
		cache:       manager,
		logger:      logger.With().Str("component", "orders").Logger(),
	}
}

// GenerateBill prices req. Bills are cached by restaurant and the ordered
// item sequence, so the same items in a different order are priced again
// under a different key.
func (s *Orders) GenerateBill(ctx context.Context, req model.OrderRequest) (model.Bill, error) {
	if err := validateStruct(req); err != nil {
		return model.Bill{}, err
	}

	key := cache.BillKey(req.RestaurantID, lineItems(req.Items))
	return cache.LoadOrPopulate(ctx, s.cache, cache.RegionBill, key,
		func(ctx context.Context) (model.Bill, error) {
			r, err := s.restaurants.Get(ctx, req.RestaurantID)
			if err != nil {
				return model.Bill{}, err
			}
			items, total, err := s.price(ctx, req.Items)
			if err != nil {
				return model.Bill{}, err
			}

			var summary strings.Builder
			for _, it := range items {
				fmt.Fprintf(&summary, "%s X %d = %.2f\n", it.FoodName, it.Quantity, it.Price)
			}
			return model.Bill{RestaurantName: r.Name, Summary: summary.String(), TotalPrice: total}, nil
		})
}

// PlaceOrder stores a paid order with status PLACED. Cached bills and the
// cached order list are dropped.
func (s *Orders) PlaceOrder(ctx context.Context, p model.Payment) (model.Order, error) {
	if err := validateStruct(p); err != nil {
		return model.Order{}, err
	}
	if !p.PaymentSuccessful {
		return model.Order{}, &Error{Kind: ErrPaymentRejected, Message: "payment was not successful, order cannot be placed"}
	}

	saved, err := cache.MutateAndInvalidate(ctx, s.cache,
		func(ctx context.Context) (model.Order, error) {
			if _, err := s.users.Find(ctx, p.UserID); err != nil {
				return model.Order{}, storeErr(err, "no user found with id %d", p.UserID)
			}
			if _, err := s.restaurants.Get(ctx, p.RestaurantID); err != nil {
				return model.Order{}, err
			}
			items, total, err := s.price(ctx, p.Items)
			if err != nil {
				return model.Order{}, err
			}
			return s.orders.Save(ctx, model.Order{
				RestaurantID: p.RestaurantID,
				UserID:       p.UserID,
				Items:        items,
				Status:       model.OrderPlaced,
				TotalPrice:   total,
			})
		},
		func(o model.Order) []cache.Action {
			return []cache.Action{
				cache.Refresh(cache.RegionOrder, cache.IDKey(o.ID), o),
				cache.ClearRegion(cache.RegionBill),
				cache.ClearRegion(cache.RegionOrdersAll),
			}
		})
	if err != nil {
		return model.Order{}, err
	}

	s.logger.Info().
		Int("order_id", saved.ID).
		Int("user_id", saved.UserID).
		Float64("total", saved.TotalPrice).
		Msg("Order placed")
	return saved, nil
}

// Get returns the order with id.
func (s *Orders) Get(ctx context.Context, id int) (model.Order, error) {
	if err := validateID("order id", id); err != nil {
		return model.Order{}, err
	}

	return cache.LoadOrPopulate(ctx, s.cache, cache.RegionOrder, cache.IDKey(id),
		func(ctx context.Context) (model.Order, error) {
			o, err := s.orders.Find(ctx, id)
			if err != nil {
				return model.Order{}, storeErr(err, "no order found with id %d", id)
			}
			return o, nil
		})
}

// All returns every order. An empty store is reported as ErrNotFound.
func (s *Orders) All(ctx context.Context) ([]model.Order, error) {
	return cache.LoadOrPopulate(ctx, s.cache, cache.RegionOrdersAll, cache.AllKey,
		func(ctx context.Context) ([]model.Order, error) {
			orders, err := s.orders.FindAll(ctx)
			if err != nil {
				return nil, err
			}
			if len(orders) == 0 {
				return nil, notFound(nil, "no orders present")
			}
			return orders, nil
		})
}

// UpdateStatus moves the order with id to status.
func (s *Orders) UpdateStatus(ctx context.Context, id int, status model.OrderStatus) (model.Order, error) {
	if err := validateID("order id", id); err != nil {
		return model.Order{}, err
	}
	if !status.Valid() {
		return model.Order{}, validationFailed("unknown order status %q", status)
	}

	saved, err := s.setStatus(ctx, id, status, func(o model.Order) []cache.Action {
		return []cache.Action{cache.Refresh(cache.RegionOrder, cache.IDKey(o.ID), o)}
	})
	if err != nil {
		return model.Order{}, err
	}

	s.logger.Info().Int("order_id", id).Str("status", string(status)).Msg("Order status updated")
	return saved, nil
}

// Cancel marks the order with id CANCELLED and evicts its entry.
func (s *Orders) Cancel(ctx context.Context, id int) (model.Order, error) {
	if err := validateID("order id", id); err != nil {
		return model.Order{}, err
	}

	saved, err := s.setStatus(ctx, id, model.OrderCancelled, func(o model.Order) []cache.Action {
		return []cache.Action{cache.Evict(cache.RegionOrder, cache.IDKey(o.ID))}
	})
	if err != nil {
		return model.Order{}, err
	}

	s.logger.Info().Int("order_id", id).Msg("Order cancelled")
	return saved, nil
}

func (s *Orders) setStatus(ctx context.Context, id int, status model.OrderStatus, plan func(model.Order) []cache.Action) (model.Order, error) {
	return cache.MutateAndInvalidate(ctx, s.cache,
		func(ctx context.Context) (model.Order, error) {
			o, err := s.orders.Find(ctx, id)
			if err != nil {
				return model.Order{}, storeErr(err, "no order found with id %d", id)
			}
			o.Status = status
			return s.orders.Save(ctx, o)
		},
		plan)
}

// Delete removes the order with id.
func (s *Orders) Delete(ctx context.Context, id int) error {
	if err := validateID("order id", id); err != nil {
		return err
	}

	_, err := cache.MutateAndInvalidate(ctx, s.cache,
		func(ctx context.Context) (struct{}, error) {
			if err := s.orders.Delete(ctx, id); err != nil {
				return struct{}{}, storeErr(err, "no order found with id %d", id)
			}
			return struct{}{}, nil
		},
		func(struct{}) []cache.Action {
			return []cache.Action{
				cache.Evict(cache.RegionOrder, cache.IDKey(id)),
				cache.ClearRegion(cache.RegionBill),
				cache.ClearRegion(cache.RegionOrdersAll),
			}
		})
	if err != nil {
		return err
	}

	s.logger.Info().Int("order_id", id).Msg("Order deleted")
	return nil
}

// price resolves each requested food and returns the priced lines with the
// total rounded to cents.
func (s *Orders) price(ctx context.Context, reqs []model.OrderItemRequest) ([]model.OrderItem, float64, error) {
	items := make([]model.OrderItem, 0, len(reqs))
	var total float64
	for _, req := range reqs {
		f, err := s.foods.Get(ctx, req.FoodID)
		if err != nil {
			return nil, 0, err
		}
		line := f.Price * float64(req.Quantity)
		items = append(items, model.OrderItem{
			FoodID:   f.ID,
			FoodName: f.Name,
			Quantity: req.Quantity,
			Price:    line,
		})
		total += line
	}
	return items, math.Round(total*100) / 100, nil
}

func lineItems(reqs []model.OrderItemRequest) []cache.LineItem {
	items := make([]cache.LineItem, len(reqs))
	for i, r := range reqs {
		items[i] = cache.LineItem{ID: r.FoodID, Quantity: r.Quantity}
	}
	return items
}
