package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/Sternrassler/foodapp/pkg/model"
)

// NewFoods returns an empty in-memory food repository.
func NewFoods() *Memory[model.Food] {
	return NewMemory(
		func(f model.Food) int { return f.ID },
		func(f model.Food, id int) model.Food { f.ID = id; return f },
		map[string]Less[model.Food]{
			"id":    func(a, b model.Food) bool { return a.ID > b.ID },
			"name":  func(a, b model.Food) bool { return strings.Compare(a.Name, b.Name) > 0 },
			"price": func(a, b model.Food) bool { return a.Price > b.Price },
		},
	)
}

// NewRestaurants returns an empty in-memory restaurant repository. Accepted
// sort fields are id, name, address, email, createdAt and updatedAt.
func NewRestaurants() *Memory[model.Restaurant] {
	return NewMemory(
		func(r model.Restaurant) int { return r.ID },
		func(r model.Restaurant, id int) model.Restaurant { r.ID = id; return r },
		map[string]Less[model.Restaurant]{
			"id":        func(a, b model.Restaurant) bool { return a.ID > b.ID },
			"name":      func(a, b model.Restaurant) bool { return strings.Compare(a.Name, b.Name) > 0 },
			"address":   func(a, b model.Restaurant) bool { return strings.Compare(a.Address, b.Address) > 0 },
			"email":     func(a, b model.Restaurant) bool { return strings.Compare(a.Email, b.Email) > 0 },
			"createdAt": func(a, b model.Restaurant) bool { return a.CreatedAt.After(b.CreatedAt) },
			"updatedAt": func(a, b model.Restaurant) bool { return a.UpdatedAt.After(b.UpdatedAt) },
		},
	)
}

// MemoryOrders is the in-memory order repository. It also serves as the
// OrderIndex.
type MemoryOrders struct {
	*Memory[model.Order]
}

// NewOrders returns an empty in-memory order repository.
func NewOrders() *MemoryOrders {
	return &MemoryOrders{Memory: NewMemory(
		func(o model.Order) int { return o.ID },
		func(o model.Order, id int) model.Order { o.ID = id; return o },
		nil,
	)}
}

// OrdersByRestaurant returns the orders of restaurantID ordered by id.
func (m *MemoryOrders) OrdersByRestaurant(ctx context.Context, restaurantID int) ([]model.Order, error) {
	m.record(OpOrdersByRestaurant)

	var out []model.Order
	for _, o := range m.snapshot() {
		if o.RestaurantID == restaurantID {
			out = append(out, o)
		}
	}
	return out, nil
}

// NewUsers returns an empty in-memory user repository.
func NewUsers() *Memory[model.User] {
	return NewMemory(
		func(u model.User) int { return u.ID },
		func(u model.User, id int) model.User { u.ID = id; return u },
		map[string]Less[model.User]{
			"id":       func(a, b model.User) bool { return a.ID > b.ID },
			"username": func(a, b model.User) bool { return strings.Compare(a.Username, b.Username) > 0 },
		},
	)
}

// MemoryMenu is an in-memory Menu. Foods are resolved through the food
// repository so deleted foods drop out of every menu.
type MemoryMenu struct {
	foods Repository[model.Food]

	mu           sync.RWMutex
	byRestaurant map[int][]int

	callsMu sync.Mutex
	calls   map[string]int
}

// NewMemoryMenu creates an empty menu backed by foods.
func NewMemoryMenu(foods Repository[model.Food]) *MemoryMenu {
	return &MemoryMenu{
		foods:        foods,
		byRestaurant: make(map[int][]int),
		calls:        make(map[string]int),
	}
}

func (m *MemoryMenu) record(op string) {
	m.callsMu.Lock()
	m.calls[op]++
	m.callsMu.Unlock()
}

// Calls returns how many times op was invoked.
func (m *MemoryMenu) Calls(op string) int {
	m.callsMu.Lock()
	defer m.callsMu.Unlock()
	return m.calls[op]
}

// ResetCalls clears all call counters.
func (m *MemoryMenu) ResetCalls() {
	m.callsMu.Lock()
	defer m.callsMu.Unlock()
	m.calls = make(map[string]int)
}

// FoodsByRestaurant returns the restaurant's assigned foods in assignment
// order. An unknown restaurant has an empty menu.
func (m *MemoryMenu) FoodsByRestaurant(ctx context.Context, restaurantID int) ([]model.Food, error) {
	m.record(OpFoodsByRestaurant)

	m.mu.RLock()
	ids := append([]int(nil), m.byRestaurant[restaurantID]...)
	m.mu.RUnlock()

	foods := make([]model.Food, 0, len(ids))
	for _, id := range ids {
		f, err := m.foods.Find(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		foods = append(foods, f)
	}
	return foods, nil
}

// RestaurantsByFood returns the ids of restaurants listing foodID, ascending.
func (m *MemoryMenu) RestaurantsByFood(ctx context.Context, foodID int) ([]int, error) {
	m.record(OpRestaurantsByFood)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []int
	for rid, ids := range m.byRestaurant {
		for _, id := range ids {
			if id == foodID {
				out = append(out, rid)
				break
			}
		}
	}
	sort.Ints(out)
	return out, nil
}

// Assign replaces the restaurant's menu. Duplicate ids are collapsed.
func (m *MemoryMenu) Assign(ctx context.Context, restaurantID int, foodIDs []int) error {
	m.record(OpAssign)

	seen := make(map[int]struct{}, len(foodIDs))
	ids := make([]int, 0, len(foodIDs))
	for _, id := range foodIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byRestaurant[restaurantID] = ids
	return nil
}

// RemoveFood drops foodID from every menu.
func (m *MemoryMenu) RemoveFood(ctx context.Context, foodID int) error {
	m.record(OpRemoveFood)

	m.mu.Lock()
	defer m.mu.Unlock()

	for rid, ids := range m.byRestaurant {
		kept := ids[:0]
		for _, id := range ids {
			if id != foodID {
				kept = append(kept, id)
			}
		}
		m.byRestaurant[rid] = kept
	}
	return nil
}

// RemoveRestaurant drops the restaurant's menu.
func (m *MemoryMenu) RemoveRestaurant(ctx context.Context, restaurantID int) error {
	m.record(OpRemoveRestaurant)

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byRestaurant, restaurantID)
	return nil
}
