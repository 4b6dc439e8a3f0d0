package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Less orders two values for a descending sort; it reports whether a sorts
// before b.
type Less[T any] func(a, b T) bool

// Memory is a concurrency-safe in-memory Repository. It records how many
// times each operation was called so tests can observe store traffic.
type Memory[T any] struct {
	mu     sync.RWMutex
	rows   map[int]T
	nextID int

	idOf    func(T) int
	withID  func(T, int) T
	sorters map[string]Less[T]

	callsMu sync.Mutex
	calls   map[string]int
}

// NewMemory creates an empty in-memory repository. idOf reads the entity id,
// withID returns a copy carrying the given id, and sorters maps the accepted
// SortBy field names to their ordering.
func NewMemory[T any](idOf func(T) int, withID func(T, int) T, sorters map[string]Less[T]) *Memory[T] {
	if sorters == nil {
		sorters = map[string]Less[T]{}
	}
	return &Memory[T]{
		rows:    make(map[int]T),
		idOf:    idOf,
		withID:  withID,
		sorters: sorters,
		calls:   make(map[string]int),
	}
}

func (m *Memory[T]) record(op string) {
	m.callsMu.Lock()
	m.calls[op]++
	m.callsMu.Unlock()
}

// Calls returns how many times op was invoked.
func (m *Memory[T]) Calls(op string) int {
	m.callsMu.Lock()
	defer m.callsMu.Unlock()
	return m.calls[op]
}

// ResetCalls clears all call counters.
func (m *Memory[T]) ResetCalls() {
	m.callsMu.Lock()
	defer m.callsMu.Unlock()
	m.calls = make(map[string]int)
}

// Find returns the entity with id or ErrNotFound.
func (m *Memory[T]) Find(ctx context.Context, id int) (T, error) {
	m.record(OpFind)

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.rows[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("find %d: %w", id, ErrNotFound)
	}
	return v, nil
}

// FindPage returns one page ordered by id, or descending by req.SortBy.
func (m *Memory[T]) FindPage(ctx context.Context, req PageRequest) (Page[T], error) {
	m.record(OpFindPage)

	if req.Number < 0 || req.Size <= 0 {
		return Page[T]{}, fmt.Errorf("page %d size %d: %w", req.Number, req.Size, ErrInvalidPage)
	}

	var less Less[T]
	if req.SortBy != "" {
		l, ok := m.sorters[req.SortBy]
		if !ok {
			return Page[T]{}, fmt.Errorf("sort by %q: %w", req.SortBy, ErrInvalidSort)
		}
		less = l
	}

	all := m.snapshot()
	if less != nil {
		sort.SliceStable(all, func(i, j int) bool { return less(all[i], all[j]) })
	}

	page := Page[T]{
		Items:      []T{},
		Number:     req.Number,
		Size:       req.Size,
		TotalItems: len(all),
		TotalPages: (len(all) + req.Size - 1) / req.Size,
	}
	start := req.Number * req.Size
	if start < len(all) {
		end := start + req.Size
		if end > len(all) {
			end = len(all)
		}
		page.Items = append(page.Items, all[start:end]...)
	}
	return page, nil
}

// FindAll returns every entity ordered by id.
func (m *Memory[T]) FindAll(ctx context.Context) ([]T, error) {
	m.record(OpFindAll)
	return m.snapshot(), nil
}

// snapshot returns all rows sorted by ascending id.
func (m *Memory[T]) snapshot() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]T, 0, len(m.rows))
	for _, v := range m.rows {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return m.idOf(out[i]) < m.idOf(out[j]) })
	return out
}

// Save assigns the next id to a new entity and upserts existing ones.
func (m *Memory[T]) Save(ctx context.Context, v T) (T, error) {
	m.record(OpSave)

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.idOf(v)
	if id == 0 {
		m.nextID++
		id = m.nextID
		v = m.withID(v, id)
	} else if id > m.nextID {
		m.nextID = id
	}
	m.rows[id] = v
	return v, nil
}

// Delete removes the entity with id or returns ErrNotFound.
func (m *Memory[T]) Delete(ctx context.Context, id int) error {
	m.record(OpDelete)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[id]; !ok {
		return fmt.Errorf("delete %d: %w", id, ErrNotFound)
	}
	delete(m.rows, id)
	return nil
}

// Exists reports whether id is present.
func (m *Memory[T]) Exists(ctx context.Context, id int) (bool, error) {
	m.record(OpExists)

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.rows[id]
	return ok, nil
}
