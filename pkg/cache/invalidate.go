package cache

import (
	"context"
	"fmt"
)

// ActionKind selects what an Action does to a region.
type ActionKind int

const (
	// ActionRefresh puts a fresh value under a key (put-after-write).
	ActionRefresh ActionKind = iota + 1

	// ActionEvict removes one key.
	ActionEvict

	// ActionClear removes every entry of a region.
	ActionClear
)

// Action is one step of an invalidation plan.
type Action struct {
	Kind   ActionKind
	Region Region
	Key    string
	Value  any
}

// Refresh returns an action that puts value under key.
func Refresh(region Region, key string, value any) Action {
	return Action{Kind: ActionRefresh, Region: region, Key: key, Value: value}
}

// Evict returns an action that removes key.
func Evict(region Region, key string) Action {
	return Action{Kind: ActionEvict, Region: region, Key: key}
}

// ClearRegion returns an action that clears every entry of region.
func ClearRegion(region Region) Action {
	return Action{Kind: ActionClear, Region: region}
}

// String renders the action for logs.
func (a Action) String() string {
	switch a.Kind {
	case ActionRefresh:
		return fmt.Sprintf("refresh %s:%s", a.Region, a.Key)
	case ActionEvict:
		return fmt.Sprintf("evict %s:%s", a.Region, a.Key)
	case ActionClear:
		return fmt.Sprintf("clear %s", a.Region)
	default:
		return fmt.Sprintf("unknown(%d) %s", a.Kind, a.Region)
	}
}

// Apply runs actions in order. Every action settles before Apply returns.
func (m *Manager) Apply(ctx context.Context, actions ...Action) {
	for _, a := range actions {
		switch a.Kind {
		case ActionRefresh:
			m.putValue(ctx, a.Region, a.Key, a.Value)
		case ActionEvict:
			m.Evict(ctx, a.Region, a.Key)
		case ActionClear:
			m.Clear(ctx, a.Region)
		default:
			m.logger.Error().Stringer("action", a).Msg("Unknown cache action ignored")
		}
	}
}

// MutateAndInvalidate is the write path. It runs mutate against the store
// and, only if it succeeds, applies the plan built from its result. A
// failed mutation leaves every region untouched and its error is returned
// unchanged.
func MutateAndInvalidate[T any](ctx context.Context, m *Manager, mutate func(ctx context.Context) (T, error), plan func(T) []Action) (T, error) {
	v, err := mutate(ctx)
	if err != nil {
		return v, err
	}

	actions := plan(v)
	m.Apply(ctx, actions...)
	m.logger.Debug().Int("actions", len(actions)).Msg("Mutation applied, cache invalidated")

	return v, nil
}
