// Package cache provides the region cache that fronts every foodapp read
// path, and the helpers that keep it consistent with the store.
//
// A region is a named namespace (food, food_page, restaurant, ...) holding
// key → Entry mappings. Regions live in a Backend: an in-process LRU per
// region (MemoryBackend) or one Redis hash per region (RedisBackend).
// The Manager wraps a backend and makes every operation total: backend
// failures are logged and counted, then treated as a miss or a no-op, so
// the cache can never introduce an externally visible error.
//
// # Reads
//
// Reads go through LoadOrPopulate, the cache-aside accessor:
//
//	food, err := cache.LoadOrPopulate(ctx, manager, cache.RegionFood, cache.IDKey(id),
//		func(ctx context.Context) (model.Food, error) {
//			return foods.Find(ctx, id)
//		})
//
// A miss calls the loader and populates the region. Loader errors are
// returned unchanged and never cached.
//
// # Writes
//
// Writes go through MutateAndInvalidate, which runs the mutation and then
// applies an explicit invalidation plan in order:
//
//	saved, err := cache.MutateAndInvalidate(ctx, manager,
//		func(ctx context.Context) (model.Food, error) { return foods.Save(ctx, f) },
//		func(f model.Food) []cache.Action {
//			return []cache.Action{
//				cache.Refresh(cache.RegionFood, cache.IDKey(f.ID), f),
//				cache.ClearRegion(cache.RegionFoodPage),
//			}
//		})
//
// A failed mutation leaves every region untouched.
//
// List-shaped regions do not track which entity ids they contain, so any
// write that can change list composition clears the whole list region.
// Single-entity writes refresh the entity's own key.
//
// # Metrics
//
//   - foodapp_cache_hits_total{region}
//   - foodapp_cache_misses_total{region}
//   - foodapp_cache_puts_total{region}
//   - foodapp_cache_evictions_total{region}
//   - foodapp_cache_clears_total{region}
//   - foodapp_cache_errors_total{operation}
package cache
