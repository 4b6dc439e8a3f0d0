package sweeper

import (
	"fmt"
	"time"

	"github.com/Sternrassler/foodapp/pkg/cache"
)

// Job names used by DefaultJobs.
const (
	JobFoods       = "foods"
	JobBills       = "bills"
	JobRestaurants = "restaurants"
	JobUsers       = "users"
	JobOrders      = "orders"
)

// Job clears Regions every time Schedule fires.
type Job struct {
	Name string

	// Schedule is a standard five-field cron spec or a descriptor such as
	// "@every 1h" or "@daily"
	Schedule string

	Regions []cache.Region
}

// Schedules configures the default jobs.
type Schedules struct {
	// FoodDailyAt is the wall-clock time (HH:MM, 24h) of the daily food sweep
	FoodDailyAt string

	BillEvery       time.Duration
	RestaurantEvery time.Duration
	UserEvery       time.Duration
	OrderEvery      time.Duration
}

// DefaultSchedules returns the production sweep cadence.
func DefaultSchedules() Schedules {
	return Schedules{
		FoodDailyAt:     "00:00",
		BillEvery:       time.Hour,
		RestaurantEvery: time.Hour,
		UserEvery:       2 * time.Minute,
		OrderEvery:      time.Hour,
	}
}

// DailySpec converts an HH:MM wall-clock time into a cron spec.
//
// Example:
//
//	DailySpec("03:30") == "30 3 * * *"
func DailySpec(at string) (string, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return "", fmt.Errorf("parse time of day %q: %w", at, err)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}

// EverySpec returns a fixed-interval spec measured from scheduler start.
// Intervals below one second are rounded up by the scheduler.
func EverySpec(d time.Duration) string {
	return "@every " + d.String()
}

// DefaultJobs builds the sweep jobs for every region.
func DefaultJobs(s Schedules) ([]Job, error) {
	daily, err := DailySpec(s.FoodDailyAt)
	if err != nil {
		return nil, err
	}

	intervals := map[string]time.Duration{
		JobBills:       s.BillEvery,
		JobRestaurants: s.RestaurantEvery,
		JobUsers:       s.UserEvery,
		JobOrders:      s.OrderEvery,
	}
	for name, d := range intervals {
		if d <= 0 {
			return nil, fmt.Errorf("job %s: interval must be positive (got %v)", name, d)
		}
	}

	return []Job{
		{Name: JobFoods, Schedule: daily, Regions: []cache.Region{cache.RegionFood, cache.RegionFoodPage}},
		{Name: JobBills, Schedule: EverySpec(s.BillEvery), Regions: []cache.Region{cache.RegionBill}},
		{Name: JobRestaurants, Schedule: EverySpec(s.RestaurantEvery), Regions: []cache.Region{cache.RegionRestaurant, cache.RegionRestaurantFoods}},
		{Name: JobUsers, Schedule: EverySpec(s.UserEvery), Regions: []cache.Region{cache.RegionUser}},
		{Name: JobOrders, Schedule: EverySpec(s.OrderEvery), Regions: []cache.Region{cache.RegionOrder, cache.RegionOrdersAll}},
	}, nil
}
