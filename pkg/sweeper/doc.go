// Package sweeper bounds the staleness of every cache region with
// background jobs that clear whole regions on fixed schedules, whether or
// not targeted invalidation ran.
//
// A Supervisor owns the jobs on a single cron scheduler:
//
//	sup := sweeper.New(manager, logger, time.Local)
//	jobs, _ := sweeper.DefaultJobs(sweeper.DefaultSchedules())
//	for _, job := range jobs {
//		_ = sup.Register(job)
//	}
//	sup.Start()
//	defer sup.Stop(ctx)
//
// Default jobs:
//
//   - foods: food, food_page: daily at a fixed wall-clock time
//   - bills: bill: every hour from start
//   - restaurants: restaurant, restaurant_foods: every hour from start
//   - users: user: every 2 minutes from start
//   - orders: order, orders_all: every hour from start
//
// Clearing an empty region is a no-op, so a job that fires twice, or runs
// alongside RunNow, is harmless. A sweep may remove an entry that a
// concurrent read just populated; the next read repopulates it.
package sweeper
