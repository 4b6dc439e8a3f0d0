package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sternrassler/foodapp/pkg/cache"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func newTestSupervisor(t *testing.T) (*Supervisor, *cache.Manager) {
	t.Helper()

	manager := cache.NewManager(cache.NewMemoryBackend(0), zerolog.Nop())
	sup := New(manager, zerolog.Nop(), time.UTC)
	t.Cleanup(func() {
		_ = sup.Stop(context.Background())
	})
	return sup, manager
}

func fill(manager *cache.Manager, regions ...cache.Region) {
	for _, r := range regions {
		manager.Put(context.Background(), r, "1", []byte(`{}`))
		manager.Put(context.Background(), r, "2", []byte(`{}`))
	}
}

func TestSupervisor_Register(t *testing.T) {
	sup, _ := newTestSupervisor(t)

	tests := []struct {
		name    string
		job     Job
		wantErr bool
	}{
		{name: "valid interval", job: Job{Name: "a", Schedule: "@every 1h", Regions: []cache.Region{cache.RegionBill}}},
		{name: "valid cron spec", job: Job{Name: "b", Schedule: "0 3 * * *", Regions: []cache.Region{cache.RegionFood}}},
		{name: "duplicate name", job: Job{Name: "a", Schedule: "@every 1h", Regions: []cache.Region{cache.RegionBill}}, wantErr: true},
		{name: "bad schedule", job: Job{Name: "c", Schedule: "whenever", Regions: []cache.Region{cache.RegionBill}}, wantErr: true},
		{name: "no regions", job: Job{Name: "d", Schedule: "@every 1h"}, wantErr: true},
		{name: "no name", job: Job{Schedule: "@every 1h", Regions: []cache.Region{cache.RegionBill}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sup.Register(tt.job)
			if (err != nil) != tt.wantErr {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if got := len(sup.Jobs()); got != 2 {
		t.Errorf("Jobs() = %d entries, want 2", got)
	}
}

func TestSupervisor_Register_DuplicateIsTyped(t *testing.T) {
	sup, _ := newTestSupervisor(t)
	job := Job{Name: "bills", Schedule: "@every 1h", Regions: []cache.Region{cache.RegionBill}}

	if err := sup.Register(job); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := sup.Register(job); !errors.Is(err, ErrDuplicateJob) {
		t.Errorf("second Register error = %v, want ErrDuplicateJob", err)
	}
}

func TestSupervisor_RunNow(t *testing.T) {
	sup, manager := newTestSupervisor(t)
	ctx := context.Background()

	job := Job{Name: "restaurants", Schedule: "@every 1h", Regions: []cache.Region{cache.RegionRestaurant, cache.RegionRestaurantFoods}}
	if err := sup.Register(job); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	fill(manager, cache.RegionRestaurant, cache.RegionRestaurantFoods, cache.RegionUser)

	before := testutil.ToFloat64(SweepsTotal.WithLabelValues("restaurants"))

	// Double fire: the second run clears already-empty regions
	for i := 0; i < 2; i++ {
		if err := sup.RunNow("restaurants"); err != nil {
			t.Fatalf("RunNow #%d failed: %v", i+1, err)
		}
		for _, r := range job.Regions {
			if n := manager.Len(ctx, r); n != 0 {
				t.Errorf("run #%d: Len(%s) = %d, want 0", i+1, r, n)
			}
		}
	}

	if n := manager.Len(ctx, cache.RegionUser); n != 2 {
		t.Errorf("unrelated region swept: Len(user) = %d, want 2", n)
	}
	if got := testutil.ToFloat64(SweepsTotal.WithLabelValues("restaurants")) - before; got != 2 {
		t.Errorf("sweeps delta = %v, want 2", got)
	}
}

func TestSupervisor_RunNow_Unknown(t *testing.T) {
	sup, _ := newTestSupervisor(t)

	if err := sup.RunNow("nope"); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("RunNow error = %v, want ErrUnknownJob", err)
	}
}

func TestSupervisor_ScheduledSweep(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the scheduler")
	}

	sup, manager := newTestSupervisor(t)
	ctx := context.Background()

	if err := sup.Register(Job{Name: "users", Schedule: EverySpec(time.Second), Regions: []cache.Region{cache.RegionUser}}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	fill(manager, cache.RegionUser)
	sup.Start()

	deadline := time.Now().Add(5 * time.Second)
	for manager.Len(ctx, cache.RegionUser) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("scheduled sweep did not clear the region in time")
		}
		time.Sleep(50 * time.Millisecond)
	}

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := sup.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	// No further runs after Stop
	fill(manager, cache.RegionUser)
	time.Sleep(1500 * time.Millisecond)
	if n := manager.Len(ctx, cache.RegionUser); n != 2 {
		t.Errorf("region swept after Stop: Len = %d, want 2", n)
	}
}

func TestSupervisor_JobsReportNextRun(t *testing.T) {
	sup, _ := newTestSupervisor(t)

	if err := sup.Register(Job{Name: "bills", Schedule: "@every 1h", Regions: []cache.Region{cache.RegionBill}}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	sup.Start()

	// The scheduler computes Next asynchronously after Start
	deadline := time.Now().Add(2 * time.Second)
	for {
		jobs := sup.Jobs()
		if len(jobs) == 1 && !jobs[0].Next.IsZero() {
			if until := time.Until(jobs[0].Next); until > time.Hour+time.Second {
				t.Errorf("next run in %v, want within 1h", until)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("next run never scheduled")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestNew_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("New should panic with nil manager")
		}
	}()
	New(nil, zerolog.Nop(), nil)
}
