package background

import (
	"context"
	"log"
	"sync"
	"time"

	"ventamart/internal/jobs"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages periodic background jobs
type JobScheduler struct {
	scheduler         gocron.Scheduler
	lowStockSvc       *jobs.LowStockService
	lowStockThreshold int
	lowStockInterval  time.Duration
	registered        map[string]gocron.Job
	mu                sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(lowStockSvc *jobs.LowStockService, lowStockThreshold int, lowStockInterval time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	if lowStockInterval <= 0 {
		lowStockInterval = 30 * time.Minute
	}

	js := &JobScheduler{
		scheduler:         scheduler,
		lowStockSvc:       lowStockSvc,
		lowStockThreshold: lowStockThreshold,
		lowStockInterval:  lowStockInterval,
		registered:        make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	lowStockJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.lowStockInterval),
		gocron.NewTask(func() {
			if err := js.lowStockSvc.ScheduledLowStockCheck(context.Background(), js.lowStockThreshold); err != nil {
				log.Printf("Low stock check job failed: %v", err)
			}
		}),
		gocron.WithName("low-stock-check"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create low stock job: %v", err)
	} else {
		js.registered["low-stock-check"] = lowStockJob
	}

	log.Printf("Registered %d background jobs", len(js.registered))
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.registered))
	for name := range js.registered {
		names = append(names, name)
	}

	return map[string]interface{}{
		"total_jobs": len(js.registered),
		"jobs":       names,
	}
}
