package monitoring

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Health status values.
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
	StatusUnknown     = "unknown"
)

const pingTimeout = 5 * time.Second

// Pinger is anything whose reachability can be checked, usually the store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus is the outcome of the latest check.
type HealthStatus struct {
	Status    string    `json:"status"`
	CheckedAt time.Time `json:"checkedAt"`
	Error     string    `json:"error,omitempty"`
}

// Healthy reports whether the last check succeeded.
func (s HealthStatus) Healthy() bool {
	return s.Status == StatusOK
}

// HealthChecker periodically pings the store on a cron schedule.
type HealthChecker struct {
	store Pinger
	cron  *cron.Cron
	now   func() time.Time

	mu     sync.RWMutex
	status HealthStatus
}

// NewHealthChecker creates a checker running on schedule (standard cron
// syntax or descriptors such as "@every 30s").
func NewHealthChecker(store Pinger, schedule string) (*HealthChecker, error) {
	hc := &HealthChecker{
		store:  store,
		cron:   cron.New(),
		now:    time.Now,
		status: HealthStatus{Status: StatusUnknown},
	}
	if _, err := hc.cron.AddFunc(schedule, hc.Check); err != nil {
		return nil, err
	}
	return hc, nil
}

// Run performs one check immediately and then starts the schedule.
func (hc *HealthChecker) Run() {
	log.Info().Msg("Starting store health checker...")
	hc.Check()
	hc.cron.Start()
}

// Stop halts the schedule and waits for a running check to finish.
func (hc *HealthChecker) Stop() {
	<-hc.cron.Stop().Done()
	log.Info().Msg("Stopped store health checker.")
}

// Status returns the latest result.
func (hc *HealthChecker) Status() HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.status
}

// Check pings the store once and records the result, logging transitions.
func (hc *HealthChecker) Check() {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	next := HealthStatus{Status: StatusOK, CheckedAt: hc.now()}
	if err := hc.store.Ping(ctx); err != nil {
		next.Status = StatusUnavailable
		next.Error = err.Error()
	}

	hc.mu.Lock()
	prev := hc.status
	hc.status = next
	hc.mu.Unlock()

	if prev.Status == next.Status {
		return
	}
	if next.Healthy() {
		log.Info().Str("previous", prev.Status).Msg("Store is reachable")
	} else {
		log.Error().Str("error", next.Error).Str("previous", prev.Status).Msg("Store is unreachable")
	}
}
