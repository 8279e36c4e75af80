package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/finassist/finchat-api/services"
)

// CronManager manages all scheduled background jobs
type CronManager struct {
	cron     *cron.Cron
	sessions *services.SessionManager
	monitor  *services.SystemMonitorService
	config   *services.ConfigManager
}

// NewCronManager creates a new cron manager
func NewCronManager(sessions *services.SessionManager, monitor *services.SystemMonitorService, config *services.ConfigManager) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:     c,
		sessions: sessions,
		monitor:  monitor,
		config:   config,
	}
}

// Start registers and starts all jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

func (m *CronManager) registerJobs() error {
	// Hourly: evict sessions idle past the window, messages included
	_, err := m.cron.AddFunc("0 0 * * * *", func() {
		m.EvictStaleSessions()
	})
	if err != nil {
		return err
	}

	// Daily at 03:15 UTC: trim old API metric samples
	_, err = m.cron.AddFunc("0 15 3 * * *", func() {
		m.PruneOldMetrics()
	})
	return err
}

// EvictStaleSessions deletes sessions inactive past the idle window
func (m *CronManager) EvictStaleSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	evicted, err := m.sessions.EvictInactive(ctx, m.config.Snapshot().SessionIdleWindow())
	if err != nil {
		log.Printf("Cron: session eviction failed: %v", err)
		return
	}
	if evicted > 0 {
		log.Printf("Cron: evicted %d stale sessions", evicted)
	}
}

// PruneOldMetrics trims API metric samples past the retention window
func (m *CronManager) PruneOldMetrics() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pruned, err := m.monitor.PruneMetrics(ctx, m.config.Snapshot().MetricsRetention())
	if err != nil {
		log.Printf("Cron: metrics pruning failed: %v", err)
		return
	}
	if pruned > 0 {
		log.Printf("Cron: pruned %d old metric samples", pruned)
	}
}
