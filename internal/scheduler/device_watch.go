// Package scheduler polls for a mounted Kobo and exports new highlights
// when one appears.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/kobo-exporter/internal/entities"
	"github.com/mrlokans/kobo-exporter/internal/services"
)

// Exporter runs one export.
type Exporter interface {
	Run(ctx context.Context, trigger entities.ExportTrigger) (services.ExportSummary, error)
}

// Detector returns the mount point of a connected device, or an error
// when none is mounted.
type Detector func() (string, error)

// DeviceWatcher checks for a device on a cron schedule and exports once
// each time a device is newly mounted.
type DeviceWatcher struct {
	exporter Exporter
	detect   Detector
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc

	// Mount point seen on the previous check; empty when no device was there.
	stateMu   sync.Mutex
	lastDrive string
	lastRun   *services.ExportSummary
	lastErr   error
}

// NewDeviceWatcher creates a new watcher instance
func NewDeviceWatcher(exporter Exporter, detect Detector, schedule string) *DeviceWatcher {
	return &DeviceWatcher{
		exporter: exporter,
		detect:   detect,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start begins polling.
func (w *DeviceWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(w.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", w.schedule, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	entryID, err := w.cron.AddFunc(w.schedule, func() {
		w.Check(runCtx)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule device check: %w", err)
	}
	w.entryID = entryID
	w.cancelFunc = cancel

	w.cron.Start()
	w.isRunning = true

	nextRun, _ := NextRunTime(w.schedule, time.Now())
	log.Printf("Device watcher: started with schedule '%s' (%s). Next check: %v",
		w.schedule, DescribeSchedule(w.schedule), nextRun)

	go func() {
		<-runCtx.Done()
		w.Stop()
	}()

	return nil
}

// Stop waits for a running check to finish and stops polling.
func (w *DeviceWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return
	}

	ctx := w.cron.Stop()
	<-ctx.Done()

	w.cron.Remove(w.entryID)
	w.isRunning = false
	if w.cancelFunc != nil {
		w.cancelFunc()
		w.cancelFunc = nil
	}

	log.Printf("Device watcher: stopped")
}

// RunNow checks for a device immediately, in the background.
func (w *DeviceWatcher) RunNow(ctx context.Context) {
	go w.Check(ctx)
}

func (w *DeviceWatcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.isRunning
}

// NextRunTime returns when the next check will occur
func (w *DeviceWatcher) NextRunTime() *time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.isRunning {
		return nil
	}

	for _, entry := range w.cron.Entries() {
		if entry.ID == w.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// LastResult returns the outcome of the most recent export started by
// the watcher.
func (w *DeviceWatcher) LastResult() (*services.ExportSummary, error) {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	return w.lastRun, w.lastErr
}

// Check exports when a device is mounted that was not mounted on the
// previous check. It reports whether an export was started.
func (w *DeviceWatcher) Check(ctx context.Context) bool {
	drive, err := w.detect()

	w.stateMu.Lock()
	if err != nil || drive == "" {
		if w.lastDrive != "" {
			log.Printf("Device watcher: device at %s disconnected", w.lastDrive)
		}
		w.lastDrive = ""
		w.stateMu.Unlock()
		return false
	}
	if drive == w.lastDrive {
		w.stateMu.Unlock()
		return false
	}
	w.lastDrive = drive
	w.stateMu.Unlock()

	log.Printf("Device watcher: device found at %s, exporting", drive)
	summary, err := w.exporter.Run(ctx, entities.ExportTriggerSchedule)
	if errors.Is(err, services.ErrExportInProgress) {
		log.Printf("Device watcher: export already running, skipped")
		return false
	}

	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	if err != nil {
		log.Printf("Device watcher: export failed: %v", err)
		w.lastRun, w.lastErr = nil, err
		// Retry on the next check.
		w.lastDrive = ""
		return true
	}

	log.Printf("Device watcher: %s", summary.Message())
	w.lastRun, w.lastErr = &summary, nil
	return true
}
