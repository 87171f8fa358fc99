// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/portalcipa/cipa-server/schedule"
)

// Gauge receives the open state of each watched activity
type Gauge interface {
	SetWindowOpen(activity string, open bool)
}

// LoadFunc returns the current timeline events
type LoadFunc func(ctx context.Context) ([]schedule.Event, error)

// Watcher periodically evaluates the voting and registration windows
type Watcher struct {
	cron  *cron.Cron
	load  LoadFunc
	clock func() time.Time
	gauge Gauge

	mu   sync.Mutex
	last map[string]bool
}

var watched = []struct {
	activity string
	eval     func([]schedule.Event, time.Time) schedule.Status
}{
	{"voting", schedule.VotingStatus},
	{"registration", schedule.RegistrationStatus},
}

// New schedules the check on spec, a standard cron expression or descriptor like "@every 1m"
func New(spec string, load LoadFunc, clock func() time.Time, gauge Gauge) (*Watcher, error) {
	w := &Watcher{
		cron:  cron.New(),
		load:  load,
		clock: clock,
		gauge: gauge,
		last:  make(map[string]bool),
	}

	if _, err := w.cron.AddFunc(spec, func() { w.Check(w.clock()) }); err != nil {
		return nil, fmt.Errorf("invalid watch schedule %q: %w", spec, err)
	}

	return w, nil
}

func (w *Watcher) Start() {
	w.Check(w.clock())
	w.cron.Start()
}

// Stop halts the schedule and waits for a running check
func (w *Watcher) Stop() {
	<-w.cron.Stop().Done()
}

// Check evaluates every watched window at now and returns the open states
func (w *Watcher) Check(now time.Time) map[string]bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	events, err := w.load(ctx)
	if err != nil {
		slog.Error("failed to load timeline for window check", "error", err)
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	states := make(map[string]bool, len(watched))
	for _, item := range watched {
		status := item.eval(events, now)
		states[item.activity] = status.Open

		if w.gauge != nil {
			w.gauge.SetWindowOpen(item.activity, status.Open)
		}

		prev, seen := w.last[item.activity]
		if seen && prev != status.Open {
			slog.Info("schedule window changed",
				"activity", item.activity,
				"open", status.Open,
				"dates", status.Dates,
				"message", status.Message)
		}
		w.last[item.activity] = status.Open
	}

	return states
}
