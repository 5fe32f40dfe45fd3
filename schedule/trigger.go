// Package schedule runs recurring ingestion passes on a cron expression.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

var (
	// ErrRunFuncRequired is returned when no pass function is provided.
	ErrRunFuncRequired = errors.New("run function required")

	// ErrAlreadyRunning is returned when Start is called twice.
	ErrAlreadyRunning = errors.New("trigger already running")
)

// Trigger fires a pass function on a cron schedule. Overlapping runs are
// prevented: a tick that arrives while a pass is still executing is
// dropped, since an ingestion pass is already idempotent per attachment.
type Trigger struct {
	cron    *cron.Cron
	run     func(ctx context.Context)
	logger  *slog.Logger
	mu      sync.Mutex
	busy    bool
	running bool
}

// Option configures a Trigger.
type Option func(*Trigger) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trigger) error {
		if logger == nil {
			logger = slog.Default()
		}
		t.logger = logger
		return nil
	}
}

// NewTrigger creates a trigger that invokes run according to the standard
// five-field cron expression.
func NewTrigger(expr string, run func(ctx context.Context), opts ...Option) (*Trigger, error) {
	if run == nil {
		return nil, ErrRunFuncRequired
	}

	t := &Trigger{
		cron:   cron.New(),
		run:    run,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	if _, err := t.cron.AddFunc(expr, t.tick); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	return t, nil
}

func (t *Trigger) tick() {
	t.mu.Lock()
	if t.busy {
		t.mu.Unlock()
		t.logger.Warn("previous pass still running, skipping tick")
		return
	}
	t.busy = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.busy = false
		t.mu.Unlock()
	}()

	t.run(context.Background())
}

// Start begins firing the schedule.
func (t *Trigger) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return ErrAlreadyRunning
	}
	t.cron.Start()
	t.running = true
	return nil
}

// Stop stops the schedule and waits for an in-flight pass to finish.
func (t *Trigger) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.mu.Unlock()

	<-t.cron.Stop().Done()
}
