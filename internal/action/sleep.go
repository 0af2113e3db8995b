package action

import (
	"context"
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	"github.com/alexisbeaulieu97/citrine/internal/validation"
)

// DefaultSleep is used when no time is configured.
const DefaultSleep = 5000 * time.Millisecond

// SleepConfig configures a Sleep action. Time is either milliseconds or a Go duration and
// may contain variables.
type SleepConfig struct {
	Meta `yaml:",inline"`
	Time string `yaml:"time,omitempty"`
}

// Sleep pauses the calling worker.
type Sleep struct {
	Base
	time string
}

// NewSleep validates cfg and builds a Sleep action.
func NewSleep(cfg SleepConfig) (*Sleep, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	if cfg.Time != "" && !containsDynamicContent(cfg.Time) {
		if _, err := validation.ParseDuration(cfg.Time); err != nil {
			return nil, fmt.Errorf("invalid sleep time %q: %w", cfg.Time, err)
		}
	}
	return &Sleep{Base: NewBase(cfg.Meta, "sleep"), time: cfg.Time}, nil
}

// Execute implements Action. Cancellation of ctx ends the pause early with ctx.Err().
func (s *Sleep) Execute(ctx context.Context, tc *testcontext.Context) error {
	d := DefaultSleep
	if s.time != "" {
		resolved, err := tc.ReplaceDynamicContent(s.time)
		if err != nil {
			return err
		}
		if d, err = validation.ParseDuration(resolved); err != nil {
			return fmt.Errorf("invalid sleep time %q: %w", resolved, err)
		}
	}

	tc.Logger().WithFields(map[string]any{"action": s.Name(), "duration": d.String()}).Info("sleeping")

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
