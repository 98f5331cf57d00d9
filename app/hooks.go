package app

import (
	"context"
	"errors"
	"fmt"
)

// Hook is a lifecycle callback.
type Hook func(ctx context.Context) error

// OnStart hooks run in order before the ready check. The first failure
// aborts startup.
func (a *App) OnStart(hooks ...Hook) { a.onStart = append(a.onStart, hooks...) }

// OnReady hooks run after the ready check, just before the task or server.
func (a *App) OnReady(hooks ...Hook) { a.onReady = append(a.onReady, hooks...) }

// OnStop hooks run in reverse registration order during shutdown, before
// telemetry is flushed. Every hook runs even if an earlier one fails.
func (a *App) OnStop(hooks ...Hook) { a.onStop = append(a.onStop, hooks...) }

func runHooks(ctx context.Context, phase string, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("%s hook %d: %w", phase, i, err)
		}
	}
	return nil
}

func runStopHooks(ctx context.Context, hooks []Hook) error {
	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop hook %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
