package ark

import (
	"context"
	"fmt"
	"time"
)

// Console is an authenticated remote console to a single game server.
type Console interface {
	Execute(command string) (string, error)
	Close() error
}

// wipeStep is one command in the wipe sequence, followed by a pause.
type wipeStep struct {
	command string
	pause   time.Duration
}

// sessionDeadline bounds the whole wipe sequence so a stalled console
// does not keep the connection open indefinitely.
const sessionDeadline = 90 * time.Second

// wipeSequence returns the full command schedule: countdown warnings,
// the wipe itself, and a final all-clear message.
func wipeSequence() []wipeStep {
	steps := []wipeStep{
		{warning(60), 30 * time.Second},
		{warning(30), 20 * time.Second},
		{warning(10), 5 * time.Second},
		{warning(5), time.Second},
		{warning(4), time.Second},
		{warning(3), time.Second},
		{warning(2), time.Second},
		{warning(1), time.Second},
		{"DestroyWildDinos", 3 * time.Second},
		{serverChat("Wild creatures have been wiped!"), time.Second},
	}
	return steps
}

func warning(seconds int) string {
	unit := "seconds"
	if seconds == 1 {
		unit = "second"
	}
	return serverChat(fmt.Sprintf("Wild creatures will be wiped in %d %s!", seconds, unit))
}

func serverChat(message string) string {
	return fmt.Sprintf("ServerChat %s", message)
}

// runSequence executes every step against the console, pausing between
// commands. It stops at the first console error or context cancellation.
func runSequence(ctx context.Context, console Console, steps []wipeStep, sleep func(context.Context, time.Duration) error) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := console.Execute(step.command); err != nil {
			return fmt.Errorf("executing %q: %w", step.command, err)
		}
		if err := sleep(ctx, step.pause); err != nil {
			return err
		}
	}
	return nil
}

// sleepContext pauses for d, returning early if ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
