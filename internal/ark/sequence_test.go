package ark

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConsole struct {
	commands []string
	failOn   string
}

func (c *recordingConsole) Execute(command string) (string, error) {
	if c.failOn != "" && command == c.failOn {
		return "", errors.New("console unavailable")
	}
	c.commands = append(c.commands, command)
	return "", nil
}

func (c *recordingConsole) Close() error { return nil }

func TestWipeSequence(t *testing.T) {
	t.Run("commands and pauses in order", func(t *testing.T) {
		console := &recordingConsole{}
		var pauses []time.Duration
		sleep := func(_ context.Context, d time.Duration) error {
			pauses = append(pauses, d)
			return nil
		}

		err := runSequence(context.Background(), console, wipeSequence(), sleep)
		require.NoError(t, err)

		require.Equal(t, []string{
			"ServerChat Wild creatures will be wiped in 60 seconds!",
			"ServerChat Wild creatures will be wiped in 30 seconds!",
			"ServerChat Wild creatures will be wiped in 10 seconds!",
			"ServerChat Wild creatures will be wiped in 5 seconds!",
			"ServerChat Wild creatures will be wiped in 4 seconds!",
			"ServerChat Wild creatures will be wiped in 3 seconds!",
			"ServerChat Wild creatures will be wiped in 2 seconds!",
			"ServerChat Wild creatures will be wiped in 1 second!",
			"DestroyWildDinos",
			"ServerChat Wild creatures have been wiped!",
		}, console.commands)

		assert.Equal(t, []time.Duration{
			30 * time.Second,
			20 * time.Second,
			5 * time.Second,
			time.Second,
			time.Second,
			time.Second,
			time.Second,
			time.Second,
			3 * time.Second,
			time.Second,
		}, pauses)
	})

	t.Run("stops at the first console error", func(t *testing.T) {
		console := &recordingConsole{failOn: "DestroyWildDinos"}
		sleep := func(context.Context, time.Duration) error { return nil }

		err := runSequence(context.Background(), console, wipeSequence(), sleep)
		require.Error(t, err)
		assert.Len(t, console.commands, 8)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		console := &recordingConsole{}
		sleep := func(ctx context.Context, _ time.Duration) error { return ctx.Err() }

		err := runSequence(ctx, console, wipeSequence(), sleep)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, console.commands)
	})
}

func TestSleepContext(t *testing.T) {
	t.Run("returns after the duration", func(t *testing.T) {
		require.NoError(t, sleepContext(context.Background(), time.Millisecond))
	})

	t.Run("returns early on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, sleepContext(ctx, time.Minute), context.Canceled)
	})
}
