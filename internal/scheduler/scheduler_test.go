package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew(t *testing.T) {
	s, err := New("Europe/London", discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "Europe/London", s.location.String())
}

func TestNew_InvalidTimezone(t *testing.T) {
	_, err := New("Invalid/Zone", discardLogger())
	assert.Error(t, err)
}

func TestAdd(t *testing.T) {
	s, err := New("UTC", discardLogger())
	require.NoError(t, err)

	require.NoError(t, s.Add("publish-due", "*/5 * * * *", func(context.Context) error { return nil }))
	assert.Equal(t, 1, s.Len())

	assert.Error(t, s.Add("bad", "not a spec", func(context.Context) error { return nil }))
	assert.Equal(t, 1, s.Len())
}

func TestStartStop(t *testing.T) {
	s, err := New("UTC", discardLogger())
	require.NoError(t, err)

	ran := make(chan struct{}, 1)
	require.NoError(t, s.Add("tick", "@every 10ms", func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return errors.New("logged, not fatal")
	}))

	s.Start()
	s.Start()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
	assert.Error(t, s.ctx.Err())
}
