package pluginjob

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quore/domain/plugin"
)

type fakeInitializer struct {
	mu    sync.Mutex
	ids   []string
	fails int
}

func (f *fakeInitializer) Initialize(ctx context.Context, pluginID string) (*plugin.Plugin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, pluginID)
	if f.fails > 0 {
		f.fails--
		return nil, errors.New("endpoint unreachable")
	}
	return &plugin.Plugin{ID: pluginID, State: plugin.StateRunning}, nil
}

func TestInitializePlugin(t *testing.T) {
	t.Run("runs initialization asynchronously", func(t *testing.T) {
		init := &fakeInitializer{}
		done := make(chan struct{})
		job := NewWithConfig(&Config{
			Initializer: init,
			Trigger: func(fn func() error) {
				_ = fn()
				close(done)
			},
		})

		job.InitializePlugin("plg_1")

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("trigger never ran")
		}
		assert.Equal(t, []string{"plg_1"}, init.ids)
	})

	t.Run("retries until success", func(t *testing.T) {
		init := &fakeInitializer{fails: 2}
		done := make(chan struct{})
		job := NewWithConfig(&Config{
			Initializer: init,
			Trigger: func(fn func() error) {
				triggerWithConfig(fn, TriggerConfig{
					MaxRetries:    3,
					InitialDelay:  time.Millisecond,
					BackoffFactor: 2,
				})
				close(done)
			},
		})

		job.InitializePlugin("plg_1")

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("trigger never finished")
		}
		require.Len(t, init.ids, 3)
	})
}
