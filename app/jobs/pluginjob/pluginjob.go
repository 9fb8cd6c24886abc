// Package pluginjob runs plugin initialization in the background so the
// registration request can return immediately.
package pluginjob

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"quore/domain/plugin"
)

type TriggerFunc func(func() error)

type Initializer interface {
	Initialize(ctx context.Context, pluginID string) (*plugin.Plugin, error)
}

type Job struct {
	trigger     TriggerFunc
	initializer Initializer
}

type Config struct {
	Initializer Initializer
	Trigger     TriggerFunc
}

func New(initializer Initializer) *Job {
	return NewWithConfig(&Config{Initializer: initializer})
}

func NewWithConfig(cfg *Config) *Job {
	if cfg.Trigger == nil {
		cfg.Trigger = Trigger
	}
	return &Job{
		trigger:     cfg.Trigger,
		initializer: cfg.Initializer,
	}
}

// InitializePlugin schedules one initialization pass. The lifecycle
// manager records error states itself, so a retried run always starts
// from a consistent row.
func (j *Job) InitializePlugin(pluginID string) {
	jobID := uuid.NewString()
	go j.trigger(func() error {
		p, err := j.initializer.Initialize(context.Background(), pluginID)
		if err != nil {
			log.Errorf("Plugin %s initialization failed (job %s): %v", pluginID, jobID, err)
			return err
		}
		log.Infof("Plugin %s initialized, state=%s (job %s)", p.ID, p.State, jobID)
		return nil
	})
}
