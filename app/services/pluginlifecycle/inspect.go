package pluginlifecycle

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"quore/app/services/pluginstate"
	"quore/domain/plugin"
)

// InspectionError wraps any failure while querying the plugin's MCP
// endpoint for its capabilities.
type InspectionError struct {
	Err error
}

func (e *InspectionError) Error() string {
	return fmt.Sprintf("plugin inspection failed: %v", e.Err)
}

func (e *InspectionError) Unwrap() error {
	return e.Err
}

// ToolSession is an initialized conversation with a plugin's MCP
// endpoint. Close must always be called.
type ToolSession interface {
	ListTools(ctx context.Context) ([]plugin.ToolDescriptor, error)
	ListResources(ctx context.Context) ([]plugin.ResourceDescriptor, error)
	ListPrompts(ctx context.Context) ([]plugin.PromptDescriptor, error)
	Close() error
}

// SessionDialer opens a ToolSession against an endpoint URL. Tests
// substitute a fake.
type SessionDialer func(ctx context.Context, endpointURL string) (ToolSession, error)

// Inspect connects to the plugin's MCP endpoint, discovers its tools,
// resources and prompts, and atomically replaces the stored descriptors
// while moving the plugin to running. On failure the old descriptors
// survive untouched and the plugin lands in error.
func (m *Manager) Inspect(ctx context.Context, p *plugin.Plugin) error {
	ctx, cancel := context.WithTimeout(ctx, m.inspectTimeout)
	defer cancel()

	tools, resources, prompts, err := m.discover(ctx, p)
	if err != nil {
		ierr := &InspectionError{Err: err}
		m.failTo(ctx, p, ierr.Error())
		return ierr
	}

	err = m.plugins.Transaction(ctx, func(txRepo plugin.Repository) error {
		if err := txRepo.ReplaceDescriptors(ctx, p.ID, tools, resources, prompts); err != nil {
			return err
		}
		return pluginstate.New(txRepo).Transition(ctx, p, plugin.StateRunning, "")
	})
	if err != nil {
		ierr := &InspectionError{Err: err}
		m.failTo(ctx, p, ierr.Error())
		return ierr
	}

	p.Tools = tools
	p.Resources = resources
	p.Prompts = prompts

	log.WithFields(log.Fields{
		"plugin_id": p.ID,
		"tools":     len(tools),
		"resources": len(resources),
		"prompts":   len(prompts),
	}).Info("plugin inspected")

	return nil
}

func (m *Manager) discover(ctx context.Context, p *plugin.Plugin) ([]plugin.ToolDescriptor, []plugin.ResourceDescriptor, []plugin.PromptDescriptor, error) {
	if p.EndpointURL == "" {
		return nil, nil, nil, fmt.Errorf("plugin %s has no endpoint URL", p.ID)
	}

	session, err := m.dial(ctx, p.EndpointURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to %s: %w", p.EndpointURL, err)
	}
	defer session.Close()

	tools, err := session.ListTools(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listing tools: %w", err)
	}
	resources, err := session.ListResources(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listing resources: %w", err)
	}
	prompts, err := session.ListPrompts(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listing prompts: %w", err)
	}
	return tools, resources, prompts, nil
}
