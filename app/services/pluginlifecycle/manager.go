// Package pluginlifecycle orchestrates a plugin's path from registration
// through repository clone and MCP inspection to a running state. Its
// operations are synchronous and composable: they can run inline in a
// request or from a background job worker.
package pluginlifecycle

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"quore/app/services/credentialstore"
	"quore/app/services/gitcred"
	"quore/app/services/pluginstate"
	"quore/domain/plugin"
)

const (
	defaultCloneTimeout   = 5 * time.Minute
	defaultInspectTimeout = 60 * time.Second
)

type Manager struct {
	plugins     plugin.Repository
	credentials *credentialstore.Store
	applier     *gitcred.Applier
	dial        SessionDialer
	run         CommandRunner

	cloneRoot      string
	cloneTimeout   time.Duration
	inspectTimeout time.Duration

	// one mutex per plugin id; serializes clone attempts so concurrent
	// initializations cannot interleave directory deletion/recreation
	locks sync.Map
}

type Config struct {
	Plugins     plugin.Repository
	Credentials *credentialstore.Store
	Applier     *gitcred.Applier
	Dialer      SessionDialer
	Runner      CommandRunner

	CloneRoot      string
	CloneTimeout   time.Duration
	InspectTimeout time.Duration
}

func New(plugins plugin.Repository, credentials *credentialstore.Store) *Manager {
	return NewWithConfig(Config{
		Plugins:     plugins,
		Credentials: credentials,
	})
}

func NewWithConfig(cfg Config) *Manager {
	if cfg.Applier == nil {
		cfg.Applier = gitcred.New()
	}
	if cfg.Dialer == nil {
		cfg.Dialer = dialMCP
	}
	if cfg.Runner == nil {
		cfg.Runner = runCommand
	}
	if cfg.CloneRoot == "" {
		cfg.CloneRoot = filepath.Join(os.TempDir(), "quore-plugins")
	}
	if cfg.CloneTimeout == 0 {
		cfg.CloneTimeout = defaultCloneTimeout
	}
	if cfg.InspectTimeout == 0 {
		cfg.InspectTimeout = defaultInspectTimeout
	}

	return &Manager{
		plugins:        cfg.Plugins,
		credentials:    cfg.Credentials,
		applier:        cfg.Applier,
		dial:           cfg.Dialer,
		run:            cfg.Runner,
		cloneRoot:      cfg.CloneRoot,
		cloneTimeout:   cfg.CloneTimeout,
		inspectTimeout: cfg.InspectTimeout,
	}
}

type RegisterInput struct {
	Name          string
	Description   string
	Version       string
	EndpointURL   string
	RepositoryURL string
	Metadata      map[string]any
	CredentialID  *string
	IsGlobal      bool
}

// Register inserts the plugin row. The initial state is registered, or
// initializing when a repository clone is about to be attempted. No
// network or git I/O happens here.
func (m *Manager) Register(ctx context.Context, workspaceID string, in RegisterInput) (*plugin.Plugin, error) {
	if in.CredentialID != nil {
		if _, err := m.credentials.Get(ctx, *in.CredentialID); err != nil {
			return nil, err
		}
	}

	state := plugin.StateRegistered
	if in.RepositoryURL != "" {
		state = plugin.StateInitializing
	}

	p := &plugin.Plugin{
		Name:             in.Name,
		Description:      in.Description,
		Version:          in.Version,
		State:            state,
		StateDescription: plugin.StateDescriptions[state],
		EndpointURL:      in.EndpointURL,
		RepositoryURL:    in.RepositoryURL,
		PluginMetadata:   datatypes.JSONMap(in.Metadata),
		CredentialID:     in.CredentialID,
		WorkspaceID:      workspaceID,
		IsGlobal:         in.IsGlobal,
	}
	if err := m.plugins.Create(ctx, p); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"plugin_id":    p.ID,
		"workspace_id": workspaceID,
		"state":        p.State,
	}).Info("plugin registered")

	return p, nil
}

// Initialize runs one full lifecycle pass: transition to initializing,
// clone when a repository is configured, inspect, and land in running.
// Any failure lands the plugin in error with a readable description, so
// it is safe for an at-least-once dispatcher to retry.
func (m *Manager) Initialize(ctx context.Context, pluginID string) (*plugin.Plugin, error) {
	p, err := m.plugins.FindByID(ctx, pluginID)
	if err != nil {
		return nil, err
	}

	machine := pluginstate.New(m.plugins)
	if p.State != plugin.StateInitializing {
		if err := machine.Transition(ctx, p, plugin.StateInitializing, ""); err != nil {
			return nil, err
		}
	}

	if p.RepositoryURL != "" {
		if err := m.CloneRepository(ctx, p); err != nil {
			m.failTo(ctx, p, err.Error())
			return p, err
		}
	}

	if err := m.Inspect(ctx, p); err != nil {
		return p, err
	}
	return p, nil
}

// Stop moves the plugin to stopped; an operator re-initializes to
// recover.
func (m *Manager) Stop(ctx context.Context, pluginID string) (*plugin.Plugin, error) {
	p, err := m.plugins.FindByID(ctx, pluginID)
	if err != nil {
		return nil, err
	}
	if err := pluginstate.New(m.plugins).Transition(ctx, p, plugin.StateStopped, ""); err != nil {
		return nil, err
	}
	return p, nil
}

// MarkIdle parks a running plugin after inactivity.
func (m *Manager) MarkIdle(ctx context.Context, pluginID string) (*plugin.Plugin, error) {
	p, err := m.plugins.FindByID(ctx, pluginID)
	if err != nil {
		return nil, err
	}
	if err := pluginstate.New(m.plugins).Transition(ctx, p, plugin.StateIdle, ""); err != nil {
		return nil, err
	}
	return p, nil
}

// Activate brings an idle plugin back to running.
func (m *Manager) Activate(ctx context.Context, pluginID string) (*plugin.Plugin, error) {
	p, err := m.plugins.FindByID(ctx, pluginID)
	if err != nil {
		return nil, err
	}
	if err := pluginstate.New(m.plugins).Transition(ctx, p, plugin.StateRunning, ""); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the plugin and drops its clone mutex so the lock map
// does not accumulate entries for plugins that no longer exist.
func (m *Manager) Delete(ctx context.Context, pluginID string) error {
	if err := m.plugins.Delete(ctx, pluginID); err != nil {
		return err
	}
	m.locks.Delete(pluginID)
	return nil
}

// Tools returns the plugin's discovered tool descriptors.
func (m *Manager) Tools(ctx context.Context, pluginID string) ([]plugin.ToolDescriptor, error) {
	p, err := m.plugins.FindByID(ctx, pluginID)
	if err != nil {
		return nil, err
	}
	return p.Tools, nil
}

// CredentialFields returns the plugin's decrypted credential fields, or
// nil when the plugin references no credential. Internal callers only.
func (m *Manager) CredentialFields(ctx context.Context, p *plugin.Plugin) (map[string]any, error) {
	if p.CredentialID == nil {
		return nil, nil
	}
	return m.credentials.DecryptedFields(ctx, *p.CredentialID)
}

// failTo records a failure on the plugin row. A cancelled caller context
// must not leave the plugin stuck mid-operation, so persistence runs on
// a detached context.
func (m *Manager) failTo(ctx context.Context, p *plugin.Plugin, description string) {
	detached := context.WithoutCancel(ctx)
	if err := pluginstate.New(m.plugins).Transition(detached, p, plugin.StateError, description); err != nil {
		log.WithError(err).WithField("plugin_id", p.ID).Error("failed to record plugin error state")
	}
}

func (m *Manager) lockFor(pluginID string) *sync.Mutex {
	mu, _ := m.locks.LoadOrStore(pluginID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
