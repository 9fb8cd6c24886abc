// Package pluginbinding resolves which plugins and tools a project can
// use. Workspace-global plugins apply to every project automatically;
// everything else needs an explicit per-project binding.
package pluginbinding

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"quore/domain/plugin"
	"quore/domain/project"
	"quore/domain/projectplugin"
)

// ValidationError reports an enable/disable request that contradicts the
// plugin's scoping.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

type Service struct {
	bindings projectplugin.Repository
	plugins  plugin.Repository
	projects project.Repository
}

func New(bindings projectplugin.Repository, plugins plugin.Repository, projects project.Repository) *Service {
	return &Service{
		bindings: bindings,
		plugins:  plugins,
		projects: projects,
	}
}

// Enable turns a plugin on for a project, upserting the binding row so
// repeated enables are idempotent. Global plugins cannot be bound: they
// already apply to every project in their workspace.
func (s *Service) Enable(ctx context.Context, projectID, pluginID string, config map[string]any) (*projectplugin.ProjectPlugin, error) {
	proj, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	p, err := s.plugins.FindByID(ctx, pluginID)
	if err != nil {
		return nil, err
	}
	if p.WorkspaceID != proj.WorkspaceID {
		return nil, plugin.ErrPluginNotFound
	}
	if p.IsGlobal {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("plugin %s is workspace-global and cannot be enabled per project", pluginID),
		}
	}

	pp := &projectplugin.ProjectPlugin{
		ProjectID: projectID,
		PluginID:  pluginID,
		IsEnabled: true,
		Config:    datatypes.JSONMap(config),
	}
	if err := s.bindings.Upsert(ctx, pp); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"project_id": projectID,
		"plugin_id":  pluginID,
	}).Info("plugin enabled for project")

	return pp, nil
}

// Disable flips the binding off. It reports false when no binding
// existed, which callers treat as a no-op rather than an error.
func (s *Service) Disable(ctx context.Context, projectID, pluginID string) (bool, error) {
	pp, err := s.bindings.FindByProjectAndPlugin(ctx, projectID, pluginID)
	if err != nil {
		return false, err
	}
	if pp == nil {
		return false, nil
	}
	if !pp.IsEnabled {
		return true, nil
	}

	pp.IsEnabled = false
	if err := s.bindings.Update(ctx, pp); err != nil {
		return false, err
	}

	log.WithFields(log.Fields{
		"project_id": projectID,
		"plugin_id":  pluginID,
	}).Info("plugin disabled for project")

	return true, nil
}

// EnabledPlugin pairs a plugin with the per-project config attached to
// its binding. Global plugins carry no binding config.
type EnabledPlugin struct {
	Plugin plugin.Plugin     `json:"plugin"`
	Config datatypes.JSONMap `json:"config,omitempty"`
	Global bool              `json:"global"`
}

// ListEnabledForProject returns the plugins effective for a project: the
// workspace's global plugins plus explicitly enabled ones. If a plugin
// somehow appears in both sets the explicit binding wins, so its config
// is honored.
func (s *Service) ListEnabledForProject(ctx context.Context, projectID string) ([]EnabledPlugin, error) {
	proj, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	bindings, err := s.bindings.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	enabled := make([]EnabledPlugin, 0)
	seen := make(map[string]bool)
	for _, b := range bindings {
		if !b.IsEnabled {
			seen[b.PluginID] = true
			continue
		}
		p, err := s.plugins.FindByID(ctx, b.PluginID)
		if err != nil {
			if err == plugin.ErrPluginNotFound {
				// plugin deleted after binding; stale row is harmless
				continue
			}
			return nil, err
		}
		enabled = append(enabled, EnabledPlugin{Plugin: *p, Config: b.Config})
		seen[b.PluginID] = true
	}

	global := true
	globals, err := s.plugins.FindAll(ctx, plugin.PluginFilters{
		WorkspaceID: &proj.WorkspaceID,
		IsGlobal:    &global,
	})
	if err != nil {
		return nil, err
	}
	for _, p := range globals {
		if seen[p.ID] {
			continue
		}
		enabled = append(enabled, EnabledPlugin{Plugin: p, Global: true})
	}

	return enabled, nil
}

// ListEnabledToolsForProject flattens the enabled plugins down to their
// active tools. Inactive tools and plugins that are not running are
// filtered out.
func (s *Service) ListEnabledToolsForProject(ctx context.Context, projectID string) ([]plugin.ToolDescriptor, error) {
	enabled, err := s.ListEnabledForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	tools := make([]plugin.ToolDescriptor, 0)
	for _, e := range enabled {
		if e.Plugin.State != plugin.StateRunning {
			continue
		}
		for _, t := range e.Plugin.Tools {
			if t.IsActive {
				tools = append(tools, t)
			}
		}
	}
	return tools, nil
}
