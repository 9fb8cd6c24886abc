package projectplugin

import "context"

type Repository interface {
	// Upsert inserts the binding or, when a row already exists for the
	// (project, plugin) pair, updates is_enabled and config in place.
	Upsert(ctx context.Context, pp *ProjectPlugin) error
	FindByProjectAndPlugin(ctx context.Context, projectID, pluginID string) (*ProjectPlugin, error)
	FindByProject(ctx context.Context, projectID string) ([]ProjectPlugin, error)
	Update(ctx context.Context, pp *ProjectPlugin) error
}
