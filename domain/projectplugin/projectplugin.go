// Package projectplugin contains the domain for per-project plugin
// bindings. A binding row is unique on (project_id, plugin_id); enabling
// an already-enabled plugin is an upsert, never a conflict.
package projectplugin

import (
	"time"

	"gorm.io/datatypes"
)

type ProjectPlugin struct {
	ID        string            `json:"id"`
	ProjectID string            `json:"project_id" gorm:"index:idx_project_plugin,unique"`
	PluginID  string            `json:"plugin_id" gorm:"index:idx_project_plugin,unique"`
	IsEnabled bool              `json:"is_enabled"`
	Config    datatypes.JSONMap `json:"config,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
