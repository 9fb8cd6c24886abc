// Package plugin contains the domain for MCP-backed plugins and the
// capability descriptors discovered from them.
package plugin

import (
	"errors"
	"time"

	"gorm.io/datatypes"
)

var ErrPluginNotFound = errors.New("plugin not found")

type Plugin struct {
	ID               string            `json:"id"`
	// the unique name-per-workspace index is partial so a deleted
	// plugin's name can be registered again
	Name             string            `json:"name" gorm:"index:idx_plugins_workspace_name,unique,where:deleted_at IS NULL"`
	Description      string            `json:"description,omitempty"`
	Version          string            `json:"version,omitempty"`
	State            State             `json:"state"`
	StateDescription string            `json:"state_description,omitempty"`
	EndpointURL      string            `json:"endpoint_url"`
	RepositoryURL    string            `json:"repository_url,omitempty"`
	PluginMetadata   datatypes.JSONMap `json:"plugin_metadata,omitempty"`
	CredentialID     *string           `json:"credential_id,omitempty"`
	WorkspaceID      string            `json:"workspace_id" gorm:"index:idx_plugins_workspace_name,unique"`
	IsGlobal         bool              `json:"is_global"`

	Tools     []ToolDescriptor     `json:"tools" gorm:"constraint:OnDelete:CASCADE"`
	Resources []ResourceDescriptor `json:"resources" gorm:"constraint:OnDelete:CASCADE"`
	Prompts   []PromptDescriptor   `json:"prompts" gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`
}

// ToolDescriptor advertises one tool a plugin exposes. Descriptor sets are
// replaced wholesale on every successful inspection, never merged.
type ToolDescriptor struct {
	ID           uint              `json:"-" gorm:"primaryKey"`
	PluginID     string            `json:"-" gorm:"index"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	InputSchema  datatypes.JSON    `json:"input_schema,omitempty"`
	OutputSchema datatypes.JSON    `json:"output_schema,omitempty"`
	ToolMetadata datatypes.JSONMap `json:"tool_metadata,omitempty"`
	IsActive     bool              `json:"is_active"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type ResourceDescriptor struct {
	ID          uint      `json:"-" gorm:"primaryKey"`
	PluginID    string    `json:"-" gorm:"index"`
	URI         string    `json:"uri"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	MimeType    string    `json:"mime_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PromptDescriptor struct {
	ID          uint           `json:"-" gorm:"primaryKey"`
	PluginID    string         `json:"-" gorm:"index"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Arguments   datatypes.JSON `json:"arguments,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type PluginFilters struct {
	WorkspaceID *string
	State       *State
	IsGlobal    *bool
}
