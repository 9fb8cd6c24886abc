// Package workspace contains the domain for workspaces, the tenancy root
// that owns plugins and credentials.
package workspace

import (
	"errors"
	"time"
)

var ErrWorkspaceNotFound = errors.New("workspace not found")

type Workspace struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	CreatedBy   string     `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}
