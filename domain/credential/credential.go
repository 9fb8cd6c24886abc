// Package credential contains the domain for workspace-scoped credentials.
// Secret material is held only as an encrypted blob; plaintext field maps
// exist in memory for the duration of a single operation.
package credential

import (
	"errors"
	"time"
)

var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrBadFilterField     = errors.New("filter field not allowed")
	ErrBadFilterOperator  = errors.New("filter operator not allowed")
)

// Type names are wire values; the full field schemas live in the
// credential type registry.
const (
	TypeGitHubPAT  = "github_pat"
	TypeGitLabPAT  = "gitlab_pat"
	TypeSSHKey     = "ssh_key"
	TypeBearerAuth = "bearer_auth"
	TypeBasicAuth  = "basic_auth"
)

type Credential struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	EncryptedBlob []byte    `json:"-"`
	CreatedBy     string    `json:"created_by"`
	WorkspaceID   string    `json:"workspace_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Operator is a comparison operator usable in search conditions.
type Operator string

const (
	OpEq    Operator = "="
	OpNeq   Operator = "!="
	OpGt    Operator = ">"
	OpLt    Operator = "<"
	OpGte   Operator = ">="
	OpLte   Operator = "<="
	OpILike Operator = "ilike"
	OpIn    Operator = "in"
	OpNotIn Operator = "not in"
)

// Condition is one clause of an AND-conjunction over named columns.
type Condition struct {
	Field string
	Op    Operator
	Value any
}
