package credential

import "context"

type Repository interface {
	Create(ctx context.Context, c *Credential) error
	FindByID(ctx context.Context, id string) (*Credential, error)
	Search(ctx context.Context, workspaceID string, conditions []Condition) ([]Credential, error)
	Update(ctx context.Context, c *Credential) error
	// Delete removes the row. Credentials are never tombstoned: a deleted
	// secret blob must not linger in a recoverable state.
	Delete(ctx context.Context, id string) (bool, error)
}
