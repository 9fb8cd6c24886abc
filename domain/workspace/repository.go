package workspace

import "context"

type Repository interface {
	Create(ctx context.Context, w *Workspace) error
	FindByID(ctx context.Context, id string) (*Workspace, error)
	FindAll(ctx context.Context) ([]Workspace, error)
	Delete(ctx context.Context, id string) error
}
