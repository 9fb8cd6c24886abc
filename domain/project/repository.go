package project

import "context"

type Repository interface {
	Create(ctx context.Context, p *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	FindAll(ctx context.Context, filters ProjectFilters) ([]Project, error)
	Delete(ctx context.Context, id string) error
}
