package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"quore/domain/project"
	"quore/domain/projectplugin"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) project.Repository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	p.ID = "prj_" + ulid.Make().String()
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*project.Project, error) {
	var p project.Project
	err := r.db.WithContext(ctx).Where("deleted_at IS NULL").First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, project.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) FindAll(ctx context.Context, filters project.ProjectFilters) ([]project.Project, error) {
	query := r.db.WithContext(ctx).Where("deleted_at IS NULL")

	if filters.WorkspaceID != nil {
		query = query.Where("workspace_id = ?", *filters.WorkspaceID)
	}

	var projects []project.Project
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Delete soft-deletes the project and drops its plugin bindings.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		res := tx.Model(&project.Project{}).
			Where("id = ? AND deleted_at IS NULL", id).
			Update("deleted_at", &now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return project.ErrProjectNotFound
		}

		return tx.Delete(&projectplugin.ProjectPlugin{}, "project_id = ?", id).Error
	})
}
