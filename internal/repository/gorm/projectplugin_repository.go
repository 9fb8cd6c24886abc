package gorm

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quore/domain/projectplugin"
)

type ProjectPluginRepository struct {
	db *gorm.DB
}

func NewProjectPluginRepository(db *gorm.DB) projectplugin.Repository {
	return &ProjectPluginRepository{db: db}
}

func (r *ProjectPluginRepository) Upsert(ctx context.Context, pp *projectplugin.ProjectPlugin) error {
	if pp.ID == "" {
		pp.ID = "ppb_" + ulid.Make().String()
	}
	// The unique (project_id, plugin_id) pair absorbs concurrent enables;
	// a conflict updates the existing row instead of surfacing an error.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "plugin_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_enabled", "config", "updated_at"}),
	}).Create(pp).Error
}

func (r *ProjectPluginRepository) FindByProjectAndPlugin(ctx context.Context, projectID, pluginID string) (*projectplugin.ProjectPlugin, error) {
	var pp projectplugin.ProjectPlugin
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND plugin_id = ?", projectID, pluginID).
		First(&pp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pp, nil
}

func (r *ProjectPluginRepository) FindByProject(ctx context.Context, projectID string) ([]projectplugin.ProjectPlugin, error) {
	var bindings []projectplugin.ProjectPlugin
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&bindings).Error
	if err != nil {
		return nil, err
	}
	return bindings, nil
}

func (r *ProjectPluginRepository) Update(ctx context.Context, pp *projectplugin.ProjectPlugin) error {
	return r.db.WithContext(ctx).Save(pp).Error
}
