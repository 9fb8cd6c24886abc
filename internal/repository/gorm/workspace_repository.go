package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"quore/domain/credential"
	"quore/domain/plugin"
	"quore/domain/workspace"
)

type WorkspaceRepository struct {
	db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) workspace.Repository {
	return &WorkspaceRepository{db: db}
}

func (r *WorkspaceRepository) Create(ctx context.Context, w *workspace.Workspace) error {
	w.ID = "wks_" + ulid.Make().String()
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *WorkspaceRepository) FindByID(ctx context.Context, id string) (*workspace.Workspace, error) {
	var w workspace.Workspace
	err := r.db.WithContext(ctx).Where("deleted_at IS NULL").First(&w, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, workspace.ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WorkspaceRepository) FindAll(ctx context.Context) ([]workspace.Workspace, error) {
	var workspaces []workspace.Workspace
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("created_at DESC").
		Find(&workspaces).Error
	if err != nil {
		return nil, err
	}
	return workspaces, nil
}

// Delete soft-deletes the workspace and cascades to its plugins; owned
// credentials are removed outright so their blobs do not survive the
// workspace.
func (r *WorkspaceRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		res := tx.Model(&workspace.Workspace{}).
			Where("id = ? AND deleted_at IS NULL", id).
			Update("deleted_at", &now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return workspace.ErrWorkspaceNotFound
		}

		if err := tx.Model(&plugin.Plugin{}).
			Where("workspace_id = ? AND deleted_at IS NULL", id).
			Update("deleted_at", &now).Error; err != nil {
			return err
		}

		return tx.Unscoped().
			Delete(&credential.Credential{}, "workspace_id = ?", id).Error
	})
}
