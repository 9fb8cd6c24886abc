package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"quore/domain/plugin"
)

type PluginRepository struct {
	db *gorm.DB
}

func NewPluginRepository(db *gorm.DB) plugin.Repository {
	return &PluginRepository{db: db}
}

func (r *PluginRepository) Create(ctx context.Context, p *plugin.Plugin) error {
	p.ID = "plg_" + ulid.Make().String()
	if p.State == "" {
		p.State = plugin.StateRegistered
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PluginRepository) Update(ctx context.Context, p *plugin.Plugin) error {
	return r.db.WithContext(ctx).Omit("Tools", "Resources", "Prompts").Save(p).Error
}

func (r *PluginRepository) FindByID(ctx context.Context, id string) (*plugin.Plugin, error) {
	var p plugin.Plugin
	err := r.db.WithContext(ctx).
		Preload("Tools").
		Preload("Resources").
		Preload("Prompts").
		Where("deleted_at IS NULL").
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, plugin.ErrPluginNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PluginRepository) FindAll(ctx context.Context, filters plugin.PluginFilters) ([]plugin.Plugin, error) {
	query := r.db.WithContext(ctx).
		Preload("Tools").
		Where("deleted_at IS NULL")

	if filters.WorkspaceID != nil {
		query = query.Where("workspace_id = ?", *filters.WorkspaceID)
	}
	if filters.State != nil {
		query = query.Where("state = ?", *filters.State)
	}
	if filters.IsGlobal != nil {
		query = query.Where("is_global = ?", *filters.IsGlobal)
	}

	var plugins []plugin.Plugin
	if err := query.Order("created_at DESC").Find(&plugins).Error; err != nil {
		return nil, err
	}
	return plugins, nil
}

func (r *PluginRepository) Delete(ctx context.Context, id string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&plugin.Plugin{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", &now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return plugin.ErrPluginNotFound
	}
	return nil
}

func (r *PluginRepository) UpdateState(ctx context.Context, id string, state plugin.State, description string) error {
	res := r.db.WithContext(ctx).
		Model(&plugin.Plugin{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"state":             state,
			"state_description": description,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return plugin.ErrPluginNotFound
	}
	return nil
}

// ReplaceDescriptors deletes the stored descriptor rows and inserts the
// new sets. Run inside Transaction when the swap must be atomic with a
// state change.
func (r *PluginRepository) ReplaceDescriptors(ctx context.Context, pluginID string, tools []plugin.ToolDescriptor, resources []plugin.ResourceDescriptor, prompts []plugin.PromptDescriptor) error {
	db := r.db.WithContext(ctx)

	if err := db.Where("plugin_id = ?", pluginID).Delete(&plugin.ToolDescriptor{}).Error; err != nil {
		return err
	}
	if err := db.Where("plugin_id = ?", pluginID).Delete(&plugin.ResourceDescriptor{}).Error; err != nil {
		return err
	}
	if err := db.Where("plugin_id = ?", pluginID).Delete(&plugin.PromptDescriptor{}).Error; err != nil {
		return err
	}

	for i := range tools {
		tools[i].ID = 0
		tools[i].PluginID = pluginID
	}
	for i := range resources {
		resources[i].ID = 0
		resources[i].PluginID = pluginID
	}
	for i := range prompts {
		prompts[i].ID = 0
		prompts[i].PluginID = pluginID
	}

	if len(tools) > 0 {
		if err := db.Create(&tools).Error; err != nil {
			return err
		}
	}
	if len(resources) > 0 {
		if err := db.Create(&resources).Error; err != nil {
			return err
		}
	}
	if len(prompts) > 0 {
		if err := db.Create(&prompts).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *PluginRepository) Transaction(ctx context.Context, fn func(plugin.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PluginRepository{db: tx})
	})
}
