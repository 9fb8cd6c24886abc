package gorm

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"quore/domain/projectplugin"
)

func setupProjectPluginTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&projectplugin.ProjectPlugin{})
	require.NoError(t, err)

	return db
}

func TestProjectPluginRepository(t *testing.T) {
	t.Run("Upsert inserts new binding", func(t *testing.T) {
		repo := NewProjectPluginRepository(setupProjectPluginTestDB(t))
		ctx := context.Background()

		pp := &projectplugin.ProjectPlugin{
			ProjectID: "prj_1",
			PluginID:  "plg_1",
			IsEnabled: true,
			Config:    datatypes.JSONMap{"rate_limit": "10"},
		}
		require.NoError(t, repo.Upsert(ctx, pp))
		assert.Contains(t, pp.ID, "ppb_")
	})

	t.Run("Upsert twice keeps one row with last config", func(t *testing.T) {
		db := setupProjectPluginTestDB(t)
		repo := NewProjectPluginRepository(db)
		ctx := context.Background()

		first := &projectplugin.ProjectPlugin{
			ProjectID: "prj_1",
			PluginID:  "plg_1",
			IsEnabled: true,
			Config:    datatypes.JSONMap{"rate_limit": "10"},
		}
		require.NoError(t, repo.Upsert(ctx, first))

		second := &projectplugin.ProjectPlugin{
			ProjectID: "prj_1",
			PluginID:  "plg_1",
			IsEnabled: true,
			Config:    datatypes.JSONMap{"rate_limit": "50"},
		}
		require.NoError(t, repo.Upsert(ctx, second))

		var count int64
		require.NoError(t, db.Model(&projectplugin.ProjectPlugin{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)

		found, err := repo.FindByProjectAndPlugin(ctx, "prj_1", "plg_1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.True(t, found.IsEnabled)
		assert.Equal(t, "50", found.Config["rate_limit"])
	})

	t.Run("Upsert re-enables a disabled binding", func(t *testing.T) {
		repo := NewProjectPluginRepository(setupProjectPluginTestDB(t))
		ctx := context.Background()

		pp := &projectplugin.ProjectPlugin{ProjectID: "prj_1", PluginID: "plg_1", IsEnabled: true}
		require.NoError(t, repo.Upsert(ctx, pp))

		pp.IsEnabled = false
		require.NoError(t, repo.Update(ctx, pp))

		again := &projectplugin.ProjectPlugin{ProjectID: "prj_1", PluginID: "plg_1", IsEnabled: true}
		require.NoError(t, repo.Upsert(ctx, again))

		found, err := repo.FindByProjectAndPlugin(ctx, "prj_1", "plg_1")
		require.NoError(t, err)
		assert.True(t, found.IsEnabled)
	})

	t.Run("FindByProjectAndPlugin missing returns nil", func(t *testing.T) {
		repo := NewProjectPluginRepository(setupProjectPluginTestDB(t))

		found, err := repo.FindByProjectAndPlugin(context.Background(), "prj_1", "plg_none")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("FindByProject lists bindings", func(t *testing.T) {
		repo := NewProjectPluginRepository(setupProjectPluginTestDB(t))
		ctx := context.Background()

		require.NoError(t, repo.Upsert(ctx, &projectplugin.ProjectPlugin{ProjectID: "prj_1", PluginID: "plg_1", IsEnabled: true}))
		require.NoError(t, repo.Upsert(ctx, &projectplugin.ProjectPlugin{ProjectID: "prj_1", PluginID: "plg_2", IsEnabled: false}))
		require.NoError(t, repo.Upsert(ctx, &projectplugin.ProjectPlugin{ProjectID: "prj_2", PluginID: "plg_1", IsEnabled: true}))

		bindings, err := repo.FindByProject(ctx, "prj_1")
		require.NoError(t, err)
		assert.Len(t, bindings, 2)
	})
}
