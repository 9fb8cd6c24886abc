package pluginbinding

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"quore/domain/plugin"
	"quore/domain/project"
	"quore/domain/projectplugin"
	gormrepo "quore/internal/repository/gorm"
)

type fixture struct {
	svc      *Service
	plugins  plugin.Repository
	projects project.Repository
}

func setupBinding(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&project.Project{},
		&plugin.Plugin{},
		&plugin.ToolDescriptor{},
		&plugin.ResourceDescriptor{},
		&plugin.PromptDescriptor{},
		&projectplugin.ProjectPlugin{},
	))

	plugins := gormrepo.NewPluginRepository(db)
	projects := gormrepo.NewProjectRepository(db)
	bindings := gormrepo.NewProjectPluginRepository(db)

	return &fixture{
		svc:      New(bindings, plugins, projects),
		plugins:  plugins,
		projects: projects,
	}
}

func (f *fixture) project(t *testing.T, workspaceID string) *project.Project {
	t.Helper()
	p := &project.Project{Name: "assistant", WorkspaceID: workspaceID}
	require.NoError(t, f.projects.Create(context.Background(), p))
	return p
}

func (f *fixture) plugin(t *testing.T, workspaceID string, global bool, state plugin.State) *plugin.Plugin {
	t.Helper()
	p := &plugin.Plugin{
		Name:        "weather-" + workspaceID + map[bool]string{true: "-g", false: ""}[global],
		State:       state,
		EndpointURL: "http://localhost:9000/mcp",
		WorkspaceID: workspaceID,
		IsGlobal:    global,
	}
	require.NoError(t, f.plugins.Create(context.Background(), p))
	return p
}

func TestEnable(t *testing.T) {
	t.Run("creates binding with config", func(t *testing.T) {
		f := setupBinding(t)
		proj := f.project(t, "wks_1")
		plg := f.plugin(t, "wks_1", false, plugin.StateRunning)

		pp, err := f.svc.Enable(context.Background(), proj.ID, plg.ID, map[string]any{"units": "metric"})
		require.NoError(t, err)
		assert.True(t, pp.IsEnabled)
		assert.Equal(t, "metric", pp.Config["units"])
	})

	t.Run("enable twice updates in place", func(t *testing.T) {
		f := setupBinding(t)
		proj := f.project(t, "wks_1")
		plg := f.plugin(t, "wks_1", false, plugin.StateRunning)
		ctx := context.Background()

		_, err := f.svc.Enable(ctx, proj.ID, plg.ID, map[string]any{"units": "metric"})
		require.NoError(t, err)
		_, err = f.svc.Enable(ctx, proj.ID, plg.ID, map[string]any{"units": "imperial"})
		require.NoError(t, err)

		enabled, err := f.svc.ListEnabledForProject(ctx, proj.ID)
		require.NoError(t, err)
		require.Len(t, enabled, 1)
		assert.Equal(t, "imperial", enabled[0].Config["units"])
	})

	t.Run("rejects global plugin", func(t *testing.T) {
		f := setupBinding(t)
		proj := f.project(t, "wks_1")
		plg := f.plugin(t, "wks_1", true, plugin.StateRunning)

		_, err := f.svc.Enable(context.Background(), proj.ID, plg.ID, nil)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Reason, "workspace-global")
	})

	t.Run("rejects plugin from another workspace", func(t *testing.T) {
		f := setupBinding(t)
		proj := f.project(t, "wks_1")
		plg := f.plugin(t, "wks_2", false, plugin.StateRunning)

		_, err := f.svc.Enable(context.Background(), proj.ID, plg.ID, nil)
		assert.ErrorIs(t, err, plugin.ErrPluginNotFound)
	})

	t.Run("missing plugin", func(t *testing.T) {
		f := setupBinding(t)
		proj := f.project(t, "wks_1")

		_, err := f.svc.Enable(context.Background(), proj.ID, "plg_missing", nil)
		assert.ErrorIs(t, err, plugin.ErrPluginNotFound)
	})

	t.Run("missing project", func(t *testing.T) {
		f := setupBinding(t)
		_, err := f.svc.Enable(context.Background(), "prj_missing", "plg_missing", nil)
		assert.ErrorIs(t, err, project.ErrProjectNotFound)
	})
}

func TestDisable(t *testing.T) {
	t.Run("disables an enabled binding", func(t *testing.T) {
		f := setupBinding(t)
		proj := f.project(t, "wks_1")
		plg := f.plugin(t, "wks_1", false, plugin.StateRunning)
		ctx := context.Background()

		_, err := f.svc.Enable(ctx, proj.ID, plg.ID, nil)
		require.NoError(t, err)

		found, err := f.svc.Disable(ctx, proj.ID, plg.ID)
		require.NoError(t, err)
		assert.True(t, found)

		enabled, err := f.svc.ListEnabledForProject(ctx, proj.ID)
		require.NoError(t, err)
		assert.Empty(t, enabled)
	})

	t.Run("no binding is a no-op", func(t *testing.T) {
		f := setupBinding(t)
		proj := f.project(t, "wks_1")
		plg := f.plugin(t, "wks_1", false, plugin.StateRunning)

		found, err := f.svc.Disable(context.Background(), proj.ID, plg.ID)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("re-enable after disable", func(t *testing.T) {
		f := setupBinding(t)
		proj := f.project(t, "wks_1")
		plg := f.plugin(t, "wks_1", false, plugin.StateRunning)
		ctx := context.Background()

		_, err := f.svc.Enable(ctx, proj.ID, plg.ID, nil)
		require.NoError(t, err)
		_, err = f.svc.Disable(ctx, proj.ID, plg.ID)
		require.NoError(t, err)
		_, err = f.svc.Enable(ctx, proj.ID, plg.ID, nil)
		require.NoError(t, err)

		enabled, err := f.svc.ListEnabledForProject(ctx, proj.ID)
		require.NoError(t, err)
		assert.Len(t, enabled, 1)
	})
}

func TestListEnabledForProject(t *testing.T) {
	t.Run("globals apply without a binding", func(t *testing.T) {
		f := setupBinding(t)
		proj := f.project(t, "wks_1")
		global := f.plugin(t, "wks_1", true, plugin.StateRunning)
		f.plugin(t, "wks_2", true, plugin.StateRunning) // other workspace

		enabled, err := f.svc.ListEnabledForProject(context.Background(), proj.ID)
		require.NoError(t, err)
		require.Len(t, enabled, 1)
		assert.Equal(t, global.ID, enabled[0].Plugin.ID)
		assert.True(t, enabled[0].Global)
	})

	t.Run("scoped plugin needs a binding", func(t *testing.T) {
		f := setupBinding(t)
		proj := f.project(t, "wks_1")
		f.plugin(t, "wks_1", false, plugin.StateRunning)

		enabled, err := f.svc.ListEnabledForProject(context.Background(), proj.ID)
		require.NoError(t, err)
		assert.Empty(t, enabled)
	})

	t.Run("union of globals and bound plugins", func(t *testing.T) {
		f := setupBinding(t)
		proj := f.project(t, "wks_1")
		f.plugin(t, "wks_1", true, plugin.StateRunning)
		scoped := f.plugin(t, "wks_1", false, plugin.StateRunning)
		ctx := context.Background()

		_, err := f.svc.Enable(ctx, proj.ID, scoped.ID, nil)
		require.NoError(t, err)

		enabled, err := f.svc.ListEnabledForProject(ctx, proj.ID)
		require.NoError(t, err)
		assert.Len(t, enabled, 2)
	})
}

func TestListEnabledToolsForProject(t *testing.T) {
	f := setupBinding(t)
	proj := f.project(t, "wks_1")
	ctx := context.Background()

	running := f.plugin(t, "wks_1", false, plugin.StateRunning)
	require.NoError(t, f.plugins.ReplaceDescriptors(ctx, running.ID,
		[]plugin.ToolDescriptor{
			{Name: "get_forecast", IsActive: true},
			{Name: "legacy_lookup", IsActive: false},
		}, nil, nil))
	_, err := f.svc.Enable(ctx, proj.ID, running.ID, nil)
	require.NoError(t, err)

	stopped := &plugin.Plugin{
		Name:        "stopped-one",
		State:       plugin.StateStopped,
		EndpointURL: "http://localhost:9001/mcp",
		WorkspaceID: "wks_1",
	}
	require.NoError(t, f.plugins.Create(ctx, stopped))
	require.NoError(t, f.plugins.ReplaceDescriptors(ctx, stopped.ID,
		[]plugin.ToolDescriptor{{Name: "unavailable", IsActive: true}}, nil, nil))
	_, err = f.svc.Enable(ctx, proj.ID, stopped.ID, nil)
	require.NoError(t, err)

	tools, err := f.svc.ListEnabledToolsForProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "get_forecast", tools[0].Name)
}
