package projectplugins

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"quore/app/services/pluginbinding"
	"quore/domain/plugin"
	"quore/domain/project"
	"quore/domain/projectplugin"
	gormrepo "quore/internal/repository/gorm"
	"quore/internal/validator"
)

type fixture struct {
	handler  *Handler
	e        *echo.Echo
	plugins  plugin.Repository
	projects project.Repository
}

func setupFixture(t *testing.T) *fixture {
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
	svc := pluginbinding.New(gormrepo.NewProjectPluginRepository(db), plugins, projects)

	e := echo.New()
	e.Validator = validator.New()

	return &fixture{
		handler:  NewHandler(svc),
		e:        e,
		plugins:  plugins,
		projects: projects,
	}
}

func (f *fixture) context(method string, body any, names, values []string) (echo.Context, *httptest.ResponseRecorder) {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, "/", bytes.NewReader(raw))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func TestHandler_Enable(t *testing.T) {
	t.Run("should enable plugin with config", func(t *testing.T) {
		f := setupFixture(t)
		ctx := context.Background()
		proj := &project.Project{Name: "assistant", WorkspaceID: "wks_1"}
		require.NoError(t, f.projects.Create(ctx, proj))
		plg := &plugin.Plugin{Name: "weather", EndpointURL: "http://localhost:9000/mcp", WorkspaceID: "wks_1"}
		require.NoError(t, f.plugins.Create(ctx, plg))

		c, rec := f.context(http.MethodPost, EnableRequest{Config: map[string]any{"units": "metric"}},
			[]string{"pid", "plgid"}, []string{proj.ID, plg.ID})
		require.NoError(t, f.handler.Enable(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var pp projectplugin.ProjectPlugin
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pp))
		assert.True(t, pp.IsEnabled)
		assert.Equal(t, "metric", pp.Config["units"])
	})

	t.Run("should return 400 for global plugin", func(t *testing.T) {
		f := setupFixture(t)
		ctx := context.Background()
		proj := &project.Project{Name: "assistant", WorkspaceID: "wks_1"}
		require.NoError(t, f.projects.Create(ctx, proj))
		plg := &plugin.Plugin{Name: "weather", EndpointURL: "http://localhost:9000/mcp", WorkspaceID: "wks_1", IsGlobal: true}
		require.NoError(t, f.plugins.Create(ctx, plg))

		c, rec := f.context(http.MethodPost, nil, []string{"pid", "plgid"}, []string{proj.ID, plg.ID})
		require.NoError(t, f.handler.Enable(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should return 404 for unknown project", func(t *testing.T) {
		f := setupFixture(t)

		c, rec := f.context(http.MethodPost, nil, []string{"pid", "plgid"}, []string{"prj_missing", "plg_missing"})
		require.NoError(t, f.handler.Enable(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_Disable(t *testing.T) {
	t.Run("should return 404 when nothing was enabled", func(t *testing.T) {
		f := setupFixture(t)
		ctx := context.Background()
		proj := &project.Project{Name: "assistant", WorkspaceID: "wks_1"}
		require.NoError(t, f.projects.Create(ctx, proj))
		plg := &plugin.Plugin{Name: "weather", EndpointURL: "http://localhost:9000/mcp", WorkspaceID: "wks_1"}
		require.NoError(t, f.plugins.Create(ctx, plg))

		c, rec := f.context(http.MethodDelete, nil, []string{"pid", "plgid"}, []string{proj.ID, plg.ID})
		require.NoError(t, f.handler.Disable(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("should disable after enable", func(t *testing.T) {
		f := setupFixture(t)
		ctx := context.Background()
		proj := &project.Project{Name: "assistant", WorkspaceID: "wks_1"}
		require.NoError(t, f.projects.Create(ctx, proj))
		plg := &plugin.Plugin{Name: "weather", EndpointURL: "http://localhost:9000/mcp", WorkspaceID: "wks_1"}
		require.NoError(t, f.plugins.Create(ctx, plg))

		c, _ := f.context(http.MethodPost, nil, []string{"pid", "plgid"}, []string{proj.ID, plg.ID})
		require.NoError(t, f.handler.Enable(c))

		c, rec := f.context(http.MethodDelete, nil, []string{"pid", "plgid"}, []string{proj.ID, plg.ID})
		require.NoError(t, f.handler.Disable(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestHandler_Tools(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	proj := &project.Project{Name: "assistant", WorkspaceID: "wks_1"}
	require.NoError(t, f.projects.Create(ctx, proj))
	plg := &plugin.Plugin{
		Name:        "weather",
		State:       plugin.StateRunning,
		EndpointURL: "http://localhost:9000/mcp",
		WorkspaceID: "wks_1",
		IsGlobal:    true,
	}
	require.NoError(t, f.plugins.Create(ctx, plg))
	require.NoError(t, f.plugins.ReplaceDescriptors(ctx, plg.ID,
		[]plugin.ToolDescriptor{{Name: "get_forecast", IsActive: true}}, nil, nil))

	c, rec := f.context(http.MethodGet, nil, []string{"pid"}, []string{proj.ID})
	require.NoError(t, f.handler.Tools(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var tools []plugin.ToolDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tools))
	require.Len(t, tools, 1)
	assert.Equal(t, "get_forecast", tools[0].Name)
}
