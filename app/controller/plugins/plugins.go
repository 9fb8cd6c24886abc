// Package plugins handles workspace plugin registration and lifecycle
// requests.
package plugins

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"quore/app/jobs/pluginjob"
	"quore/app/services/pluginlifecycle"
	"quore/app/services/pluginstate"
	"quore/domain/credential"
	"quore/domain/plugin"
)

type (
	Handler struct {
		manager *pluginlifecycle.Manager
		repo    plugin.Repository
		job     *pluginjob.Job
	}
	PluginRequest struct {
		Name          string         `json:"name" validate:"required"`
		Description   string         `json:"description"`
		Version       string         `json:"version"`
		EndpointURL   string         `json:"endpoint_url" validate:"required,url"`
		RepositoryURL string         `json:"repository_url"`
		Metadata      map[string]any `json:"metadata"`
		CredentialID  *string        `json:"credential_id"`
		IsGlobal      bool           `json:"is_global"`
	}
	StateInfo struct {
		State       plugin.State `json:"state"`
		Description string       `json:"description"`
	}
)

func NewHandler(manager *pluginlifecycle.Manager, repo plugin.Repository, job *pluginjob.Job) *Handler {
	return &Handler{manager: manager, repo: repo, job: job}
}

// Create registers the plugin and kicks off initialization in the
// background. The response carries the row as registered/initializing;
// clients poll the plugin for its final state.
func (h Handler) Create(c echo.Context) error {
	var req PluginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	p, err := h.manager.Register(ctx, c.Param("wid"), pluginlifecycle.RegisterInput{
		Name:          req.Name,
		Description:   req.Description,
		Version:       req.Version,
		EndpointURL:   req.EndpointURL,
		RepositoryURL: req.RepositoryURL,
		Metadata:      req.Metadata,
		CredentialID:  req.CredentialID,
		IsGlobal:      req.IsGlobal,
	})
	if err != nil {
		if errors.Is(err, credential.ErrCredentialNotFound) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Referenced credential not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to register plugin: " + err.Error(),
		})
	}

	h.job.InitializePlugin(p.ID)

	return c.JSON(http.StatusAccepted, p)
}

func (h Handler) Index(c echo.Context) error {
	ctx := c.Request().Context()

	wid := c.Param("wid")
	filters := plugin.PluginFilters{WorkspaceID: &wid}
	if s := c.QueryParam("state"); s != "" {
		state := plugin.State(s)
		if !state.Valid() {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown state: " + s})
		}
		filters.State = &state
	}

	plugins, err := h.repo.FindAll(ctx, filters)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch plugins: " + err.Error(),
		})
	}
	return c.JSON(http.StatusOK, plugins)
}

func (h Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	p, err := h.repo.FindByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Plugin not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch plugin: " + err.Error(),
		})
	}
	return c.JSON(http.StatusOK, p)
}

func (h Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.manager.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Plugin not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete plugin: " + err.Error(),
		})
	}
	return c.NoContent(http.StatusNoContent)
}

// Initialize re-runs the lifecycle synchronously. Useful for recovering
// a plugin that landed in error or was stopped.
func (h Handler) Initialize(c echo.Context) error {
	ctx := c.Request().Context()

	p, err := h.manager.Initialize(ctx, c.Param("id"))
	if err != nil {
		var serr *pluginstate.StateError
		switch {
		case errors.Is(err, plugin.ErrPluginNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Plugin not found"})
		case errors.As(err, &serr):
			return c.JSON(http.StatusConflict, map[string]string{"error": serr.Error()})
		case p != nil:
			// lifecycle failure: the row carries the error state
			return c.JSON(http.StatusAccepted, p)
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to initialize plugin: " + err.Error(),
		})
	}
	return c.JSON(http.StatusOK, p)
}

func (h Handler) Stop(c echo.Context) error {
	ctx := c.Request().Context()

	p, err := h.manager.Stop(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Plugin not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to stop plugin: " + err.Error(),
		})
	}
	return c.JSON(http.StatusOK, p)
}

func (h Handler) Tools(c echo.Context) error {
	ctx := c.Request().Context()

	tools, err := h.manager.Tools(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Plugin not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch tools: " + err.Error(),
		})
	}
	return c.JSON(http.StatusOK, tools)
}

// States lists every lifecycle state with its human-readable
// description, in declaration order.
func (h Handler) States(c echo.Context) error {
	states := make([]StateInfo, 0, len(plugin.AllStates))
	for _, s := range plugin.AllStates {
		states = append(states, StateInfo{State: s, Description: plugin.StateDescriptions[s]})
	}
	return c.JSON(http.StatusOK, states)
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Create)
	g.GET("", h.Index)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/initialize", h.Initialize)
	g.POST("/:id/stop", h.Stop)
	g.GET("/:id/tools", h.Tools)
}
