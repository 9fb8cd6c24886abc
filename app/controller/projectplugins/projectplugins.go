// Package projectplugins handles per-project plugin enablement.
package projectplugins

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"quore/app/services/pluginbinding"
	"quore/domain/plugin"
	"quore/domain/project"
)

type (
	Handler struct {
		bindings *pluginbinding.Service
	}
	EnableRequest struct {
		Config map[string]any `json:"config"`
	}
)

func NewHandler(bindings *pluginbinding.Service) *Handler {
	return &Handler{bindings: bindings}
}

func (h Handler) Enable(c echo.Context) error {
	var req EnableRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	ctx := c.Request().Context()
	pp, err := h.bindings.Enable(ctx, c.Param("pid"), c.Param("plgid"), req.Config)
	if err != nil {
		var verr *pluginbinding.ValidationError
		switch {
		case errors.Is(err, project.ErrProjectNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Project not found"})
		case errors.Is(err, plugin.ErrPluginNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Plugin not found"})
		case errors.As(err, &verr):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": verr.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to enable plugin: " + err.Error(),
		})
	}
	return c.JSON(http.StatusOK, pp)
}

func (h Handler) Disable(c echo.Context) error {
	ctx := c.Request().Context()

	found, err := h.bindings.Disable(ctx, c.Param("pid"), c.Param("plgid"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to disable plugin: " + err.Error(),
		})
	}
	if !found {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Plugin not enabled for project"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h Handler) Index(c echo.Context) error {
	ctx := c.Request().Context()

	enabled, err := h.bindings.ListEnabledForProject(ctx, c.Param("pid"))
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Project not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch plugins: " + err.Error(),
		})
	}
	return c.JSON(http.StatusOK, enabled)
}

func (h Handler) Tools(c echo.Context) error {
	ctx := c.Request().Context()

	tools, err := h.bindings.ListEnabledToolsForProject(ctx, c.Param("pid"))
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Project not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch tools: " + err.Error(),
		})
	}
	return c.JSON(http.StatusOK, tools)
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/plugins", h.Index)
	g.GET("/tools", h.Tools)
	g.POST("/plugins/:plgid", h.Enable)
	g.DELETE("/plugins/:plgid", h.Disable)
}
