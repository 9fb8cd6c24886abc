// Package workspaces handles workspace and project rows. These are thin
// ownership records; deleting a workspace cascades to its plugins and
// credentials.
package workspaces

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"quore/domain/project"
	"quore/domain/workspace"
)

type (
	Handler struct {
		workspaces workspace.Repository
		projects   project.Repository
	}
	WorkspaceRequest struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
	}
	ProjectRequest struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
	}
)

func NewHandler(workspaces workspace.Repository, projects project.Repository) *Handler {
	return &Handler{workspaces: workspaces, projects: projects}
}

func (h Handler) Create(c echo.Context) error {
	var req WorkspaceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	w := &workspace.Workspace{Name: req.Name, Description: req.Description}
	if err := h.workspaces.Create(c.Request().Context(), w); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to save workspace: " + err.Error(),
		})
	}
	return c.JSON(http.StatusCreated, w)
}

func (h Handler) Index(c echo.Context) error {
	ws, err := h.workspaces.FindAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch workspaces: " + err.Error(),
		})
	}
	return c.JSON(http.StatusOK, ws)
}

func (h Handler) Get(c echo.Context) error {
	w, err := h.workspaces.FindByID(c.Request().Context(), c.Param("wid"))
	if err != nil {
		if errors.Is(err, workspace.ErrWorkspaceNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Workspace not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch workspace: " + err.Error(),
		})
	}
	return c.JSON(http.StatusOK, w)
}

func (h Handler) Delete(c echo.Context) error {
	if err := h.workspaces.Delete(c.Request().Context(), c.Param("wid")); err != nil {
		if errors.Is(err, workspace.ErrWorkspaceNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Workspace not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete workspace: " + err.Error(),
		})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h Handler) CreateProject(c echo.Context) error {
	var req ProjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	wid := c.Param("wid")
	if _, err := h.workspaces.FindByID(c.Request().Context(), wid); err != nil {
		if errors.Is(err, workspace.ErrWorkspaceNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Workspace not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	p := &project.Project{Name: req.Name, Description: req.Description, WorkspaceID: wid}
	if err := h.projects.Create(c.Request().Context(), p); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to save project: " + err.Error(),
		})
	}
	return c.JSON(http.StatusCreated, p)
}

func (h Handler) IndexProjects(c echo.Context) error {
	wid := c.Param("wid")
	ps, err := h.projects.FindAll(c.Request().Context(), project.ProjectFilters{WorkspaceID: &wid})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch projects: " + err.Error(),
		})
	}
	return c.JSON(http.StatusOK, ps)
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Create)
	g.GET("", h.Index)
	g.GET("/:wid", h.Get)
	g.DELETE("/:wid", h.Delete)
	g.POST("/:wid/projects", h.CreateProject)
	g.GET("/:wid/projects", h.IndexProjects)
}
