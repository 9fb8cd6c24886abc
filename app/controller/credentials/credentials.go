// Package credentials handles workspace credential requests. Responses
// never include secret material; every credential is rendered through
// the store's redacted view.
package credentials

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"quore/app/services/credentialstore"
	"quore/app/services/credentialtype"
	"quore/domain/credential"
)

type (
	Handler struct {
		store *credentialstore.Store
		types *credentialtype.Registry
	}
	CredentialRequest struct {
		Name      string         `json:"name" validate:"required"`
		Type      string         `json:"type" validate:"required"`
		Fields    map[string]any `json:"fields" validate:"required"`
		CreatedBy string         `json:"created_by"`
	}
	UpdateRequest struct {
		Name   *string        `json:"name"`
		Fields map[string]any `json:"fields"`
	}
	SearchRequest struct {
		Conditions []ConditionRequest `json:"conditions"`
	}
	ConditionRequest struct {
		Field string `json:"field" validate:"required"`
		Op    string `json:"op" validate:"required"`
		Value any    `json:"value"`
	}
)

func NewHandler(store *credentialstore.Store, types *credentialtype.Registry) *Handler {
	return &Handler{store: store, types: types}
}

func (h Handler) Create(c echo.Context) error {
	var req CredentialRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	cred, err := h.store.Create(ctx, c.Param("wid"), req.Name, req.Type, req.Fields, req.CreatedBy)
	if err != nil {
		var verr *credentialtype.ValidationError
		switch {
		case errors.As(err, &verr):
			return c.JSON(http.StatusBadRequest, map[string]any{
				"error":    verr.Error(),
				"problems": verr.Problems,
			})
		case errors.Is(err, credentialtype.ErrTypeNotFound):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to save credential: " + err.Error(),
		})
	}

	view, err := h.store.RedactedView(cred)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, view)
}

func (h Handler) Index(c echo.Context) error {
	return h.search(c, nil)
}

func (h Handler) Search(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	conditions := make([]credential.Condition, 0, len(req.Conditions))
	for _, cond := range req.Conditions {
		conditions = append(conditions, credential.Condition{
			Field: cond.Field,
			Op:    credential.Operator(cond.Op),
			Value: cond.Value,
		})
	}
	return h.search(c, conditions)
}

func (h Handler) search(c echo.Context, conditions []credential.Condition) error {
	ctx := c.Request().Context()

	creds, err := h.store.Search(ctx, c.Param("wid"), conditions)
	if err != nil {
		if errors.Is(err, credential.ErrBadFilterField) || errors.Is(err, credential.ErrBadFilterOperator) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to search credentials: " + err.Error(),
		})
	}

	views := make([]*credentialstore.Info, 0, len(creds))
	for i := range creds {
		view, err := h.store.RedactedView(&creds[i])
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		views = append(views, view)
	}
	return c.JSON(http.StatusOK, views)
}

func (h Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	cred, err := h.store.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, credential.ErrCredentialNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Credential not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch credential: " + err.Error(),
		})
	}

	view, err := h.store.RedactedView(cred)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, view)
}

func (h Handler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	ctx := c.Request().Context()
	cred, err := h.store.Update(ctx, c.Param("id"), req.Name, req.Fields)
	if err != nil {
		var verr *credentialtype.ValidationError
		switch {
		case errors.Is(err, credential.ErrCredentialNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Credential not found"})
		case errors.As(err, &verr):
			return c.JSON(http.StatusBadRequest, map[string]any{
				"error":    verr.Error(),
				"problems": verr.Problems,
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to update credential: " + err.Error(),
		})
	}

	view, err := h.store.RedactedView(cred)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, view)
}

func (h Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	found, err := h.store.Delete(ctx, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete credential: " + err.Error(),
		})
	}
	if !found {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Credential not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Types lists the registered credential types with their field specs so
// clients can render credential forms.
func (h Handler) Types(c echo.Context) error {
	return c.JSON(http.StatusOK, h.types.All())
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Create)
	g.GET("", h.Index)
	g.POST("/search", h.Search)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
