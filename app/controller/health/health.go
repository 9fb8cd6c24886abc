// Package health is for the health route
package health

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v4/disk"

	"quore/version"
)

type (
	Handler struct {
		cloneRoot string
	}
	OkResponse struct {
		Ok            bool    `json:"ok"`
		Version       string  `json:"version"`
		CloneRoot     string  `json:"clone_root"`
		DiskFreeBytes uint64  `json:"disk_free_bytes"`
		DiskUsedPct   float64 `json:"disk_used_percent"`
	}
)

func NewHandler(cloneRoot string) *Handler {
	return &Handler{cloneRoot: cloneRoot}
}

func (h Handler) GET(c echo.Context) error {
	ok := OkResponse{
		Ok:        true,
		Version:   version.Version,
		CloneRoot: h.cloneRoot,
	}

	statDir := h.cloneRoot
	if _, err := os.Stat(statDir); os.IsNotExist(err) {
		statDir = filepath.Dir(statDir)
	}
	if usage, err := disk.UsageWithContext(c.Request().Context(), statDir); err == nil {
		ok.DiskFreeBytes = usage.Free
		ok.DiskUsedPct = usage.UsedPercent
	}

	return c.JSON(http.StatusOK, ok)
}

func Register(g *echo.Group, cloneRoot string) {
	h := NewHandler(cloneRoot)

	g.GET("/healthz", h.GET)
}
