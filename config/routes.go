package config

import (
	"quore/app"
	"quore/app/controller/credentials"
	"quore/app/controller/health"
	"quore/app/controller/plugins"
	"quore/app/controller/projectplugins"
	"quore/app/controller/workspaces"

	"github.com/labstack/echo/v4"
)

func AddRoutes(e *echo.Echo, container *app.Container) {
	root := e.Group("")
	health.Register(root, container.CloneRoot)

	v1 := e.Group("/api/v1")

	workspacesHandler := workspaces.NewHandler(container.WorkspaceRepository, container.ProjectRepository)
	credentialsHandler := credentials.NewHandler(container.CredentialStore, container.CredentialTypes)
	pluginsHandler := plugins.NewHandler(container.Lifecycle, container.PluginRepository, container.PluginJob)
	bindingsHandler := projectplugins.NewHandler(container.Bindings)

	workspacesHandler.RegisterRoutes(v1.Group("/workspaces"))
	credentialsHandler.RegisterRoutes(v1.Group("/workspaces/:wid/credentials"))
	pluginsHandler.RegisterRoutes(v1.Group("/workspaces/:wid/plugins"))
	bindingsHandler.RegisterRoutes(v1.Group("/projects/:pid"))

	v1.GET("/credential-types", credentialsHandler.Types)
	v1.GET("/plugin-states", pluginsHandler.States)
}
