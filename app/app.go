package app

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"quore/app/jobs/pluginjob"
	"quore/app/services/credentialstore"
	"quore/app/services/credentialtype"
	"quore/app/services/pluginbinding"
	"quore/app/services/pluginlifecycle"
	"quore/domain/credential"
	"quore/domain/plugin"
	"quore/domain/project"
	"quore/domain/projectplugin"
	"quore/domain/workspace"
	"quore/internal/crypto"
	gormRepo "quore/internal/repository/gorm"
)

// Config carries the environment-derived settings the container needs.
// Resolving them is the caller's concern; nothing under app/ reads the
// process environment directly.
type Config struct {
	MasterKey      string
	CloneRoot      string
	CloneTimeout   time.Duration
	InspectTimeout time.Duration
}

type Container struct {
	DB        *gorm.DB
	CloneRoot string

	WorkspaceRepository     workspace.Repository
	ProjectRepository       project.Repository
	PluginRepository        plugin.Repository
	ProjectPluginRepository projectplugin.Repository

	CredentialTypes *credentialtype.Registry
	CredentialStore *credentialstore.Store
	Lifecycle       *pluginlifecycle.Manager
	Bindings        *pluginbinding.Service
	PluginJob       *pluginjob.Job
}

func NewContainer(db *gorm.DB, cfg Config) (*Container, error) {
	box, err := crypto.NewBox(cfg.MasterKey)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}

	// Initialize repositories
	workspaceRepo := gormRepo.NewWorkspaceRepository(db)
	projectRepo := gormRepo.NewProjectRepository(db)
	credentialRepo := gormRepo.NewCredentialRepository(db)
	pluginRepo := gormRepo.NewPluginRepository(db)
	bindingRepo := gormRepo.NewProjectPluginRepository(db)

	// Initialize services
	types := credentialtype.NewRegistry()
	store := credentialstore.New(credentialRepo, types, box)
	lifecycle := pluginlifecycle.NewWithConfig(pluginlifecycle.Config{
		Plugins:        pluginRepo,
		Credentials:    store,
		CloneRoot:      cfg.CloneRoot,
		CloneTimeout:   cfg.CloneTimeout,
		InspectTimeout: cfg.InspectTimeout,
	})
	bindings := pluginbinding.New(bindingRepo, pluginRepo, projectRepo)

	return &Container{
		DB:                      db,
		CloneRoot:               cfg.CloneRoot,
		WorkspaceRepository:     workspaceRepo,
		ProjectRepository:       projectRepo,
		PluginRepository:        pluginRepo,
		ProjectPluginRepository: bindingRepo,
		CredentialTypes:         types,
		CredentialStore:         store,
		Lifecycle:               lifecycle,
		Bindings:                bindings,
		PluginJob:               pluginjob.New(lifecycle),
	}, nil
}

func (c *Container) Migrate() error {
	return c.DB.AutoMigrate(
		&workspace.Workspace{},
		&project.Project{},
		&credential.Credential{},
		&plugin.Plugin{},
		&plugin.ToolDescriptor{},
		&plugin.ResourceDescriptor{},
		&plugin.PromptDescriptor{},
		&projectplugin.ProjectPlugin{},
	)
}
