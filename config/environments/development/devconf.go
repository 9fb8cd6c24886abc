// Package development contains development configuration of the app
package development

import (
	"os"
	"strings"

	"quore/config"
)

type devconf struct{}

func New() config.AppConfiger {
	return devconf{}
}

func (dc devconf) GetPort() string {
	appPort := os.Getenv("QUORE_APP_PORT")
	if strings.TrimSpace(appPort) == "" {
		appPort = "8080"
	}
	return appPort
}

func (dc devconf) GetDBURL() string {
	dbURL := os.Getenv("QUORE_DB_URL")
	if strings.TrimSpace(dbURL) == "" {
		dbURL = "file:quore.db"
	}
	return dbURL
}

func (dc devconf) GetCloneRoot() string {
	cloneRoot := os.Getenv("QUORE_CLONE_ROOT")
	if strings.TrimSpace(cloneRoot) == "" {
		cloneRoot = os.TempDir() + "/quore-plugins"
	}
	return cloneRoot
}
