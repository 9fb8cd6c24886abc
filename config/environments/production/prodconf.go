// Package production contains production configuration of the app
package production

import (
	"os"
	"strings"

	"quore/config"
)

type prodconf struct{}

func New() config.AppConfiger {
	return prodconf{}
}

func (pc prodconf) GetPort() string {
	appPort := os.Getenv("QUORE_APP_PORT")
	if strings.TrimSpace(appPort) == "" {
		appPort = "8080"
	}
	return appPort
}

func (pc prodconf) GetDBURL() string {
	dbURL := os.Getenv("QUORE_DB_URL")
	if strings.TrimSpace(dbURL) == "" {
		dbURL = "/var/lib/quore/storage/quore.db"
	}
	return dbURL
}

func (pc prodconf) GetCloneRoot() string {
	cloneRoot := os.Getenv("QUORE_CLONE_ROOT")
	if strings.TrimSpace(cloneRoot) == "" {
		cloneRoot = "/var/lib/quore/plugins"
	}
	return cloneRoot
}
