// Package appconf contains app related configurations
package appconf

import (
	"os"
	"time"

	"quore/config"
	devconf "quore/config/environments/development"
	prodconf "quore/config/environments/production"
)

var appconf config.AppConfiger

func Port() string {
	return appconf.GetPort()
}

func DBURL() string {
	return appconf.GetDBURL()
}

// CloneRoot is the directory that holds per-plugin repository checkouts.
// Each plugin owns exactly one subdirectory under it.
func CloneRoot() string {
	return appconf.GetCloneRoot()
}

// MasterKey returns the hex-encoded credential encryption key. There is
// no default: a missing key must abort startup.
func MasterKey() string {
	return os.Getenv("QUORE_MASTER_KEY")
}

// CloneTimeout bounds a single git clone; clamped to [10s, 30m].
func CloneTimeout() time.Duration {
	return durationEnv("QUORE_CLONE_TIMEOUT", 5*time.Minute, 10*time.Second, 30*time.Minute)
}

// InspectTimeout bounds a single MCP inspection; clamped to [5s, 10m].
func InspectTimeout() time.Duration {
	return durationEnv("QUORE_INSPECT_TIMEOUT", 60*time.Second, 5*time.Second, 10*time.Minute)
}

func durationEnv(name string, def, min, max time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}

func init() {
	env := os.Getenv("APP_ENV")

	switch env {
	case "production":
		appconf = prodconf.New()
	case "development":
		appconf = devconf.New()
	default:
		appconf = devconf.New()
	}
}
