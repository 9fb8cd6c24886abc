package commands

import (
	"quore/version"

	"github.com/urfave/cli/v3"
)

// NewApp creates the root CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "quorectl",
		Usage:   "Quore CLI - manage plugins and credentials",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server",
				Usage: "Quore server URL",
			},
			&cli.StringFlag{
				Name:  "workspace",
				Usage: "Workspace ID",
			},
		},
		Commands: []*cli.Command{
			PluginCommand(),
			CredentialCommand(),
		},
	}
}
