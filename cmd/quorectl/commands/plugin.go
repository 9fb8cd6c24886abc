package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"quore/cmd/quorectl/client"
	"quore/cmd/quorectl/config"
	"quore/cmd/quorectl/output"

	"github.com/urfave/cli/v3"
)

// PluginCommand returns the plugin command with subcommands
func PluginCommand() *cli.Command {
	return &cli.Command{
		Name:  "plugin",
		Usage: "Manage plugins",
		Commands: []*cli.Command{
			registerPluginCommand(),
			listPluginCommand(),
			getPluginCommand(),
			initializePluginCommand(),
			stopPluginCommand(),
			statesCommand(),
		},
	}
}

func registerPluginCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Register a new plugin",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "name",
				Usage:    "Plugin name",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "endpoint",
				Usage:    "MCP endpoint URL",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "repository",
				Usage: "Git repository URL to clone",
			},
			&cli.StringFlag{
				Name:  "credential",
				Usage: "Credential ID for repository access",
			},
			&cli.StringFlag{
				Name:  "metadata",
				Usage: "Plugin metadata as a JSON object",
			},
			&cli.BoolFlag{
				Name:  "global",
				Usage: "Apply to every project in the workspace",
			},
		},
		Action: registerPluginAction,
	}
}

func registerPluginAction(ctx context.Context, c *cli.Command) error {
	httpClient, workspace, err := setup(c)
	if err != nil {
		return err
	}

	req := &client.RegisterPluginRequest{
		Name:          c.String("name"),
		EndpointURL:   c.String("endpoint"),
		RepositoryURL: c.String("repository"),
		IsGlobal:      c.Bool("global"),
	}
	if c.IsSet("credential") {
		cred := c.String("credential")
		req.CredentialID = &cred
	}
	if c.IsSet("metadata") {
		if err := json.Unmarshal([]byte(c.String("metadata")), &req.Metadata); err != nil {
			return fmt.Errorf("invalid metadata JSON: %w", err)
		}
	}

	resp, err := httpClient.RegisterPlugin(workspace, req)
	if err != nil {
		return fmt.Errorf("failed to register plugin: %w", err)
	}
	return printJSON(resp)
}

func listPluginCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List plugins in the workspace",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "state",
				Usage: "Filter by lifecycle state",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			httpClient, workspace, err := setup(c)
			if err != nil {
				return err
			}
			resp, err := httpClient.ListPlugins(workspace, c.String("state"))
			if err != nil {
				return fmt.Errorf("failed to list plugins: %w", err)
			}
			return printJSON(resp)
		},
	}
}

func getPluginCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show one plugin",
		ArgsUsage: "<plugin-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			httpClient, workspace, err := setup(c)
			if err != nil {
				return err
			}
			if c.Args().Len() < 1 {
				return fmt.Errorf("plugin id is required")
			}
			resp, err := httpClient.GetPlugin(workspace, c.Args().First())
			if err != nil {
				return fmt.Errorf("failed to get plugin: %w", err)
			}
			return printJSON(resp)
		},
	}
}

func initializePluginCommand() *cli.Command {
	return &cli.Command{
		Name:      "initialize",
		Usage:     "Run the plugin lifecycle (clone + inspect)",
		ArgsUsage: "<plugin-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			httpClient, workspace, err := setup(c)
			if err != nil {
				return err
			}
			if c.Args().Len() < 1 {
				return fmt.Errorf("plugin id is required")
			}
			resp, err := httpClient.InitializePlugin(workspace, c.Args().First())
			if err != nil {
				return fmt.Errorf("failed to initialize plugin: %w", err)
			}
			return printJSON(resp)
		},
	}
}

func stopPluginCommand() *cli.Command {
	return &cli.Command{
		Name:      "stop",
		Usage:     "Stop a plugin",
		ArgsUsage: "<plugin-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			httpClient, workspace, err := setup(c)
			if err != nil {
				return err
			}
			if c.Args().Len() < 1 {
				return fmt.Errorf("plugin id is required")
			}
			resp, err := httpClient.StopPlugin(workspace, c.Args().First())
			if err != nil {
				return fmt.Errorf("failed to stop plugin: %w", err)
			}
			return printJSON(resp)
		},
	}
}

func statesCommand() *cli.Command {
	return &cli.Command{
		Name:  "states",
		Usage: "List lifecycle states",
		Action: func(ctx context.Context, c *cli.Command) error {
			httpClient, _, err := setupNoWorkspace(c)
			if err != nil {
				return err
			}
			resp, err := httpClient.ListPluginStates()
			if err != nil {
				return fmt.Errorf("failed to list states: %w", err)
			}
			return printJSON(resp)
		},
	}
}

// setup resolves the server URL and workspace from flags, env and config
func setup(c *cli.Command) (*client.HTTPClient, string, error) {
	httpClient, cfg, err := setupNoWorkspace(c)
	if err != nil {
		return nil, "", err
	}

	workspace := cfg.GetWorkspace()
	if c.IsSet("workspace") {
		workspace = c.String("workspace")
	}
	if workspace == "" {
		return nil, "", fmt.Errorf("workspace is required (--workspace flag, QUORE_WORKSPACE env or config file)")
	}
	return httpClient, workspace, nil
}

func setupNoWorkspace(c *cli.Command) (*client.HTTPClient, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	serverURL := cfg.GetServerURL()
	if c.IsSet("server") {
		serverURL = c.String("server")
	}
	return client.NewHTTPClient(serverURL), cfg, nil
}

func printJSON(data any) error {
	formatter := output.NewJSONFormatter()
	jsonOutput, err := formatter.Format(data)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Println(jsonOutput)
	return nil
}
