package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"quore/cmd/quorectl/client"

	"github.com/urfave/cli/v3"
)

// CredentialCommand returns the credential command with subcommands
func CredentialCommand() *cli.Command {
	return &cli.Command{
		Name:  "credential",
		Usage: "Manage workspace credentials",
		Commands: []*cli.Command{
			createCredentialCommand(),
			listCredentialCommand(),
			deleteCredentialCommand(),
			typesCommand(),
		},
	}
}

func createCredentialCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a credential",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "name",
				Usage:    "Credential name",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "type",
				Usage:    "Credential type (see 'credential types')",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "fields",
				Usage:    "Credential fields as a JSON object",
				Required: true,
			},
		},
		Action: createCredentialAction,
	}
}

func createCredentialAction(ctx context.Context, c *cli.Command) error {
	httpClient, workspace, err := setup(c)
	if err != nil {
		return err
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(c.String("fields")), &fields); err != nil {
		return fmt.Errorf("invalid fields JSON: %w", err)
	}

	resp, err := httpClient.CreateCredential(workspace, &client.CreateCredentialRequest{
		Name:   c.String("name"),
		Type:   c.String("type"),
		Fields: fields,
	})
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return printJSON(resp)
}

func listCredentialCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List credentials in the workspace",
		Action: func(ctx context.Context, c *cli.Command) error {
			httpClient, workspace, err := setup(c)
			if err != nil {
				return err
			}
			resp, err := httpClient.ListCredentials(workspace)
			if err != nil {
				return fmt.Errorf("failed to list credentials: %w", err)
			}
			return printJSON(resp)
		},
	}
}

func deleteCredentialCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a credential permanently",
		ArgsUsage: "<credential-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			httpClient, workspace, err := setup(c)
			if err != nil {
				return err
			}
			if c.Args().Len() < 1 {
				return fmt.Errorf("credential id is required")
			}
			if err := httpClient.DeleteCredential(workspace, c.Args().First()); err != nil {
				return fmt.Errorf("failed to delete credential: %w", err)
			}
			fmt.Println("deleted")
			return nil
		},
	}
}

func typesCommand() *cli.Command {
	return &cli.Command{
		Name:  "types",
		Usage: "List supported credential types",
		Action: func(ctx context.Context, c *cli.Command) error {
			httpClient, _, err := setupNoWorkspace(c)
			if err != nil {
				return err
			}
			resp, err := httpClient.ListCredentialTypes()
			if err != nil {
				return fmt.Errorf("failed to list credential types: %w", err)
			}
			return printJSON(resp)
		},
	}
}
