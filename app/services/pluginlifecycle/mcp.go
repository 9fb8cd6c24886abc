package pluginlifecycle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/client"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"gorm.io/datatypes"

	"quore/domain/plugin"
	"quore/version"
)

const mcpProtocolVersion = "2025-06-18"

// dialMCP is the production SessionDialer. It speaks streamable HTTP to
// the plugin's endpoint.
func dialMCP(ctx context.Context, endpointURL string) (ToolSession, error) {
	mcpClient, err := client.NewStreamableHttpClient(endpointURL)
	if err != nil {
		return nil, err
	}

	// the HTTP transport must be started before Initialize
	if err := mcpClient.GetTransport().Start(ctx); err != nil {
		mcpClient.Close()
		return nil, fmt.Errorf("starting transport: %w", err)
	}

	initReq := mcptypes.InitializeRequest{
		Params: mcptypes.InitializeParams{
			ProtocolVersion: mcpProtocolVersion,
			Capabilities:    mcptypes.ClientCapabilities{},
			ClientInfo: mcptypes.Implementation{
				Name:    "quore",
				Version: version.Version,
			},
		},
	}
	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		mcpClient.Close()
		return nil, fmt.Errorf("initializing session: %w", err)
	}

	return &mcpSession{client: mcpClient}, nil
}

type mcpSession struct {
	client *client.Client
}

func (s *mcpSession) ListTools(ctx context.Context) ([]plugin.ToolDescriptor, error) {
	result, err := s.client.ListTools(ctx, mcptypes.ListToolsRequest{})
	if err != nil {
		return nil, err
	}

	tools := make([]plugin.ToolDescriptor, 0, len(result.Tools))
	for _, t := range result.Tools {
		inputSchema, err := json.Marshal(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("encoding input schema for tool %s: %w", t.Name, err)
		}
		var outputSchema datatypes.JSON
		if t.OutputSchema.Type != "" {
			raw, err := json.Marshal(t.OutputSchema)
			if err != nil {
				return nil, fmt.Errorf("encoding output schema for tool %s: %w", t.Name, err)
			}
			outputSchema = datatypes.JSON(raw)
		}
		tools = append(tools, plugin.ToolDescriptor{
			Name:         t.Name,
			Description:  t.Description,
			InputSchema:  datatypes.JSON(inputSchema),
			OutputSchema: outputSchema,
			IsActive:     true,
		})
	}
	return tools, nil
}

func (s *mcpSession) ListResources(ctx context.Context) ([]plugin.ResourceDescriptor, error) {
	result, err := s.client.ListResources(ctx, mcptypes.ListResourcesRequest{})
	if err != nil {
		return nil, err
	}

	resources := make([]plugin.ResourceDescriptor, 0, len(result.Resources))
	for _, r := range result.Resources {
		resources = append(resources, plugin.ResourceDescriptor{
			URI:         r.URI,
			Name:        r.Name,
			Description: r.Description,
			MimeType:    r.MIMEType,
		})
	}
	return resources, nil
}

func (s *mcpSession) ListPrompts(ctx context.Context) ([]plugin.PromptDescriptor, error) {
	result, err := s.client.ListPrompts(ctx, mcptypes.ListPromptsRequest{})
	if err != nil {
		return nil, err
	}

	prompts := make([]plugin.PromptDescriptor, 0, len(result.Prompts))
	for _, p := range result.Prompts {
		var args datatypes.JSON
		if len(p.Arguments) > 0 {
			raw, err := json.Marshal(p.Arguments)
			if err != nil {
				return nil, fmt.Errorf("encoding arguments for prompt %s: %w", p.Name, err)
			}
			args = datatypes.JSON(raw)
		}
		prompts = append(prompts, plugin.PromptDescriptor{
			Name:        p.Name,
			Description: p.Description,
			Arguments:   args,
		})
	}
	return prompts, nil
}

func (s *mcpSession) Close() error {
	return s.client.Close()
}
