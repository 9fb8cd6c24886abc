package plugin

import "context"

type Repository interface {
	Create(ctx context.Context, p *Plugin) error
	Update(ctx context.Context, p *Plugin) error
	FindByID(ctx context.Context, id string) (*Plugin, error)
	FindAll(ctx context.Context, filters PluginFilters) ([]Plugin, error)
	Delete(ctx context.Context, id string) error
	// UpdateState persists state and state_description together.
	UpdateState(ctx context.Context, id string, state State, description string) error
	// ReplaceDescriptors swaps all three descriptor collections in one
	// shot. Callers that need the swap atomic with a state change wrap
	// both in Transaction.
	ReplaceDescriptors(ctx context.Context, pluginID string, tools []ToolDescriptor, resources []ResourceDescriptor, prompts []PromptDescriptor) error
	Transaction(ctx context.Context, fn func(Repository) error) error
}
