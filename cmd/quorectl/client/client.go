package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client interface for interacting with the quore API
type Client interface {
	RegisterPlugin(workspaceID string, req *RegisterPluginRequest) (*Plugin, error)
	ListPlugins(workspaceID, state string) ([]Plugin, error)
	GetPlugin(workspaceID, pluginID string) (*Plugin, error)
	InitializePlugin(workspaceID, pluginID string) (*Plugin, error)
	StopPlugin(workspaceID, pluginID string) (*Plugin, error)
	CreateCredential(workspaceID string, req *CreateCredentialRequest) (*Credential, error)
	ListCredentials(workspaceID string) ([]Credential, error)
	DeleteCredential(workspaceID, credentialID string) error
	ListCredentialTypes() ([]CredentialType, error)
	ListPluginStates() ([]PluginState, error)
}

// HTTPClient implements the Client interface
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new HTTP client
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// RegisterPluginRequest represents the payload for registering a plugin
type RegisterPluginRequest struct {
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Version       string         `json:"version,omitempty"`
	EndpointURL   string         `json:"endpoint_url"`
	RepositoryURL string         `json:"repository_url,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CredentialID  *string        `json:"credential_id,omitempty"`
	IsGlobal      bool           `json:"is_global"`
}

// Plugin represents a plugin row from the API
type Plugin struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	State            string    `json:"state"`
	StateDescription string    `json:"state_description"`
	EndpointURL      string    `json:"endpoint_url"`
	RepositoryURL    string    `json:"repository_url,omitempty"`
	IsGlobal         bool      `json:"is_global"`
	CreatedAt        time.Time `json:"created_at"`
}

// CreateCredentialRequest represents the payload for creating a credential
type CreateCredentialRequest struct {
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Fields    map[string]any `json:"fields"`
	CreatedBy string         `json:"created_by,omitempty"`
}

// Credential represents the redacted credential view from the API
type Credential struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Fields    map[string]any `json:"fields"`
	CreatedAt time.Time      `json:"created_at"`
}

// CredentialType represents a registered credential type
type CredentialType struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Fields []struct {
		Name      string `json:"name"`
		InputType string `json:"input_type"`
		Required  bool   `json:"required"`
	} `json:"fields"`
}

// PluginState pairs a lifecycle state with its description
type PluginState struct {
	State       string `json:"state"`
	Description string `json:"description"`
}

func (h *HTTPClient) RegisterPlugin(workspaceID string, req *RegisterPluginRequest) (*Plugin, error) {
	var resp Plugin
	path := fmt.Sprintf("/api/v1/workspaces/%s/plugins", workspaceID)
	if err := h.do(http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *HTTPClient) ListPlugins(workspaceID, state string) ([]Plugin, error) {
	path := fmt.Sprintf("/api/v1/workspaces/%s/plugins", workspaceID)
	if state != "" {
		path += "?state=" + state
	}
	var resp []Plugin
	if err := h.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (h *HTTPClient) GetPlugin(workspaceID, pluginID string) (*Plugin, error) {
	var resp Plugin
	path := fmt.Sprintf("/api/v1/workspaces/%s/plugins/%s", workspaceID, pluginID)
	if err := h.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *HTTPClient) InitializePlugin(workspaceID, pluginID string) (*Plugin, error) {
	var resp Plugin
	path := fmt.Sprintf("/api/v1/workspaces/%s/plugins/%s/initialize", workspaceID, pluginID)
	if err := h.do(http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *HTTPClient) StopPlugin(workspaceID, pluginID string) (*Plugin, error) {
	var resp Plugin
	path := fmt.Sprintf("/api/v1/workspaces/%s/plugins/%s/stop", workspaceID, pluginID)
	if err := h.do(http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *HTTPClient) CreateCredential(workspaceID string, req *CreateCredentialRequest) (*Credential, error) {
	var resp Credential
	path := fmt.Sprintf("/api/v1/workspaces/%s/credentials", workspaceID)
	if err := h.do(http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *HTTPClient) ListCredentials(workspaceID string) ([]Credential, error) {
	var resp []Credential
	path := fmt.Sprintf("/api/v1/workspaces/%s/credentials", workspaceID)
	if err := h.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (h *HTTPClient) DeleteCredential(workspaceID, credentialID string) error {
	path := fmt.Sprintf("/api/v1/workspaces/%s/credentials/%s", workspaceID, credentialID)
	return h.do(http.MethodDelete, path, nil, nil)
}

func (h *HTTPClient) ListCredentialTypes() ([]CredentialType, error) {
	var resp []CredentialType
	if err := h.do(http.MethodGet, "/api/v1/credential-types", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (h *HTTPClient) ListPluginStates() ([]PluginState, error) {
	var resp []PluginState
	if err := h.do(http.MethodGet, "/api/v1/plugin-states", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (h *HTTPClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, h.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
