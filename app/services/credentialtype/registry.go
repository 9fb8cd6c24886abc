// Package credentialtype holds the fixed catalog of credential kinds and
// validates submitted field maps against their schemas before anything
// gets encrypted.
package credentialtype

import (
	"errors"
	"fmt"
	"strings"

	"quore/domain/credential"
)

var ErrTypeNotFound = errors.New("credential type not found")

// Input types that mark a field as sensitive. Sensitive field values are
// replaced with a redaction marker before leaving the trust boundary.
const (
	InputText     = "text"
	InputPassword = "password"
	InputTextarea = "textarea"
)

type FieldSpec struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Type      string `json:"type"`
	InputType string `json:"input_type"`
	Required  bool   `json:"required"`
	Default   string `json:"default,omitempty"`
	Help      string `json:"help,omitempty"`
}

type TypeInfo struct {
	Name        string      `json:"type_name"`
	DisplayName string      `json:"display_name"`
	Fields      []FieldSpec `json:"fields"`
}

// ValidationError reports a structurally invalid field submission. It is
// surfaced to the caller verbatim and never retried.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid credential fields: " + strings.Join(e.Problems, "; ")
}

type Registry struct {
	types map[string]TypeInfo
	order []string
}

// NewRegistry returns the catalog of the five supported credential
// types. Content is immutable at runtime; adding a type means adding a
// schema entry here.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]TypeInfo)}

	r.add(TypeInfo{
		Name:        credential.TypeGitHubPAT,
		DisplayName: "GitHub Personal Access Token",
		Fields: []FieldSpec{
			{Name: "server", Label: "Server", Type: "string", InputType: InputText, Default: "https://api.github.com", Help: "GitHub API base URL"},
			{Name: "token", Label: "Token", Type: "string", InputType: InputPassword, Required: true},
			{Name: "user", Label: "Username", Type: "string", InputType: InputText},
		},
	})
	r.add(TypeInfo{
		Name:        credential.TypeGitLabPAT,
		DisplayName: "GitLab Personal Access Token",
		Fields: []FieldSpec{
			{Name: "token", Label: "Token", Type: "string", InputType: InputPassword, Required: true},
		},
	})
	r.add(TypeInfo{
		Name:        credential.TypeSSHKey,
		DisplayName: "SSH Key",
		Fields: []FieldSpec{
			{Name: "private_key", Label: "Private Key", Type: "string", InputType: InputTextarea, Required: true, Help: "PEM-encoded private key"},
			{Name: "passphrase", Label: "Passphrase", Type: "string", InputType: InputPassword},
		},
	})
	r.add(TypeInfo{
		Name:        credential.TypeBearerAuth,
		DisplayName: "Bearer Token",
		Fields: []FieldSpec{
			{Name: "token", Label: "Token", Type: "string", InputType: InputPassword, Required: true},
		},
	})
	r.add(TypeInfo{
		Name:        credential.TypeBasicAuth,
		DisplayName: "Basic Authentication",
		Fields: []FieldSpec{
			{Name: "username", Label: "Username", Type: "string", InputType: InputText, Required: true},
			{Name: "password", Label: "Password", Type: "string", InputType: InputPassword, Required: true},
		},
	})

	return r
}

func (r *Registry) add(info TypeInfo) {
	r.types[info.Name] = info
	r.order = append(r.order, info.Name)
}

func (r *Registry) Get(name string) (TypeInfo, error) {
	info, ok := r.types[name]
	if !ok {
		return TypeInfo{}, fmt.Errorf("%w: %q", ErrTypeNotFound, name)
	}
	return info, nil
}

// All returns the catalog in declaration order.
func (r *Registry) All() []TypeInfo {
	out := make([]TypeInfo, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.types[name])
	}
	return out
}

// ValidateFields checks the submitted map against the type's schema and
// returns a normalized copy with declared defaults filled in. Unknown
// fields, missing required fields, and non-string values for string
// fields all fail with a ValidationError.
func (r *Registry) ValidateFields(typeName string, fields map[string]any) (map[string]any, error) {
	info, err := r.Get(typeName)
	if err != nil {
		return nil, err
	}

	known := make(map[string]FieldSpec, len(info.Fields))
	for _, f := range info.Fields {
		known[f.Name] = f
	}

	var problems []string
	normalized := make(map[string]any, len(info.Fields))

	for name, value := range fields {
		spec, ok := known[name]
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown field %q for type %s", name, typeName))
			continue
		}
		if spec.Type == "string" {
			s, ok := value.(string)
			if !ok {
				problems = append(problems, fmt.Sprintf("field %q must be a string", name))
				continue
			}
			normalized[name] = s
		} else {
			normalized[name] = value
		}
	}

	for _, spec := range info.Fields {
		v, present := normalized[spec.Name]
		empty := !present || v == ""
		if empty && spec.Default != "" {
			normalized[spec.Name] = spec.Default
			continue
		}
		if empty && spec.Required {
			problems = append(problems, fmt.Sprintf("field %q is required", spec.Name))
		}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	return normalized, nil
}

// SensitiveFields reports which of the type's fields must be redacted in
// API responses.
func (r *Registry) SensitiveFields(typeName string) (map[string]bool, error) {
	info, err := r.Get(typeName)
	if err != nil {
		return nil, err
	}

	sensitive := make(map[string]bool)
	for _, f := range info.Fields {
		if f.InputType == InputPassword || f.InputType == InputTextarea {
			sensitive[f.Name] = true
		}
	}
	return sensitive, nil
}
