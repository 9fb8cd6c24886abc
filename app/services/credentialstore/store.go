// Package credentialstore manages encrypted credential records for a
// workspace. It is the only component that touches plaintext secret
// fields, and the plaintext never leaves it except through
// DecryptedFields, which must stay behind the API boundary.
package credentialstore

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"quore/app/services/credentialtype"
	"quore/domain/credential"
	"quore/internal/crypto"
)

// RedactionMarker replaces every sensitive field value in API-facing
// views.
const RedactionMarker = "[OBFUSCATED]"

// Info is the redacted, API-safe view of a credential.
type Info struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Fields      map[string]any `json:"fields"`
	CreatedBy   string         `json:"created_by"`
	WorkspaceID string         `json:"workspace_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type Store struct {
	repo  credential.Repository
	types *credentialtype.Registry
	box   *crypto.Box
}

func New(repo credential.Repository, types *credentialtype.Registry, box *crypto.Box) *Store {
	return &Store{
		repo:  repo,
		types: types,
		box:   box,
	}
}

// Create validates the submitted fields against the type schema, then
// encrypts and persists them. Nothing is written when validation fails.
func (s *Store) Create(ctx context.Context, workspaceID, name, typeName string, fields map[string]any, createdBy string) (*credential.Credential, error) {
	normalized, err := s.types.ValidateFields(typeName, fields)
	if err != nil {
		return nil, err
	}

	blob, err := s.box.Encrypt(normalized)
	if err != nil {
		return nil, err
	}

	c := &credential.Credential{
		Name:          name,
		Type:          typeName,
		EncryptedBlob: blob,
		CreatedBy:     createdBy,
		WorkspaceID:   workspaceID,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"credential_id": c.ID,
		"workspace_id":  workspaceID,
		"type":          typeName,
	}).Info("credential created")

	return c, nil
}

func (s *Store) Get(ctx context.Context, id string) (*credential.Credential, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Store) Search(ctx context.Context, workspaceID string, conditions []credential.Condition) ([]credential.Credential, error) {
	return s.repo.Search(ctx, workspaceID, conditions)
}

// Update re-encrypts a new field map when one is supplied, validating it
// against the credential's existing type. A name-only update leaves the
// blob untouched.
func (s *Store) Update(ctx context.Context, id string, name *string, fields map[string]any) (*credential.Credential, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		c.Name = *name
	}

	if fields != nil {
		normalized, err := s.types.ValidateFields(c.Type, fields)
		if err != nil {
			return nil, err
		}
		blob, err := s.box.Encrypt(normalized)
		if err != nil {
			return nil, err
		}
		c.EncryptedBlob = blob
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the credential row outright.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		log.WithField("credential_id", id).Info("credential deleted")
	}
	return deleted, nil
}

// DecryptedFields returns the plaintext field map. Trusted internal
// callers only; this must never back an API response.
func (s *Store) DecryptedFields(ctx context.Context, id string) (map[string]any, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.box.Decrypt(c.EncryptedBlob)
}

// RedactedView decrypts the credential and substitutes the redaction
// marker for every field the type schema declares sensitive. The
// sensitive plaintext does not survive past this function's return.
func (s *Store) RedactedView(c *credential.Credential) (*Info, error) {
	fields, err := s.box.Decrypt(c.EncryptedBlob)
	if err != nil {
		return nil, err
	}

	sensitive, err := s.types.SensitiveFields(c.Type)
	if err != nil {
		return nil, err
	}

	redacted := make(map[string]any, len(fields))
	for name, value := range fields {
		if sensitive[name] {
			redacted[name] = RedactionMarker
		} else {
			redacted[name] = value
		}
	}

	return &Info{
		ID:          c.ID,
		Name:        c.Name,
		Type:        c.Type,
		Fields:      redacted,
		CreatedBy:   c.CreatedBy,
		WorkspaceID: c.WorkspaceID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}, nil
}
