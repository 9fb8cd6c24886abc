package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"quore/domain/credential"
)

type CredentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) credential.Repository {
	return &CredentialRepository{db: db}
}

// Columns usable in search conditions. Everything else is rejected so a
// caller can never probe the encrypted blob column.
var credentialSearchColumns = map[string]bool{
	"name":       true,
	"type":       true,
	"created_by": true,
	"created_at": true,
	"updated_at": true,
}

func (r *CredentialRepository) Create(ctx context.Context, c *credential.Credential) error {
	c.ID = "crd_" + ulid.Make().String()
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CredentialRepository) FindByID(ctx context.Context, id string) (*credential.Credential, error) {
	var c credential.Credential
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, credential.ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CredentialRepository) Search(ctx context.Context, workspaceID string, conditions []credential.Condition) ([]credential.Credential, error) {
	query := r.db.WithContext(ctx).Where("workspace_id = ?", workspaceID)

	for _, cond := range conditions {
		if !credentialSearchColumns[cond.Field] {
			return nil, fmt.Errorf("%w: %q", credential.ErrBadFilterField, cond.Field)
		}

		switch cond.Op {
		case credential.OpEq:
			query = query.Where(cond.Field+" = ?", cond.Value)
		case credential.OpNeq:
			query = query.Where(cond.Field+" <> ?", cond.Value)
		case credential.OpGt:
			query = query.Where(cond.Field+" > ?", cond.Value)
		case credential.OpLt:
			query = query.Where(cond.Field+" < ?", cond.Value)
		case credential.OpGte:
			query = query.Where(cond.Field+" >= ?", cond.Value)
		case credential.OpLte:
			query = query.Where(cond.Field+" <= ?", cond.Value)
		case credential.OpILike:
			// LOWER/LIKE instead of ILIKE so sqlite and postgres behave
			// the same.
			query = query.Where("LOWER("+cond.Field+") LIKE LOWER(?)", cond.Value)
		case credential.OpIn:
			query = query.Where(cond.Field+" IN ?", cond.Value)
		case credential.OpNotIn:
			query = query.Where(cond.Field+" NOT IN ?", cond.Value)
		default:
			return nil, fmt.Errorf("%w: %q", credential.ErrBadFilterOperator, cond.Op)
		}
	}

	var creds []credential.Credential
	if err := query.Order("created_at DESC").Find(&creds).Error; err != nil {
		return nil, err
	}
	return creds, nil
}

func (r *CredentialRepository) Update(ctx context.Context, c *credential.Credential) error {
	var existing credential.Credential
	if err := r.db.WithContext(ctx).First(&existing, "id = ?", c.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return credential.ErrCredentialNotFound
		}
		return err
	}
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CredentialRepository) Delete(ctx context.Context, id string) (bool, error) {
	// Unscoped: credential rows are removed outright, no tombstone that
	// would keep the secret blob recoverable.
	res := r.db.WithContext(ctx).Unscoped().Delete(&credential.Credential{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
