package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"waveline/internal/infrastructure/persistence/models"
)

// GormStore mirrors the ACL graph into the relational store as JSON-valued
// rows. Writes are read-modify-write upserts keyed on the primary key with
// full value replacement, matching the cache store's set-union semantics.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Writer = (*GormStore)(nil)

func (s *GormStore) AssignRole(ctx context.Context, userID uint, role string) error {
	userRow, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	roles, err := decodeStrings(userRow.Roles)
	if err != nil {
		return fmt.Errorf("corrupt role set for user %d: %w", userID, err)
	}
	userRow.Roles = mustEncode(appendUniqueString(roles, role))
	if err := s.saveUser(ctx, userRow); err != nil {
		return err
	}

	roleRow, err := s.loadRole(ctx, role)
	if err != nil {
		return err
	}
	users, err := decodeIDs(roleRow.Users)
	if err != nil {
		return fmt.Errorf("corrupt user set for role %s: %w", role, err)
	}
	roleRow.Users = mustEncode(appendUniqueID(users, userID))
	return s.saveRole(ctx, roleRow)
}

func (s *GormStore) GrantPermissions(ctx context.Context, role, resource string, permissions []string) error {
	roleRow, err := s.loadRole(ctx, role)
	if err != nil {
		return err
	}

	perms := make(map[string][]string)
	if len(roleRow.Permissions) > 0 {
		if err := json.Unmarshal(roleRow.Permissions, &perms); err != nil {
			return fmt.Errorf("corrupt permission map for role %s: %w", role, err)
		}
	}
	for _, p := range permissions {
		perms[resource] = appendUniqueString(perms[resource], p)
	}
	if perms[resource] == nil {
		perms[resource] = []string{}
	}
	roleRow.Permissions = mustEncode(perms)

	return s.saveRole(ctx, roleRow)
}

func (s *GormStore) AddRoleParents(ctx context.Context, role string, parents []string) error {
	roleRow, err := s.loadRole(ctx, role)
	if err != nil {
		return err
	}
	existing, err := decodeStrings(roleRow.Parents)
	if err != nil {
		return fmt.Errorf("corrupt parent set for role %s: %w", role, err)
	}
	for _, p := range parents {
		existing = appendUniqueString(existing, p)
	}
	roleRow.Parents = mustEncode(existing)
	return s.saveRole(ctx, roleRow)
}

func (s *GormStore) loadUser(ctx context.Context, userID uint) (*models.AclUserModel, error) {
	var row models.AclUserModel
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.AclUserModel{UserID: userID, Roles: mustEncode([]string{})}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load acl user %d: %w", userID, err)
	}
	return &row, nil
}

func (s *GormStore) saveUser(ctx context.Context, row *models.AclUserModel) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"roles", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert acl user %d: %w", row.UserID, err)
	}
	return nil
}

func (s *GormStore) loadRole(ctx context.Context, role string) (*models.AclRoleModel, error) {
	var row models.AclRoleModel
	err := s.db.WithContext(ctx).Where("name = ?", role).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.AclRoleModel{
			Name:        role,
			Users:       mustEncode([]uint{}),
			Permissions: mustEncode(map[string][]string{}),
			Parents:     mustEncode([]string{}),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load acl role %s: %w", role, err)
	}
	return &row, nil
}

func (s *GormStore) saveRole(ctx context.Context, row *models.AclRoleModel) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"users", "permissions", "parents", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert acl role %s: %w", row.Name, err)
	}
	return nil
}

func decodeStrings(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeIDs(raw []byte) ([]uint, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []uint
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func mustEncode(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("acl: unencodable value: %v", err))
	}
	return data
}

func appendUniqueString(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func appendUniqueID(list []uint, v uint) []uint {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
