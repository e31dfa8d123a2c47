package acl

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore writes the ACL graph into the cache store. All writes are
// set unions or set-if-absent, so re-seeding is idempotent.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

var _ Writer = (*RedisStore)(nil)
var _ LookupWriter = (*RedisStore)(nil)

func (s *RedisStore) userRolesKey(userID uint) string {
	return fmt.Sprintf("%sauth:user:%d:roles", s.prefix, userID)
}

func (s *RedisStore) roleUsersKey(role string) string {
	return fmt.Sprintf("%sauth:role:%s:users", s.prefix, role)
}

func (s *RedisStore) rolePermissionsKey(role, resource string) string {
	return fmt.Sprintf("%sauth:role:%s:%s:permissions", s.prefix, role, resource)
}

func (s *RedisStore) roleParentsKey(role string) string {
	return fmt.Sprintf("%sauth:role:%s:parents", s.prefix, role)
}

func (s *RedisStore) AssignRole(ctx context.Context, userID uint, role string) error {
	if err := s.client.SAdd(ctx, s.userRolesKey(userID), role).Err(); err != nil {
		return fmt.Errorf("failed to add role %s to user %d: %w", role, userID, err)
	}
	if err := s.client.SAdd(ctx, s.roleUsersKey(role), userID).Err(); err != nil {
		return fmt.Errorf("failed to add user %d to role %s: %w", userID, role, err)
	}
	return nil
}

func (s *RedisStore) GrantPermissions(ctx context.Context, role, resource string, permissions []string) error {
	if len(permissions) == 0 {
		// An absent set key is the empty permission set.
		return nil
	}
	members := make([]interface{}, len(permissions))
	for i, p := range permissions {
		members[i] = p
	}
	if err := s.client.SAdd(ctx, s.rolePermissionsKey(role, resource), members...).Err(); err != nil {
		return fmt.Errorf("failed to grant permissions on %s to role %s: %w", resource, role, err)
	}
	return nil
}

func (s *RedisStore) AddRoleParents(ctx context.Context, role string, parents []string) error {
	if len(parents) == 0 {
		return nil
	}
	members := make([]interface{}, len(parents))
	for i, p := range parents {
		members[i] = p
	}
	if err := s.client.SAdd(ctx, s.roleParentsKey(role), members...).Err(); err != nil {
		return fmt.Errorf("failed to add parents to role %s: %w", role, err)
	}
	return nil
}

func (s *RedisStore) SetUsernameLookup(ctx context.Context, username string, userID uint) error {
	key := fmt.Sprintf("%suser:username:%s", s.prefix, username)
	if err := s.client.Set(ctx, key, userID, 0).Err(); err != nil {
		return fmt.Errorf("failed to set username lookup for %s: %w", username, err)
	}
	return nil
}

func (s *RedisStore) SetEventLookup(ctx context.Context, name string, ownerID, eventID uint) error {
	key := fmt.Sprintf("%sevent:%s:%d", s.prefix, name, ownerID)
	if err := s.client.Set(ctx, key, eventID, 0).Err(); err != nil {
		return fmt.Errorf("failed to set event lookup for %q: %w", name, err)
	}
	return nil
}

func (s *RedisStore) InitStarCount(ctx context.Context, eventID uint) error {
	key := fmt.Sprintf("%sevent:%d:stars", s.prefix, eventID)
	// SetNX keeps an organically grown count if one already exists.
	if err := s.client.SetNX(ctx, key, 0, 0).Err(); err != nil {
		return fmt.Errorf("failed to init star count for event %d: %w", eventID, err)
	}
	return nil
}
