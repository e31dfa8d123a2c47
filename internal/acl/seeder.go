package acl

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// UserLookup pairs a username with its user id for the cache lookup keys.
type UserLookup struct {
	Username string
	UserID   uint
}

// EventLookup holds the cache lookup and star-count data for one event.
type EventLookup struct {
	Name    string
	OwnerID uint
	EventID uint
}

// Lookups is the cache-only derived state seeded next to the ACL graph.
type Lookups struct {
	Users  []UserLookup
	Events []EventLookup
}

// Seeder writes the ACL graph to the cache store and the relational store.
// The dual write is sequential per logical unit, cache store first. There
// is no distributed transaction: a crash between the two writes leaves the
// stores diverged, and recovery is re-running the seed, which is
// idempotent in both stores.
type Seeder struct {
	cache      Writer
	relational Writer
	lookups    LookupWriter
	logger     *slog.Logger
}

func NewSeeder(cache Writer, relational Writer, lookups LookupWriter, logger *slog.Logger) *Seeder {
	return &Seeder{cache: cache, relational: relational, lookups: lookups, logger: logger}
}

// Seed persists the graph and lookup keys. Any error aborts the run and
// propagates; partially written cache state is an accepted limitation.
func (s *Seeder) Seed(ctx context.Context, g *Graph, lookups Lookups) error {
	for _, role := range g.RoleOrder {
		resources := make([]string, 0, len(g.RolePermissions[role]))
		for resource := range g.RolePermissions[role] {
			resources = append(resources, resource)
		}
		sort.Strings(resources)

		for _, resource := range resources {
			perms := g.RolePermissions[role][resource]
			if err := s.cache.GrantPermissions(ctx, role, resource, perms); err != nil {
				return fmt.Errorf("cache store: %w", err)
			}
			if err := s.relational.GrantPermissions(ctx, role, resource, perms); err != nil {
				return fmt.Errorf("relational store: %w", err)
			}
		}

		if parents := g.RoleParents[role]; len(parents) > 0 {
			if err := s.cache.AddRoleParents(ctx, role, parents); err != nil {
				return fmt.Errorf("cache store: %w", err)
			}
			if err := s.relational.AddRoleParents(ctx, role, parents); err != nil {
				return fmt.Errorf("relational store: %w", err)
			}
		}
	}

	var assignments int
	for _, userID := range g.UserOrder {
		for _, role := range g.UserRoles[userID] {
			if err := s.cache.AssignRole(ctx, userID, role); err != nil {
				return fmt.Errorf("cache store: %w", err)
			}
			if err := s.relational.AssignRole(ctx, userID, role); err != nil {
				return fmt.Errorf("relational store: %w", err)
			}
			assignments++
		}
	}

	if s.lookups != nil {
		for _, u := range lookups.Users {
			if err := s.lookups.SetUsernameLookup(ctx, u.Username, u.UserID); err != nil {
				return err
			}
		}
		for _, e := range lookups.Events {
			if err := s.lookups.SetEventLookup(ctx, e.Name, e.OwnerID, e.EventID); err != nil {
				return err
			}
			if err := s.lookups.InitStarCount(ctx, e.EventID); err != nil {
				return err
			}
		}
	}

	s.logger.Info("acl graph seeded",
		"roles", len(g.RoleOrder),
		"users", len(g.UserOrder),
		"assignments", assignments)

	return nil
}
