// Package pipeline wires the four migration stages into one sequential
// run: collect, synthesize identities, materialize, seed the ACL graph.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"waveline/internal/acl"
	"waveline/internal/collector"
	"waveline/internal/identity"
	"waveline/internal/infrastructure/persistence/models"
	"waveline/internal/materializer"
)

// Pipeline runs the one-shot migration. Stages run strictly in sequence;
// the first error terminates the run.
type Pipeline struct {
	collector     *collector.Collector
	materializer  *materializer.Materializer
	seeder        *acl.Seeder
	adminUsername string
	logger        *slog.Logger
}

func New(c *collector.Collector, m *materializer.Materializer, s *acl.Seeder, adminUsername string, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		collector:     c,
		materializer:  m,
		seeder:        s,
		adminUsername: adminUsername,
		logger:        logger,
	}
}

// Run executes the full pipeline. A collector failure loses no durable
// state, a materializer failure rolls back the relational transaction, and
// an ACL failure may leave partially seeded cache state, which a re-run
// repairs through the stores' idempotent write paths.
func (p *Pipeline) Run(ctx context.Context) error {
	result, err := p.collector.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collection failed: %w", err)
	}

	contributors := materializer.ContributorIDs(result)
	pseudonyms := identity.Pseudonyms(len(contributors))
	names := make(map[uint]string, len(contributors))
	for i, id := range contributors {
		names[id] = pseudonyms[i]
	}
	p.logger.Info("identities synthesized", "count", len(names))

	if _, err := p.materializer.Load(ctx, result, names); err != nil {
		return err
	}

	graph := acl.Build(contributors, eventOwnerships(result))
	if err := p.seeder.Seed(ctx, graph, p.buildLookups(result, names)); err != nil {
		return fmt.Errorf("acl seeding failed: %w", err)
	}

	p.logger.Info("migration pipeline complete")
	return nil
}

func eventOwnerships(res *collector.Result) []acl.EventOwnership {
	out := make([]acl.EventOwnership, 0, len(res.EventOrder))
	for _, id := range res.EventOrder {
		out = append(out, acl.EventOwnership{
			EventID: id,
			OwnerID: res.Events[id].OwnerID,
		})
	}
	return out
}

func (p *Pipeline) buildLookups(res *collector.Result, names map[uint]string) acl.Lookups {
	lookups := acl.Lookups{
		Users: []acl.UserLookup{{Username: p.adminUsername, UserID: models.AdminID}},
	}
	for _, id := range materializer.ContributorIDs(res) {
		lookups.Users = append(lookups.Users, acl.UserLookup{
			Username: identity.Username(names[id]),
			UserID:   id,
		})
	}
	for _, id := range res.EventOrder {
		e := res.Events[id]
		ownerID := e.OwnerID
		if ownerID == 0 {
			ownerID = models.AdminID
		}
		lookups.Events = append(lookups.Events, acl.EventLookup{
			Name:    e.Name,
			OwnerID: ownerID,
			EventID: e.ID,
		})
	}
	return lookups
}
