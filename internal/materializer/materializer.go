// Package materializer loads the collected entity graph into the
// relational store inside a single all-or-nothing transaction.
package materializer

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"waveline/internal/collector"
	"waveline/internal/identity"
	"waveline/internal/infrastructure/persistence/models"
	"waveline/internal/shared/db"
)

// AdminAccount describes the fixed administrator row (id 1).
type AdminAccount struct {
	Username string
	Email    string
	Password string
}

// PasswordHasher is the opaque one-way hash applied to account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Report summarizes one materialization run.
type Report struct {
	Clients           int
	Tags              int
	Events            int
	Stacks            int
	News              int
	StackLinks        int
	TagLinks          int
	HeaderImages      int
	Commits           int
	LatestNewsUpdated int
	LatestNewsSkipped int
}

// loadRun carries per-run state between load steps. Sequence adjustments
// are collected here and applied only after the transaction commits:
// ALTER TABLE would implicitly commit an open MySQL transaction.
type loadRun struct {
	report *Report
	seqs   []sequenceAdjustment
}

type sequenceAdjustment struct {
	table string
	maxID uint
}

func (r *loadRun) advance(table string, maxID uint) {
	r.seqs = append(r.seqs, sequenceAdjustment{table: table, maxID: maxID})
}

// Materializer performs the transactional relational load. Every insert is
// idempotent (first write wins on primary key) so re-running against the
// same destination is a safe no-op for already-present rows.
type Materializer struct {
	tm     *db.TransactionManager
	hasher PasswordHasher
	admin  AdminAccount
	logger *slog.Logger
}

func NewMaterializer(tm *db.TransactionManager, hasher PasswordHasher, admin AdminAccount, logger *slog.Logger) *Materializer {
	return &Materializer{tm: tm, hasher: hasher, admin: admin, logger: logger}
}

// Load writes the full graph in dependency order. names maps each distinct
// non-administrator owner id to its assigned pseudonym. On any error the
// transaction is rolled back in its entirety.
func (m *Materializer) Load(ctx context.Context, res *collector.Result, names map[uint]string) (*Report, error) {
	run := &loadRun{report: &Report{}}

	err := m.tm.RunInTransaction(ctx, func(ctx context.Context) error {
		tx := m.tm.Tx(ctx)

		steps := []func(*gorm.DB, *collector.Result, map[uint]string, *loadRun) error{
			m.insertClients,
			m.insertTags,
			m.insertEvents,
			m.insertStacks,
			m.insertNews,
			m.insertAssociations,
			m.insertHeaderImages,
			m.backfillLatestNews,
			m.insertCommits,
		}
		for _, step := range steps {
			if err := step(tx, res, names, run); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("materialization failed, transaction rolled back: %w", err)
	}

	for _, adj := range run.seqs {
		if err := advanceSequence(m.tm.Tx(ctx), adj.table, adj.maxID); err != nil {
			return nil, err
		}
	}

	m.logger.Info("relational load complete",
		"clients", run.report.Clients,
		"tags", run.report.Tags,
		"events", run.report.Events,
		"stacks", run.report.Stacks,
		"news", run.report.News,
		"commits", run.report.Commits,
		"latest_news_updated", run.report.LatestNewsUpdated,
		"latest_news_skipped", run.report.LatestNewsSkipped)

	return run.report, nil
}

// upsert inserts rows ignoring primary-key conflicts.
func upsert(tx *gorm.DB, value any) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(value).Error
}

func (m *Materializer) insertClients(tx *gorm.DB, res *collector.Result, names map[uint]string, run *loadRun) error {
	adminHash, err := m.hasher.Hash(m.admin.Password)
	if err != nil {
		return err
	}
	admin := &models.ClientModel{
		ID:            models.AdminID,
		Username:      m.admin.Username,
		Name:          m.admin.Username,
		Email:         m.admin.Email,
		Password:      adminHash,
		Role:          models.RoleAdmin,
		EmailVerified: true,
		Settings:      datatypes.JSON("{}"),
	}
	if err := upsert(tx, admin); err != nil {
		return fmt.Errorf("failed to insert admin client: %w", err)
	}
	run.report.Clients++

	maxID := models.AdminID
	for _, ownerID := range ContributorIDs(res) {
		pseudonym, ok := names[ownerID]
		if !ok {
			return fmt.Errorf("no pseudonym assigned for owner %d", ownerID)
		}
		username := identity.Username(pseudonym)

		// Pseudo users can never log in; their password is a discarded
		// random secret.
		hash, err := m.hasher.Hash(randomSecret())
		if err != nil {
			return err
		}

		client := &models.ClientModel{
			ID:       ownerID,
			Username: username,
			Name:     pseudonym,
			Email:    username + "@anon.waveline.org",
			Password: hash,
			Role:     models.RoleContributor,
			Settings: datatypes.JSON("{}"),
		}
		if err := upsert(tx, client); err != nil {
			return fmt.Errorf("failed to insert pseudo client %d: %w", ownerID, err)
		}
		run.report.Clients++
		if ownerID > maxID {
			maxID = ownerID
		}
	}

	run.advance(models.ClientModel{}.TableName(), maxID)
	return nil
}

func (m *Materializer) insertTags(tx *gorm.DB, res *collector.Result, _ map[uint]string, run *loadRun) error {
	var maxID uint
	for _, id := range sortedKeys(res.Tags) {
		t := res.Tags[id]
		tag := &models.TagModel{
			ID:           t.ID,
			Name:         t.Name,
			Slug:         optionalString(t.Slug),
			Description:  optionalString(t.Description),
			Path:         optionalString(t.Path),
			RedirectToID: optionalID(t.RedirectToID),
			ParentID:     optionalID(t.ParentID),
			Status:       defaultString(t.Status, "visible"),
		}
		if err := upsert(tx, tag); err != nil {
			return fmt.Errorf("failed to insert tag %d: %w", t.ID, err)
		}
		run.report.Tags++
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	run.advance(models.TagModel{}.TableName(), maxID)
	return nil
}

func (m *Materializer) insertEvents(tx *gorm.DB, res *collector.Result, _ map[uint]string, run *loadRun) error {
	var maxID uint
	for _, id := range res.EventOrder {
		e := res.Events[id]
		event := &models.EventModel{
			ID:              e.ID,
			Name:            e.Name,
			Pinyin:          optionalString(e.Pinyin),
			Description:     e.Description,
			Status:          defaultString(e.Status, models.EventStatusPending),
			NeedContributor: e.NeedContributor,
			OwnerID:         resolveOwner(e.OwnerID),
			ParentID:        optionalID(e.ParentID),
		}
		if err := upsert(tx, event); err != nil {
			return fmt.Errorf("failed to insert event %d: %w", e.ID, err)
		}
		run.report.Events++
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	run.advance(models.EventModel{}.TableName(), maxID)
	return nil
}

func (m *Materializer) insertStacks(tx *gorm.DB, res *collector.Result, _ map[uint]string, run *loadRun) error {
	var maxID uint
	for _, id := range sortedKeys(res.Stacks) {
		s := res.Stacks[id]
		stack := &models.StackModel{
			ID:           s.ID,
			Title:        s.Title,
			Description:  s.Description,
			Status:       s.Status,
			Order:        stackOrder(s),
			Time:         s.Time,
			EventID:      s.EventID,
			StackEventID: optionalID(s.StackEventID),
		}
		if err := upsert(tx, stack); err != nil {
			return fmt.Errorf("failed to insert stack %d: %w", s.ID, err)
		}
		run.report.Stacks++
		if s.ID > maxID {
			maxID = s.ID
		}
	}
	run.advance(models.StackModel{}.TableName(), maxID)
	return nil
}

func (m *Materializer) insertNews(tx *gorm.DB, res *collector.Result, _ map[uint]string, run *loadRun) error {
	var maxID uint
	for _, id := range sortedKeys(res.News) {
		n := res.News[id]
		news := &models.NewsModel{
			ID:       n.ID,
			URL:      n.URL,
			Source:   n.Source,
			Title:    n.Title,
			Abstract: n.Abstract,
			Time:     n.Time,
			Status:   n.Status,
			Comment:  optionalString(n.Comment),
		}
		if err := upsert(tx, news); err != nil {
			return fmt.Errorf("failed to insert news %d: %w", n.ID, err)
		}
		run.report.News++
		if n.ID > maxID {
			maxID = n.ID
		}
	}
	run.advance(models.NewsModel{}.TableName(), maxID)
	return nil
}

func (m *Materializer) insertAssociations(tx *gorm.DB, res *collector.Result, _ map[uint]string, run *loadRun) error {
	for _, rel := range res.EventStackNews {
		link := &models.EventStackNewsModel{
			EventID: rel.EventID,
			StackID: rel.StackID,
			NewsID:  rel.NewsID,
		}
		if err := upsert(tx, link); err != nil {
			return fmt.Errorf("failed to link event %d stack %d news %d: %w",
				rel.EventID, rel.StackID, rel.NewsID, err)
		}
		run.report.StackLinks++
	}

	for _, rel := range res.EventTags {
		link := &models.EventTagModel{EventID: rel.EventID, TagID: rel.TagID}
		if err := upsert(tx, link); err != nil {
			return fmt.Errorf("failed to link event %d tag %d: %w", rel.EventID, rel.TagID, err)
		}
		run.report.TagLinks++
	}
	return nil
}

func (m *Materializer) insertHeaderImages(tx *gorm.DB, res *collector.Result, _ map[uint]string, run *loadRun) error {
	var maxID uint
	for _, h := range res.HeaderImages {
		image := &models.HeaderImageModel{
			ID:        h.ID,
			ImageURL:  h.ImageURL,
			Source:    h.Source,
			SourceURL: optionalString(h.SourceURL),
			EventID:   h.EventID,
		}
		if err := upsert(tx, image); err != nil {
			return fmt.Errorf("failed to insert header image %d: %w", h.ID, err)
		}
		run.report.HeaderImages++
		if h.ID > maxID {
			maxID = h.ID
		}
	}
	run.advance(models.HeaderImageModel{}.TableName(), maxID)
	return nil
}

// backfillLatestNews sets each event's latest admitted news reference, but
// only when the referenced news item was actually materialized. Dangling
// references are left null and counted, never failed on.
func (m *Materializer) backfillLatestNews(tx *gorm.DB, res *collector.Result, _ map[uint]string, run *loadRun) error {
	for _, id := range res.EventOrder {
		e := res.Events[id]
		if e.LatestAdmittedNewsID == 0 {
			continue
		}
		if _, ok := res.News[e.LatestAdmittedNewsID]; !ok {
			run.report.LatestNewsSkipped++
			m.logger.Debug("latest news reference not in scraped set, leaving null",
				"event_id", e.ID, "news_id", e.LatestAdmittedNewsID)
			continue
		}
		err := tx.Model(&models.EventModel{}).
			Where("id = ?", e.ID).
			Update("latest_admitted_news_id", e.LatestAdmittedNewsID).Error
		if err != nil {
			return fmt.Errorf("failed to backfill latest news for event %d: %w", e.ID, err)
		}
		run.report.LatestNewsUpdated++
	}
	return nil
}

func (m *Materializer) insertCommits(tx *gorm.DB, res *collector.Result, names map[uint]string, run *loadRun) error {
	// Commit ids are assigned sequentially in event-processing order, not
	// derived from source event ids.
	var nextID uint
	for _, eventID := range res.EventOrder {
		nextID++
		commit, err := m.buildCommit(res, res.Events[eventID], names, nextID)
		if err != nil {
			return err
		}
		if err := upsert(tx, commit); err != nil {
			return fmt.Errorf("failed to insert commit for event %d: %w", eventID, err)
		}
		run.report.Commits++
	}
	run.advance(models.CommitModel{}.TableName(), nextID)
	return nil
}

// ContributorIDs returns the distinct non-administrator owner ids in
// ascending order. The same ordering drives pseudonym assignment, pseudo
// client creation and ACL contributor roles.
func ContributorIDs(res *collector.Result) []uint {
	ids := make([]uint, 0, len(res.OwnerIDs))
	for id := range res.OwnerIDs {
		if id == models.AdminID {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedKeys[V any](m map[uint]V) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func resolveOwner(ownerID uint) uint {
	if ownerID == 0 {
		return models.AdminID
	}
	return ownerID
}

func stackOrder(s *collector.StackItem) int {
	if s.Order == nil {
		return -1
	}
	return *s.Order
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalID(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func randomSecret() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("materializer: crypto/rand unavailable: %v", err))
	}
	return hex.EncodeToString(buf)
}
