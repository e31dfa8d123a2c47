package materializer

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"waveline/internal/collector"
	"waveline/internal/identity"
	"waveline/internal/infrastructure/persistence/models"
)

// Snapshot is the denormalized commit document: an event's full state at
// migration time.
type Snapshot struct {
	EventID     uint                 `json:"eventId"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      string               `json:"status"`
	StackCount  int                  `json:"stackCount"`
	NewsCount   int                  `json:"newsCount"`
	Owner       OwnerSnapshot        `json:"owner"`
	Tags        []TagSnapshot        `json:"tags,omitempty"`
	HeaderImage *HeaderImageSnapshot `json:"headerImage,omitempty"`
	LatestNews  *NewsSnapshot        `json:"latestNews,omitempty"`
	Stacks      []StackSnapshot      `json:"stacks"`
}

type OwnerSnapshot struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type StackSnapshot struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Order       int            `json:"order"`
	Time        *time.Time     `json:"time,omitempty"`
	NewsCount   int            `json:"newsCount"`
	News        []NewsSnapshot `json:"news"`
}

type NewsSnapshot struct {
	ID       uint       `json:"id"`
	URL      string     `json:"url,omitempty"`
	Source   string     `json:"source,omitempty"`
	Title    string     `json:"title"`
	Abstract string     `json:"abstract,omitempty"`
	Time     *time.Time `json:"time,omitempty"`
}

type TagSnapshot struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type HeaderImageSnapshot struct {
	ID       uint   `json:"id"`
	ImageURL string `json:"imageUrl"`
	Source   string `json:"source,omitempty"`
}

// buildCommit assembles the snapshot document for one event and wraps it
// in a CommitModel with the indexed scalar fields.
func (m *Materializer) buildCommit(res *collector.Result, e *collector.EventItem, names map[uint]string, commitID uint) (*models.CommitModel, error) {
	snap := Snapshot{
		EventID:     e.ID,
		Name:        e.Name,
		Description: e.Description,
		Status:      defaultString(e.Status, models.EventStatusPending),
		Owner:       m.ownerSnapshot(resolveOwner(e.OwnerID), names),
		Stacks:      buildStackSnapshots(res, e.ID),
	}
	snap.StackCount = len(snap.Stacks)
	for i := range snap.Stacks {
		snap.NewsCount += snap.Stacks[i].NewsCount
	}

	for _, rel := range res.EventTags {
		if rel.EventID != e.ID {
			continue
		}
		if t, ok := res.Tags[rel.TagID]; ok {
			snap.Tags = append(snap.Tags, TagSnapshot{ID: t.ID, Name: t.Name})
		}
	}

	for i := range res.HeaderImages {
		if res.HeaderImages[i].EventID == e.ID {
			h := &res.HeaderImages[i]
			snap.HeaderImage = &HeaderImageSnapshot{ID: h.ID, ImageURL: h.ImageURL, Source: h.Source}
			break
		}
	}

	if e.LatestAdmittedNewsID != 0 {
		if n, ok := res.News[e.LatestAdmittedNewsID]; ok {
			snap.LatestNews = newsSnapshot(n)
		}
	}

	content, err := json.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal commit snapshot for event %d: %w", e.ID, err)
	}

	return &models.CommitModel{
		ID:       commitID,
		Summary:  truncate(fmt.Sprintf("Initial import of %s", e.Name), 255),
		Time:     commitTimeOfDay(&snap, e),
		AuthorID: resolveOwner(e.OwnerID),
		EventID:  e.ID,
		Content:  content,
	}, nil
}

func (m *Materializer) ownerSnapshot(ownerID uint, names map[uint]string) OwnerSnapshot {
	if ownerID == models.AdminID {
		return OwnerSnapshot{
			ID:       models.AdminID,
			Username: m.admin.Username,
			Name:     m.admin.Username,
			Role:     models.RoleAdmin,
		}
	}
	pseudonym := names[ownerID]
	return OwnerSnapshot{
		ID:       ownerID,
		Username: identity.Username(pseudonym),
		Name:     pseudonym,
		Role:     models.RoleContributor,
	}
}

// buildStackSnapshots returns the event's stacks sorted by ascending order
// field (ties by id), each with its news sorted by descending time.
func buildStackSnapshots(res *collector.Result, eventID uint) []StackSnapshot {
	var stacks []*collector.StackItem
	for _, id := range sortedKeys(res.Stacks) {
		if res.Stacks[id].EventID == eventID {
			stacks = append(stacks, res.Stacks[id])
		}
	}
	sort.SliceStable(stacks, func(i, j int) bool {
		return stackOrder(stacks[i]) < stackOrder(stacks[j])
	})

	snapshots := make([]StackSnapshot, 0, len(stacks))
	for _, s := range stacks {
		snap := StackSnapshot{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Order:       stackOrder(s),
			Time:        s.Time,
			News:        stackNews(res, eventID, s.ID),
		}
		snap.NewsCount = len(snap.News)
		snapshots = append(snapshots, snap)
	}
	return snapshots
}

// stackNews resolves the news linked to one stack of one event, newest
// first. News without a time sorts last.
func stackNews(res *collector.Result, eventID, stackID uint) []NewsSnapshot {
	var items []NewsSnapshot
	for _, rel := range res.EventStackNews {
		if rel.EventID != eventID || rel.StackID != stackID {
			continue
		}
		if n, ok := res.News[rel.NewsID]; ok {
			items = append(items, *newsSnapshot(n))
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return newsTime(items[i].Time).After(newsTime(items[j].Time))
	})
	if items == nil {
		items = []NewsSnapshot{}
	}
	return items
}

func newsSnapshot(n *collector.NewsItem) *NewsSnapshot {
	return &NewsSnapshot{
		ID:       n.ID,
		URL:      n.URL,
		Source:   n.Source,
		Title:    n.Title,
		Abstract: n.Abstract,
		Time:     n.Time,
	}
}

func newsTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// commitTimeOfDay picks the commit's time-of-day scalar: the first stack's
// time, else the first stack's first news's time, else the latest admitted
// news's time, else the event's own update time.
func commitTimeOfDay(snap *Snapshot, e *collector.EventItem) string {
	if len(snap.Stacks) > 0 {
		first := &snap.Stacks[0]
		if first.Time != nil {
			return first.Time.Format("15:04:05")
		}
		if len(first.News) > 0 && first.News[0].Time != nil {
			return first.News[0].Time.Format("15:04:05")
		}
	}
	if snap.LatestNews != nil && snap.LatestNews.Time != nil {
		return snap.LatestNews.Time.Format("15:04:05")
	}
	if e.UpdatedAt != nil {
		return e.UpdatedAt.Format("15:04:05")
	}
	return time.Now().Format("15:04:05")
}

// truncate shortens s to at most max bytes without splitting a rune, so
// the result stays valid UTF-8 for strict utf8mb4 columns.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
