package collector

import "time"

// EventItem is an event as returned by the source API. The list endpoint
// carries a subset; the detail endpoint adds stacks and off-shelf news.
type EventItem struct {
	ID                   uint             `json:"id"`
	Name                 string           `json:"name"`
	Pinyin               string           `json:"pinyin"`
	Description          string           `json:"description"`
	Status               string           `json:"status"`
	NeedContributor      bool             `json:"needContributor"`
	OwnerID              uint             `json:"ownerId"`
	ParentID             uint             `json:"parentId"`
	LatestAdmittedNewsID uint             `json:"latestAdmittedNewsId"`
	CreatedAt            *time.Time       `json:"createdAt"`
	UpdatedAt            *time.Time       `json:"updatedAt"`
	HeaderImage          *HeaderImageItem `json:"headerImage"`
	Tags                 []TagItem        `json:"tags"`
	Stacks               []StackItem      `json:"stacks"`
	OffshelfNews         []NewsItem       `json:"offshelfNews"`
}

// StackItem is an ordered grouping of news inside one event. EventID is
// annotated by the collector from the owning detail payload.
type StackItem struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Order        *int       `json:"order"`
	Time         *time.Time `json:"time"`
	StackEventID uint       `json:"stackEventId"`
	News         []NewsItem `json:"news"`
	EventID      uint       `json:"-"`
}

type NewsItem struct {
	ID        uint       `json:"id"`
	URL       string     `json:"url"`
	Source    string     `json:"source"`
	Title     string     `json:"title"`
	Abstract  string     `json:"abstract"`
	Time      *time.Time `json:"time"`
	Status    string     `json:"status"`
	Comment   string     `json:"comment"`
	CreatedAt *time.Time `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

type TagItem struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	Path         string `json:"path"`
	RedirectToID uint   `json:"redirectTo"`
	ParentID     uint   `json:"parentId"`
	Status       string `json:"status"`
}

type HeaderImageItem struct {
	ID        uint   `json:"id"`
	ImageURL  string `json:"imageUrl"`
	Source    string `json:"source"`
	SourceURL string `json:"sourceUrl"`
	EventID   uint   `json:"eventId"`
}

// EventStackNewsRel links an event, a stack and a news item. StackID 0
// marks off-shelf news attached to no stack.
type EventStackNewsRel struct {
	EventID uint
	StackID uint
	NewsID  uint
}

// EventTagRel links an event to a tag.
type EventTagRel struct {
	EventID uint
	TagID   uint
}

// Result is the deduplicated entity graph produced by one collection run.
// Maps are keyed by source-assigned id with last-write-wins semantics;
// relation slices are append-with-dedup.
type Result struct {
	Events     map[uint]*EventItem
	EventOrder []uint
	Stacks     map[uint]*StackItem
	News       map[uint]*NewsItem
	Tags       map[uint]*TagItem

	HeaderImages   []HeaderImageItem
	EventStackNews []EventStackNewsRel
	EventTags      []EventTagRel

	OwnerIDs map[uint]struct{}

	seenHeaderImages map[uint]struct{}
	seenStackNews    map[EventStackNewsRel]struct{}
	seenEventTags    map[EventTagRel]struct{}
}

func newResult() *Result {
	return &Result{
		Events:           make(map[uint]*EventItem),
		Stacks:           make(map[uint]*StackItem),
		News:             make(map[uint]*NewsItem),
		Tags:             make(map[uint]*TagItem),
		OwnerIDs:         make(map[uint]struct{}),
		seenHeaderImages: make(map[uint]struct{}),
		seenStackNews:    make(map[EventStackNewsRel]struct{}),
		seenEventTags:    make(map[EventTagRel]struct{}),
	}
}

// addEvent records an event and opportunistically harvests its embedded
// owner id, tags and header image. A later write for the same id replaces
// the earlier one but keeps its position in EventOrder.
func (r *Result) addEvent(e *EventItem) {
	if _, ok := r.Events[e.ID]; !ok {
		r.EventOrder = append(r.EventOrder, e.ID)
	}
	r.Events[e.ID] = e

	if e.OwnerID != 0 {
		r.OwnerIDs[e.OwnerID] = struct{}{}
	}
	for i := range e.Tags {
		r.addTag(&e.Tags[i], e.ID)
	}
	if e.HeaderImage != nil {
		r.addHeaderImage(e.HeaderImage, e.ID)
	}
}

func (r *Result) addTag(t *TagItem, eventID uint) {
	r.Tags[t.ID] = t
	rel := EventTagRel{EventID: eventID, TagID: t.ID}
	if _, ok := r.seenEventTags[rel]; !ok {
		r.seenEventTags[rel] = struct{}{}
		r.EventTags = append(r.EventTags, rel)
	}
}

func (r *Result) addHeaderImage(h *HeaderImageItem, eventID uint) {
	if h.EventID == 0 {
		h.EventID = eventID
	}
	if _, ok := r.seenHeaderImages[h.ID]; ok {
		return
	}
	r.seenHeaderImages[h.ID] = struct{}{}
	r.HeaderImages = append(r.HeaderImages, *h)
}

func (r *Result) addNews(n *NewsItem, eventID, stackID uint) {
	r.News[n.ID] = n
	rel := EventStackNewsRel{EventID: eventID, StackID: stackID, NewsID: n.ID}
	if _, ok := r.seenStackNews[rel]; !ok {
		r.seenStackNews[rel] = struct{}{}
		r.EventStackNews = append(r.EventStackNews, rel)
	}
}
