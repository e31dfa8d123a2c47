// Package collector scrapes the hierarchical event dataset from the
// remote read-only API and normalizes it into a deduplicated in-memory
// entity graph.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Collector pages through the source list endpoint, then fetches every
// discovered event's detail payload, sequentially. Requests never fan out
// concurrently: later harvested rows reference earlier ones by id and the
// remote service throttles parallel callers.
type Collector struct {
	client    *Client
	pageLimit int
	logger    *slog.Logger
}

func NewCollector(client *Client, pageLimit int, logger *slog.Logger) *Collector {
	if pageLimit <= 0 {
		pageLimit = 1000
	}
	return &Collector{client: client, pageLimit: pageLimit, logger: logger}
}

// listEnvelope is the wrapped form of a list page. Some deployments return
// a bare array instead.
type listEnvelope struct {
	Data []EventItem `json:"data"`
}

// Collect runs the full scrape and returns the entity graph. A failed list
// page ends pagination gracefully; a failed detail fetch skips that
// event's nested data but keeps the event itself.
func (c *Collector) Collect(ctx context.Context) (*Result, error) {
	result := newResult()

	for page := 1; page <= c.pageLimit; page++ {
		items, err := c.fetchPage(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("list page fetch failed, treating as end of input",
				"page", page, "error", err)
			break
		}
		if len(items) == 0 {
			c.logger.Debug("empty page reached, pagination complete", "page", page)
			break
		}

		for i := range items {
			result.addEvent(&items[i])
		}
	}

	c.logger.Info("list phase complete",
		"events", len(result.Events), "tags", len(result.Tags))

	for _, eventID := range result.EventOrder {
		if err := c.fetchDetail(ctx, eventID, result); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("detail fetch failed, skipping nested data",
				"event_id", eventID, "error", err)
		}
	}

	c.logger.Info("collection complete",
		"events", len(result.Events),
		"stacks", len(result.Stacks),
		"news", len(result.News),
		"tags", len(result.Tags),
		"owners", len(result.OwnerIDs))

	return result, nil
}

// fetchPage fetches one list page. The payload is either a bare array or
// an envelope with a data field.
func (c *Collector) fetchPage(ctx context.Context, page int) ([]EventItem, error) {
	var raw json.RawMessage
	if err := c.client.GetJSON(ctx, fmt.Sprintf("/events?page=%d", page), &raw); err != nil {
		return nil, err
	}

	var items []EventItem
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var envelope listEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("unrecognized list payload for page %d: %w", page, err)
	}
	return envelope.Data, nil
}

// fetchDetail fetches one event's detail payload and harvests its nested
// stacks, news, off-shelf news, tags and header image. The detail payload
// is authoritative: it overwrites the list phase's entry for the same id.
func (c *Collector) fetchDetail(ctx context.Context, eventID uint, result *Result) error {
	var detail EventItem
	if err := c.client.GetJSON(ctx, fmt.Sprintf("/events/%d", eventID), &detail); err != nil {
		return err
	}
	if detail.ID == 0 {
		detail.ID = eventID
	}

	result.addEvent(&detail)

	for i := range detail.Stacks {
		stack := &detail.Stacks[i]
		stack.EventID = eventID
		result.Stacks[stack.ID] = stack

		for j := range stack.News {
			result.addNews(&stack.News[j], eventID, stack.ID)
		}
	}

	for i := range detail.OffshelfNews {
		result.addNews(&detail.OffshelfNews[i], eventID, 0)
	}

	return nil
}
