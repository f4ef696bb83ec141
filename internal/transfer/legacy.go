package transfer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"tubedeck/internal/domain"
)

// LegacyChannel is the lightweight channel record of the earlier flat
// persisted layout.
type LegacyChannel struct {
	ChannelID string `json:"channelId"`
	Title     string `json:"title"`
	URL       string `json:"url"`
}

// legacyDocument is the earlier schema generation: category name mapped to
// its channel list, with a parallel list giving category display order.
type legacyDocument struct {
	Categories map[string][]LegacyChannel `json:"categories"`
	Order      []string                   `json:"order"`
}

// ConvertLegacy translates a flat-layout export into the normalized graph.
// It returns (nil, false) when the payload is not the legacy shape, so
// callers can fall back to Validate. The flat layout is import-only; it is
// never written back.
func ConvertLegacy(raw json.RawMessage) (*domain.State, bool) {
	var doc legacyDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	if len(doc.Categories) == 0 {
		return nil, false
	}
	// The normalized layout also has a "categories" object, but its values
	// are category records, not channel arrays; only accept the legacy
	// shape when every value decoded as a channel list.
	for name, channels := range doc.Categories {
		if name == "" {
			return nil, false
		}
		for _, ch := range channels {
			if ch.ChannelID == "" {
				return nil, false
			}
		}
	}

	st := domain.EmptyState()
	now := time.Now().UnixMilli()

	orderOf := make(map[string]int, len(doc.Order))
	for i, name := range doc.Order {
		orderOf[name] = i + 1
	}
	next := len(doc.Order)

	for name, channels := range doc.Categories {
		order, ok := orderOf[name]
		if !ok {
			next++
			order = next
		}
		cat := &domain.Category{
			ID:         uuid.NewString(),
			Name:       name,
			CreatedAt:  now,
			Order:      order,
			ChannelIDs: []string{},
		}
		st.Categories[cat.ID] = cat

		for _, lc := range channels {
			ch, ok := st.Channels[lc.ChannelID]
			if !ok {
				ch = &domain.Channel{
					ChannelID:  lc.ChannelID,
					Title:      lc.Title,
					URL:        lc.URL,
					Categories: []string{},
					AddedAt:    now,
				}
				st.Channels[lc.ChannelID] = ch
			}
			if !cat.HasChannel(lc.ChannelID) {
				cat.ChannelIDs = append(cat.ChannelIDs, lc.ChannelID)
				ch.Categories = append(ch.Categories, cat.ID)
			}
		}
	}

	return st, true
}
