// Package transfer validates imported state blobs and produces the
// user-facing export document. Imports fail closed: a payload that does not
// validate is rejected before anything is written, and a valid payload
// wholesale-replaces the persisted root.
package transfer

import (
	"encoding/json"

	"tubedeck/internal/domain"
)

// ExportDocument is what users download: categories and channels only. The
// video cache is transient and deliberately left out, matching the original
// export format.
type ExportDocument struct {
	Categories map[string]*domain.Category `json:"categories"`
	Channels   map[string]*domain.Channel  `json:"channels"`
}

// Export builds the export document from a state snapshot.
func Export(st *domain.State) *ExportDocument {
	return &ExportDocument{Categories: st.Categories, Channels: st.Channels}
}

// Validate shape-checks a raw import payload and returns the normalized
// State. The check is shallow: categories and channels must be present
// non-null objects; videoCache is kept when it is a valid object and
// defaulted empty otherwise. Dangling category/channel references are
// repaired (pruned from both sides) so the symmetry invariant holds after
// import.
func Validate(raw json.RawMessage) (*domain.State, error) {
	if len(raw) == 0 {
		return nil, domain.ErrInvalidImport
	}

	var shape struct {
		Categories json.RawMessage `json:"categories"`
		Channels   json.RawMessage `json:"channels"`
		VideoCache json.RawMessage `json:"videoCache"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, domain.ErrInvalidImport
	}
	if !isObject(shape.Categories) || !isObject(shape.Channels) {
		return nil, domain.ErrInvalidImport
	}

	st := domain.EmptyState()
	if err := json.Unmarshal(shape.Categories, &st.Categories); err != nil {
		return nil, domain.ErrInvalidImport
	}
	if err := json.Unmarshal(shape.Channels, &st.Channels); err != nil {
		return nil, domain.ErrInvalidImport
	}
	if isObject(shape.VideoCache) {
		if err := json.Unmarshal(shape.VideoCache, &st.VideoCache); err != nil {
			st.VideoCache = make(map[string]*domain.VideoCacheEntry)
		}
	}
	st.Init()

	repair(st)
	return st, nil
}

func isObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

// repair prunes references to ids missing from the other table, restoring
// category/channel symmetry in tolerant-but-consistent fashion.
func repair(st *domain.State) {
	for _, cat := range st.Categories {
		kept := cat.ChannelIDs[:0]
		for _, channelID := range cat.ChannelIDs {
			ch, ok := st.Channels[channelID]
			if !ok {
				continue
			}
			kept = append(kept, channelID)
			if !ch.InCategory(cat.ID) {
				ch.Categories = append(ch.Categories, cat.ID)
			}
		}
		cat.ChannelIDs = kept
		if cat.ChannelIDs == nil {
			cat.ChannelIDs = []string{}
		}
	}

	for _, ch := range st.Channels {
		kept := ch.Categories[:0]
		for _, catID := range ch.Categories {
			cat, ok := st.Categories[catID]
			if !ok {
				continue
			}
			if !cat.HasChannel(ch.ChannelID) {
				continue
			}
			kept = append(kept, catID)
		}
		ch.Categories = kept
		if ch.Categories == nil {
			ch.Categories = []string{}
		}
	}
}
