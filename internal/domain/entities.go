package domain

import "time"

// Category is a user-defined named grouping of channels.
// Names are unique under normalized (trimmed, lowercased) comparison;
// the stored name keeps the user's original casing.
type Category struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	CreatedAt  int64    `json:"createdAt"` // Unix milliseconds
	Order      int      `json:"order"`     // display position, ascending
	ChannelIDs []string `json:"channelIds"`
}

// HasChannel reports whether the channel is already a member of the category.
func (c *Category) HasChannel(channelID string) bool {
	for _, id := range c.ChannelIDs {
		if id == channelID {
			return true
		}
	}
	return false
}

// Channel is an externally-sourced creator identified by its platform id.
// Categories is kept symmetric with each Category.ChannelIDs: both sides
// are always updated together.
type Channel struct {
	ChannelID  string   `json:"channelId"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Categories []string `json:"categories"`
	AddedAt    int64    `json:"addedAt"` // Unix milliseconds
}

// InCategory reports whether the channel records membership in the category.
func (c *Channel) InCategory(categoryID string) bool {
	for _, id := range c.Categories {
		if id == categoryID {
			return true
		}
	}
	return false
}

// ChannelInfo is the lightweight channel description produced by a resolver
// or supplied by a caller when attaching a channel to a category.
type ChannelInfo struct {
	ChannelID string `json:"channelId"`
	Title     string `json:"title"`
	URL       string `json:"url"`
}

// Video is a normalized recent-feed item for a single channel.
type Video struct {
	VideoID     string `json:"videoId"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"` // RFC3339, as reported by the feed
	Thumbnail   string `json:"thumbnail"`
}

// PublishedTime parses PublishedAt, returning the zero time when unparseable
// so broken timestamps sort last in recency order.
func (v Video) PublishedTime() time.Time {
	t, err := time.Parse(time.RFC3339, v.PublishedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// AggregatedVideo is a Video enriched with its owning channel, as returned
// by the per-category aggregation.
type AggregatedVideo struct {
	Video
	ChannelID    string `json:"channelId"`
	ChannelTitle string `json:"channelTitle"`
}

// VideoCacheEntry holds the most recent feed videos for one channel.
// Entries older than the store TTL are stale and eligible for refetch, but
// remain usable as a fallback when the refetch fails.
type VideoCacheEntry struct {
	FetchedAt int64   `json:"fetchedAt"` // Unix milliseconds
	Videos    []Video `json:"videos"`
}

// Fresh reports whether the entry is younger than ttl at the given instant.
func (e *VideoCacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	if e == nil {
		return false
	}
	age := now.UnixMilli() - e.FetchedAt
	return age >= 0 && time.Duration(age)*time.Millisecond < ttl
}

// State is the single persisted root: every operation loads it, mutates it,
// and writes it back as one blob. No in-memory copy is trusted between
// requests.
type State struct {
	Categories map[string]*Category        `json:"categories"`
	Channels   map[string]*Channel         `json:"channels"`
	VideoCache map[string]*VideoCacheEntry `json:"videoCache"`
}

// EmptyState returns a new State with all maps initialized.
func EmptyState() *State {
	return &State{
		Categories: make(map[string]*Category),
		Channels:   make(map[string]*Channel),
		VideoCache: make(map[string]*VideoCacheEntry),
	}
}

// Init replaces any nil maps so deserialized states are always safe to use.
func (s *State) Init() {
	if s.Categories == nil {
		s.Categories = make(map[string]*Category)
	}
	if s.Channels == nil {
		s.Channels = make(map[string]*Channel)
	}
	if s.VideoCache == nil {
		s.VideoCache = make(map[string]*VideoCacheEntry)
	}
}
