package videos

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"tubedeck/internal/cache"
	"tubedeck/internal/domain"
	"tubedeck/internal/storage"
)

const (
	// DefaultTTL is how long a channel's cached feed videos stay fresh in
	// the unified state.
	DefaultTTL = 30 * time.Minute

	// maxVideosPerChannel caps each channel's contribution to an aggregate.
	maxVideosPerChannel = 5
)

// CategoryVideos is the soft-failure result of a per-category aggregation.
type CategoryVideos struct {
	Videos []domain.AggregatedVideo `json:"videos"`
	Error  string                   `json:"error,omitempty"`
}

// Aggregator merges the recent uploads of every channel in a category into
// one recency-sorted sequence, consulting the per-channel cache before going
// to the network. One channel's fetch failure never fails the aggregate.
type Aggregator struct {
	states  *storage.StateStore
	feed    domain.FeedSource
	details domain.VideoDetails
	cache   *cache.Cache
	logger  *slog.Logger
	now     func() time.Time
	ttl     time.Duration
}

func NewAggregator(states *storage.StateStore, feed domain.FeedSource, details domain.VideoDetails, c *cache.Cache, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		states:  states,
		feed:    feed,
		details: details,
		cache:   c,
		logger:  logger,
		now:     time.Now,
		ttl:     DefaultTTL,
	}
}

// SetClock overrides the time source (test hook).
func (a *Aggregator) SetClock(now func() time.Time) { a.now = now }

// SetTTL overrides the cache freshness window.
func (a *Aggregator) SetTTL(ttl time.Duration) { a.ttl = ttl }

// LoadVideosForCategory returns the merged recent videos of every member
// channel, newest first. An unknown category yields an empty list with an
// error string, not a failure.
func (a *Aggregator) LoadVideosForCategory(ctx context.Context, categoryID string) (*CategoryVideos, error) {
	st, err := a.states.Load()
	if err != nil {
		return nil, err
	}

	cat, ok := st.Categories[categoryID]
	if !ok {
		return &CategoryVideos{Videos: []domain.AggregatedVideo{}, Error: "Category not found"}, nil
	}

	aggregate := []domain.AggregatedVideo{}
	refreshed := make(map[string]*domain.VideoCacheEntry)

	for _, channelID := range cat.ChannelIDs {
		ch, ok := st.Channels[channelID]
		if !ok {
			continue
		}

		entry := st.VideoCache[channelID]
		videos := []domain.Video{}
		if entry != nil {
			videos = entry.Videos
		}

		if !entry.Fresh(a.now(), a.ttl) {
			fetched, err := a.feed.FetchRecent(ctx, channelID)
			if err != nil {
				// Serve whatever was previously cached, possibly nothing.
				a.logger.Warn("feed fetch failed", "channelId", channelID, "error", err)
			} else {
				if len(fetched) > maxVideosPerChannel {
					fetched = fetched[:maxVideosPerChannel]
				}
				videos = fetched
				fresh := &domain.VideoCacheEntry{FetchedAt: a.now().UnixMilli(), Videos: fetched}
				st.VideoCache[channelID] = fresh
				refreshed[channelID] = fresh
			}
		}

		for i, v := range videos {
			if i >= maxVideosPerChannel {
				break
			}
			aggregate = append(aggregate, domain.AggregatedVideo{
				Video:        v,
				ChannelID:    channelID,
				ChannelTitle: ch.Title,
			})
		}
	}

	sort.SliceStable(aggregate, func(i, j int) bool {
		return aggregate[i].PublishedTime().After(aggregate[j].PublishedTime())
	})

	// Persist the refreshed cache entries once, merged into the current
	// state so a concurrent category mutation is not clobbered by this
	// aggregation's snapshot.
	if len(refreshed) > 0 {
		err := a.states.Update(func(cur *domain.State) error {
			for channelID, entry := range refreshed {
				cur.VideoCache[channelID] = entry
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return &CategoryVideos{Videos: aggregate}, nil
}
