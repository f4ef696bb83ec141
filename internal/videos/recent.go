package videos

import (
	"context"
	"sort"
	"time"

	"tubedeck/internal/cache"
	"tubedeck/internal/domain"
)

// MinLongFormDuration is the floor below which items are excluded from
// recent long-form results. Unknown and zero durations count as zero and
// are excluded too.
const MinLongFormDuration = 70 * time.Second

// RecentLongFormVideos fetches recent uploads for the given channels
// directly, without a category. Feeds go through the namespaced TTL cache;
// the duration lookup is never cached. Items shorter than the long-form
// floor are dropped, each channel is capped, and the union is sorted by
// recency.
func (a *Aggregator) RecentLongFormVideos(ctx context.Context, channelIDs []string) ([]domain.AggregatedVideo, error) {
	st, err := a.states.Load()
	if err != nil {
		return nil, err
	}

	aggregate := []domain.AggregatedVideo{}

	for _, channelID := range channelIDs {
		var feedVideos []domain.Video
		if !a.cache.Get(cache.NamespaceFeed, channelID, &feedVideos) {
			fetched, err := a.feed.FetchRecent(ctx, channelID)
			if err != nil {
				a.logger.Warn("feed fetch failed", "channelId", channelID, "error", err)
				continue
			}
			feedVideos = fetched
			a.cache.Set(cache.NamespaceFeed, channelID, feedVideos)
		}
		if len(feedVideos) == 0 {
			continue
		}

		kept, err := a.filterLongForm(ctx, feedVideos)
		if err != nil {
			a.logger.Warn("video details lookup failed", "channelId", channelID, "error", err)
			continue
		}
		if len(kept) > maxVideosPerChannel {
			kept = kept[:maxVideosPerChannel]
		}

		title := channelID
		if ch, ok := st.Channels[channelID]; ok && ch.Title != "" {
			title = ch.Title
		}
		for _, v := range kept {
			aggregate = append(aggregate, domain.AggregatedVideo{
				Video:        v,
				ChannelID:    channelID,
				ChannelTitle: title,
			})
		}
	}

	sort.SliceStable(aggregate, func(i, j int) bool {
		return aggregate[i].PublishedTime().After(aggregate[j].PublishedTime())
	})
	return aggregate, nil
}

// filterLongForm drops videos with a known or presumed duration under the
// long-form floor.
func (a *Aggregator) filterLongForm(ctx context.Context, videos []domain.Video) ([]domain.Video, error) {
	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.VideoID)
	}

	durations, err := a.details.Durations(ctx, ids)
	if err != nil {
		return nil, err
	}

	kept := make([]domain.Video, 0, len(videos))
	for _, v := range videos {
		if durations[v.VideoID] >= MinLongFormDuration {
			kept = append(kept, v)
		}
	}
	return kept, nil
}
