package domain

import (
	"context"
	"time"
)

// KV is the injected key-value persistence primitive. Values are opaque
// blobs; there are no transactions and no versioning.
type KV interface {
	// Get returns the value for key, with false when the key is absent.
	Get(key string) ([]byte, bool, error)

	// Put stores value under key, overwriting any previous value.
	Put(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Keys returns all stored keys beginning with prefix.
	Keys(prefix string) ([]string, error)

	Close() error
}

// FeedSource fetches a channel's recent uploads from the remote platform.
type FeedSource interface {
	// FetchRecent returns the channel's most recent videos, newest first,
	// capped at the source's return limit.
	FetchRecent(ctx context.Context, channelID string) ([]Video, error)

	// ChannelTitle returns the channel's current display name.
	ChannelTitle(ctx context.Context, channelID string) (string, error)
}

// ChannelResolver derives a channel from an arbitrary page URL.
// A nil result with nil error means nothing could be resolved; that is
// normal control flow, not a failure.
type ChannelResolver interface {
	Resolve(ctx context.Context, pageURL string) (*ChannelInfo, error)
}

// VideoDetails looks up per-video metadata not present in feeds.
type VideoDetails interface {
	// Durations returns the runtime for each requested video id. Ids absent
	// from the result have unknown duration and are treated as zero.
	Durations(ctx context.Context, videoIDs []string) (map[string]time.Duration, error)
}
