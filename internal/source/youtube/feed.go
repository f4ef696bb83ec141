// Package youtube implements the external YouTube collaborators: the
// channel upload feed, the channel resolver, and the video details lookup.
package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"tubedeck/internal/domain"
)

const (
	feedURLTemplate = "https://www.youtube.com/feeds/videos.xml?channel_id=%s"
	defaultTimeout  = 30 * time.Second
	maxFeedVideos   = 5
)

// FeedClient implements domain.FeedSource over YouTube's per-channel Atom
// feeds. Feeds carry roughly the 15 most recent uploads; results are capped
// to the aggregation limit.
type FeedClient struct {
	parser  *gofeed.Parser
	baseURL string // overridable for tests
	logger  *slog.Logger
}

func NewFeedClient(logger *slog.Logger) *FeedClient {
	if logger == nil {
		logger = slog.Default()
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: defaultTimeout}
	parser.UserAgent = "tubedeck/1.0"
	return &FeedClient{parser: parser, logger: logger}
}

// SetBaseURL points the client at an alternate feed endpoint (test hook).
func (c *FeedClient) SetBaseURL(base string) {
	c.baseURL = base
}

func (c *FeedClient) feedURL(channelID string) string {
	if c.baseURL != "" {
		return fmt.Sprintf("%s?channel_id=%s", c.baseURL, url.QueryEscape(channelID))
	}
	return fmt.Sprintf(feedURLTemplate, url.QueryEscape(channelID))
}

// FetchRecent returns the channel's most recent uploads, newest first as the
// feed reports them, capped to the per-channel limit.
func (c *FeedClient) FetchRecent(ctx context.Context, channelID string) ([]domain.Video, error) {
	feed, err := c.parser.ParseURLWithContext(c.feedURL(channelID), ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed for %s: %w", channelID, err)
	}

	videos := make([]domain.Video, 0, maxFeedVideos)
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		videos = append(videos, itemToVideo(item))
		if len(videos) == maxFeedVideos {
			break
		}
	}

	c.logger.Debug("fetched feed", "channelId", channelID, "videos", len(videos))
	return videos, nil
}

// ChannelTitle returns the channel's display name from its feed author.
func (c *FeedClient) ChannelTitle(ctx context.Context, channelID string) (string, error) {
	feed, err := c.parser.ParseURLWithContext(c.feedURL(channelID), ctx)
	if err != nil {
		return "", fmt.Errorf("fetch feed for %s: %w", channelID, err)
	}

	for _, author := range feed.Authors {
		if author != nil && strings.TrimSpace(author.Name) != "" {
			return strings.TrimSpace(author.Name), nil
		}
	}
	if title := strings.TrimSpace(feed.Title); title != "" {
		return title, nil
	}
	return "", fmt.Errorf("feed for %s carries no channel name", channelID)
}

func itemToVideo(item *gofeed.Item) domain.Video {
	videoID := extensionValue(item, "yt", "videoId")
	if videoID == "" {
		videoID = videoIDFromLink(item.Link)
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "Untitled"
	}

	link := item.Link
	if link == "" && videoID != "" {
		link = "https://www.youtube.com/watch?v=" + videoID
	}

	published := item.Published
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.Format(time.RFC3339)
	} else if published == "" {
		published = time.Now().UTC().Format(time.RFC3339)
	}

	thumbnail := mediaThumbnail(item)
	if thumbnail == "" && videoID != "" {
		thumbnail = fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID)
	}

	return domain.Video{
		VideoID:     videoID,
		Title:       title,
		URL:         link,
		PublishedAt: published,
		Thumbnail:   thumbnail,
	}
}

// extensionValue digs a simple element value out of the item's namespaced
// extensions (e.g. yt:videoId).
func extensionValue(item *gofeed.Item, space, name string) string {
	exts, ok := item.Extensions[space]
	if !ok {
		return ""
	}
	for _, ext := range exts[name] {
		if v := strings.TrimSpace(ext.Value); v != "" {
			return v
		}
	}
	return ""
}

// mediaThumbnail extracts the media:group/media:thumbnail URL.
func mediaThumbnail(item *gofeed.Item) string {
	media, ok := item.Extensions["media"]
	if !ok {
		return ""
	}
	for _, group := range media["group"] {
		for _, thumb := range group.Children["thumbnail"] {
			if u := thumb.Attrs["url"]; u != "" {
				return u
			}
		}
	}
	for _, thumb := range media["thumbnail"] {
		if u := thumb.Attrs["url"]; u != "" {
			return u
		}
	}
	return ""
}

func videoIDFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	return ""
}
