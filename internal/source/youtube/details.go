package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// detailsBatchSize is the Data API's per-request id limit.
const detailsBatchSize = 50

// DetailsClient implements domain.VideoDetails using the YouTube Data API
// v3. Feeds carry no runtime information, so the long-form filter needs
// this secondary lookup.
type DetailsClient struct {
	service *yt.Service
	logger  *slog.Logger
}

func NewDetailsClient(ctx context.Context, apiKey string, logger *slog.Logger) (*DetailsClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	service, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &DetailsClient{service: service, logger: logger}, nil
}

// Durations returns the runtime for each requested video. Ids missing from
// the API response are simply absent from the result.
func (c *DetailsClient) Durations(ctx context.Context, videoIDs []string) (map[string]time.Duration, error) {
	durations := make(map[string]time.Duration, len(videoIDs))

	for start := 0; start < len(videoIDs); start += detailsBatchSize {
		end := start + detailsBatchSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}

		resp, err := c.service.Videos.
			List([]string{"contentDetails"}).
			Id(videoIDs[start:end]...).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("videos.list: %w", err)
		}

		for _, item := range resp.Items {
			if item.ContentDetails == nil {
				continue
			}
			durations[item.Id] = ParseDuration(item.ContentDetails.Duration)
		}
	}

	c.logger.Debug("fetched video durations", "requested", len(videoIDs), "resolved", len(durations))
	return durations, nil
}
