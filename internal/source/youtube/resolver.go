package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"

	"tubedeck/internal/domain"
)

const (
	oembedURLTemplate = "https://www.youtube.com/oembed?url=%s&format=json"
	fallbackTitle     = "YouTube Creator"
)

var (
	reChannelPath = regexp.MustCompile(`channel/([^/]+)`)
	reUserPath    = regexp.MustCompile(`user/([^/]+)`)
	reCustomPath  = regexp.MustCompile(`c/([^/]+)`)

	reChannelID    = regexp.MustCompile(`"channelId":"(UC[^"]+)"`)
	reChannelName  = regexp.MustCompile(`"channelName":"([^"]+)"`)
	reOwnerName    = regexp.MustCompile(`"ownerChannelName":"([^"]+)"`)
	reMetaItemName = regexp.MustCompile(`<meta itemprop="name" content="([^"]+)"`)
)

// Resolver implements domain.ChannelResolver: best-effort channel discovery
// from a watch-page URL. oEmbed is tried first; a page scrape is the
// fallback. Both failing is normal control flow and yields nil, nil.
type Resolver struct {
	httpClient *http.Client
	oembedBase string // overridable for tests
	logger     *slog.Logger
}

func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

// SetOEmbedBase points the resolver at an alternate oEmbed endpoint (test
// hook).
func (r *Resolver) SetOEmbedBase(base string) {
	r.oembedBase = base
}

// Resolve returns the channel behind the page URL, or nil when nothing
// could be determined.
func (r *Resolver) Resolve(ctx context.Context, pageURL string) (*domain.ChannelInfo, error) {
	if ch := r.resolveOEmbed(ctx, pageURL); ch != nil {
		return ch, nil
	}
	if ch := r.resolvePageScrape(ctx, pageURL); ch != nil {
		return ch, nil
	}
	r.logger.Debug("channel resolution failed", "url", pageURL)
	return nil, nil
}

func (r *Resolver) resolveOEmbed(ctx context.Context, pageURL string) *domain.ChannelInfo {
	endpoint := fmt.Sprintf(oembedURLTemplate, url.QueryEscape(pageURL))
	if r.oembedBase != "" {
		endpoint = fmt.Sprintf("%s?url=%s&format=json", r.oembedBase, url.QueryEscape(pageURL))
	}

	body, ok := r.fetch(ctx, endpoint)
	if !ok {
		return nil
	}

	var data struct {
		AuthorURL  string `json:"author_url"`
		AuthorName string `json:"author_name"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil
	}

	channelID := firstMatch(data.AuthorURL, reChannelPath, reUserPath, reCustomPath)
	if channelID == "" {
		return nil
	}

	title := data.AuthorName
	if title == "" {
		title = fallbackTitle
	}
	channelURL := data.AuthorURL
	if channelURL == "" {
		channelURL = "https://www.youtube.com/channel/" + channelID
	}
	return &domain.ChannelInfo{ChannelID: channelID, Title: title, URL: channelURL}
}

func (r *Resolver) resolvePageScrape(ctx context.Context, pageURL string) *domain.ChannelInfo {
	body, ok := r.fetch(ctx, pageURL)
	if !ok {
		return nil
	}
	html := string(body)

	channelID := firstMatch(html, reChannelID)
	if channelID == "" {
		return nil
	}

	title := firstMatch(html, reChannelName, reOwnerName, reMetaItemName)
	if title == "" {
		title = fallbackTitle
	}
	return &domain.ChannelInfo{
		ChannelID: channelID,
		Title:     title,
		URL:       "https://www.youtube.com/channel/" + channelID,
	}
}

func (r *Resolver) fetch(ctx context.Context, rawURL string) ([]byte, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Debug("resolver request failed", "url", rawURL, "error", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, false
	}
	return body, true
}

func firstMatch(s string, patterns ...*regexp.Regexp) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(s); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}
