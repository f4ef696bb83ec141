// Package api exposes the store's request/response operation surface.
// It is transport-independent: the CLI drives it directly, and any
// messaging layer can sit in front of it with the same shapes.
package api

import (
	"context"
	"encoding/json"
	"log/slog"

	"tubedeck/internal/domain"
	"tubedeck/internal/library"
	"tubedeck/internal/search"
	"tubedeck/internal/storage"
	"tubedeck/internal/transfer"
	"tubedeck/internal/videos"
)

// Handler wires every logical operation to the services behind it.
type Handler struct {
	lib        *library.Service
	aggregator *videos.Aggregator
	resolver   domain.ChannelResolver
	feed       domain.FeedSource
	states     *storage.StateStore
	logger     *slog.Logger
}

func NewHandler(
	lib *library.Service,
	aggregator *videos.Aggregator,
	resolver domain.ChannelResolver,
	feed domain.FeedSource,
	states *storage.StateStore,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		lib:        lib,
		aggregator: aggregator,
		resolver:   resolver,
		feed:       feed,
		states:     states,
		logger:     logger,
	}
}

// SaveCreatorRequest carries the save-creator flow inputs.
type SaveCreatorRequest struct {
	CategoryName string             `json:"categoryName"`
	Channel      domain.ChannelInfo `json:"channel"`
}

// SaveCreatorResponse reports the attach outcome plus the channel's
// resulting memberships.
type SaveCreatorResponse struct {
	Status            string          `json:"status"`
	Category          domain.Category `json:"category"`
	CreatedCategory   bool            `json:"createdCategory"`
	ChannelCategories []string        `json:"channelCategories"`
}

func (h *Handler) SaveCreator(req SaveCreatorRequest) (*SaveCreatorResponse, error) {
	res, err := h.lib.SaveCreator(req.CategoryName, req.Channel)
	if err != nil {
		return nil, err
	}
	return &SaveCreatorResponse{
		Status:            string(res.Status),
		Category:          res.Category,
		CreatedCategory:   res.CreatedCategory,
		ChannelCategories: res.ChannelCategories,
	}, nil
}

// CategoriesResponse lists categories in display order.
type CategoriesResponse struct {
	Categories []domain.Category `json:"categories"`
}

func (h *Handler) GetCategories() (*CategoriesResponse, error) {
	cats, err := h.lib.ListCategories()
	if err != nil {
		return nil, err
	}
	return &CategoriesResponse{Categories: cats}, nil
}

// ChannelStatusResponse lists the categories containing a channel.
type ChannelStatusResponse struct {
	Categories []library.CategoryRef `json:"categories"`
}

func (h *Handler) GetChannelStatus(channelID string) (*ChannelStatusResponse, error) {
	refs, err := h.lib.GetChannelStatus(channelID)
	if err != nil {
		return nil, err
	}
	return &ChannelStatusResponse{Categories: refs}, nil
}

func (h *Handler) GetVideosForCategory(ctx context.Context, categoryID string) (*videos.CategoryVideos, error) {
	return h.aggregator.LoadVideosForCategory(ctx, categoryID)
}

// RecentLongFormVideos is the direct-by-channel variant with the short-item
// filter applied.
func (h *Handler) RecentLongFormVideos(ctx context.Context, channelIDs []string) ([]domain.AggregatedVideo, error) {
	return h.aggregator.RecentLongFormVideos(ctx, channelIDs)
}

// StateResponse is the full snapshot for the admin/export surface.
type StateResponse struct {
	State *domain.State `json:"state"`
}

func (h *Handler) GetState() (*StateResponse, error) {
	st, err := h.lib.GetState()
	if err != nil {
		return nil, err
	}
	return &StateResponse{State: st}, nil
}

// CreateCategoryResponse reports the category and whether it already
// existed.
type CreateCategoryResponse struct {
	Category domain.Category `json:"category"`
	Existed  bool            `json:"existed,omitempty"`
}

func (h *Handler) CreateCategory(name string) (*CreateCategoryResponse, error) {
	cat, created, err := h.lib.EnsureCategory(name)
	if err != nil {
		return nil, err
	}
	return &CreateCategoryResponse{Category: cat, Existed: !created}, nil
}

func (h *Handler) RenameCategory(categoryID, newName string) (*StateResponse, error) {
	if err := h.lib.RenameCategory(categoryID, newName); err != nil {
		return nil, err
	}
	return h.GetState()
}

func (h *Handler) DeleteCategory(categoryID string) (*StateResponse, error) {
	if err := h.lib.DeleteCategory(categoryID); err != nil {
		return nil, err
	}
	return h.GetState()
}

func (h *Handler) RemoveChannelFromCategory(categoryID, channelID string) (*StateResponse, error) {
	if err := h.lib.DetachChannel(channelID, categoryID); err != nil {
		return nil, err
	}
	return h.GetState()
}

func (h *Handler) UpdateCategoryOrder(categoryID string, order int) (*StateResponse, error) {
	if err := h.lib.UpdateCategoryOrder(categoryID, order); err != nil {
		return nil, err
	}
	return h.GetState()
}

// ImportResponse acknowledges a completed import.
type ImportResponse struct {
	OK bool `json:"ok"`
}

// ImportState validates the payload (accepting the legacy flat layout) and
// wholesale-replaces the persisted root. Nothing is written when validation
// fails.
func (h *Handler) ImportState(raw json.RawMessage) (*ImportResponse, error) {
	st, ok := transfer.ConvertLegacy(raw)
	if !ok {
		var err error
		st, err = transfer.Validate(raw)
		if err != nil {
			return nil, err
		}
	}
	if err := h.states.Replace(st); err != nil {
		return nil, err
	}
	h.logger.Info("imported state", "categories", len(st.Categories), "channels", len(st.Channels))
	return &ImportResponse{OK: true}, nil
}

// ExportState returns the user-facing export document.
func (h *Handler) ExportState() (*transfer.ExportDocument, error) {
	st, err := h.lib.GetState()
	if err != nil {
		return nil, err
	}
	return transfer.Export(st), nil
}

// ResolveChannelResponse carries the resolved channel, or null when the
// page yielded nothing.
type ResolveChannelResponse struct {
	Channel *domain.ChannelInfo `json:"channel"`
}

func (h *Handler) ResolveChannelFromURL(ctx context.Context, pageURL string) (*ResolveChannelResponse, error) {
	ch, err := h.resolver.Resolve(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return &ResolveChannelResponse{Channel: ch}, nil
}

// RefreshChannelTitleResponse carries the updated channel, or null when the
// title could not be refreshed.
type RefreshChannelTitleResponse struct {
	Channel *domain.Channel `json:"channel"`
}

// RefreshChannelTitle re-reads the channel's display name from its feed and
// stores it. Failures degrade to a null channel, matching resolver
// semantics.
func (h *Handler) RefreshChannelTitle(ctx context.Context, channelID string) (*RefreshChannelTitleResponse, error) {
	title, err := h.feed.ChannelTitle(ctx, channelID)
	if err != nil {
		h.logger.Warn("channel title refresh failed", "channelId", channelID, "error", err)
		return &RefreshChannelTitleResponse{}, nil
	}

	ch, err := h.lib.UpdateChannelTitle(channelID, title)
	if err == domain.ErrChannelNotFound {
		return &RefreshChannelTitleResponse{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &RefreshChannelTitleResponse{Channel: &ch}, nil
}

// SearchResponse lists fuzzy matches across categories and channels.
type SearchResponse struct {
	Results []search.Result `json:"results"`
}

func (h *Handler) SearchLibrary(query string) (*SearchResponse, error) {
	st, err := h.lib.GetState()
	if err != nil {
		return nil, err
	}
	return &SearchResponse{Results: search.Query(st, query)}, nil
}
