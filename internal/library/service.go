package library

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tubedeck/internal/domain"
	"tubedeck/internal/storage"
)

// AttachStatus reports the outcome of linking a channel to a category.
type AttachStatus string

const (
	StatusAdded           AttachStatus = "added"
	StatusExists          AttachStatus = "exists"
	StatusMissingCategory AttachStatus = "missing-category"
)

// Service implements the category/channel store: every operation is a
// read-modify-write of the full persisted State, serialized by the state
// store's critical section.
type Service struct {
	states *storage.StateStore
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func NewService(states *storage.StateStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		states: states,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// SetClock overrides the time source (test hook).
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// SetIDSource overrides category id allocation (test hook).
func (s *Service) SetIDSource(newID func() string) { s.newID = newID }

// normalizeName produces the form category names are compared under.
// The stored display name keeps the user's original casing.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func findCategoryByName(st *domain.State, name string) *domain.Category {
	target := normalizeName(name)
	for _, cat := range st.Categories {
		if normalizeName(cat.Name) == target {
			return cat
		}
	}
	return nil
}

func maxOrder(st *domain.State) int {
	max := 0
	for _, cat := range st.Categories {
		if cat.Order > max {
			max = cat.Order
		}
	}
	return max
}
