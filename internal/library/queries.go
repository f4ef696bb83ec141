package library

import (
	"sort"

	"tubedeck/internal/domain"
)

// CategoryRef is the lightweight {id, name} pair returned by membership
// queries.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListCategories returns all categories ascending by display order, name as
// the stable tie-break.
func (s *Service) ListCategories() ([]domain.Category, error) {
	st, err := s.states.Load()
	if err != nil {
		return nil, err
	}

	cats := make([]domain.Category, 0, len(st.Categories))
	for _, cat := range st.Categories {
		cats = append(cats, *cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Order != cats[j].Order {
			return cats[i].Order < cats[j].Order
		}
		return cats[i].Name < cats[j].Name
	})
	return cats, nil
}

// GetChannelStatus returns the categories containing the channel, empty when
// the channel is unknown.
func (s *Service) GetChannelStatus(channelID string) ([]CategoryRef, error) {
	st, err := s.states.Load()
	if err != nil {
		return nil, err
	}

	refs := []CategoryRef{}
	ch, ok := st.Channels[channelID]
	if !ok {
		return refs, nil
	}
	for _, catID := range ch.Categories {
		if cat, ok := st.Categories[catID]; ok {
			refs = append(refs, CategoryRef{ID: cat.ID, Name: cat.Name})
		}
	}
	return refs, nil
}

// GetState returns a snapshot of the full persisted state, for the admin and
// export surfaces.
func (s *Service) GetState() (*domain.State, error) {
	return s.states.Load()
}
