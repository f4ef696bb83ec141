package library

import (
	"strings"

	"tubedeck/internal/domain"
)

// SaveCreatorResult is the composite outcome of the save-creator flow:
// find-or-create the category, then attach the channel to it.
type SaveCreatorResult struct {
	Status            AttachStatus
	Category          domain.Category
	CreatedCategory   bool
	ChannelCategories []string
}

// SaveCreator ensures the named category exists and attaches the channel to
// it, all within a single read-modify-write cycle.
func (s *Service) SaveCreator(categoryName string, channel domain.ChannelInfo) (*SaveCreatorResult, error) {
	var res SaveCreatorResult
	err := s.states.Update(func(st *domain.State) error {
		cat, created, err := s.ensureCategory(st, categoryName)
		if err != nil {
			return err
		}
		status, memberships := s.attachChannel(st, channel, cat.ID)
		res = SaveCreatorResult{
			Status:            status,
			Category:          *cat,
			CreatedCategory:   created,
			ChannelCategories: memberships,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("saved creator", "channelId", channel.ChannelID, "category", res.Category.Name, "status", res.Status)
	return &res, nil
}

// EnsureCategory finds a category whose name normalizes equal to name, or
// creates one. Repeated calls with equivalent names never create duplicates.
func (s *Service) EnsureCategory(name string) (domain.Category, bool, error) {
	var (
		cat     *domain.Category
		created bool
	)
	err := s.states.Update(func(st *domain.State) error {
		var err error
		cat, created, err = s.ensureCategory(st, name)
		return err
	})
	if err != nil {
		return domain.Category{}, false, err
	}
	return *cat, created, nil
}

func (s *Service) ensureCategory(st *domain.State, name string) (*domain.Category, bool, error) {
	if strings.TrimSpace(name) == "" {
		return nil, false, domain.ErrEmptyName
	}
	if existing := findCategoryByName(st, name); existing != nil {
		return existing, false, nil
	}

	cat := &domain.Category{
		ID:         s.newID(),
		Name:       strings.TrimSpace(name),
		CreatedAt:  s.now().UnixMilli(),
		Order:      maxOrder(st) + 1,
		ChannelIDs: []string{},
	}
	st.Categories[cat.ID] = cat
	return cat, true, nil
}

// AttachChannel links the channel to the category, creating or refreshing
// the channel record on the way. Attaching an already-linked channel is a
// no-op reported as StatusExists.
func (s *Service) AttachChannel(channel domain.ChannelInfo, categoryID string) (AttachStatus, []string, error) {
	var (
		status      AttachStatus
		memberships []string
	)
	err := s.states.Update(func(st *domain.State) error {
		status, memberships = s.attachChannel(st, channel, categoryID)
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return status, memberships, nil
}

func (s *Service) attachChannel(st *domain.State, info domain.ChannelInfo, categoryID string) (AttachStatus, []string) {
	cat, ok := st.Categories[categoryID]
	if !ok {
		return StatusMissingCategory, nil
	}

	ch, ok := st.Channels[info.ChannelID]
	if !ok {
		ch = &domain.Channel{
			ChannelID:  info.ChannelID,
			Title:      info.Title,
			URL:        info.URL,
			Categories: []string{},
			AddedAt:    s.now().UnixMilli(),
		}
		st.Channels[info.ChannelID] = ch
	} else {
		// Upsert: a blank incoming title never clobbers a known one.
		if info.Title != "" {
			ch.Title = info.Title
		}
		ch.URL = info.URL
	}

	if cat.HasChannel(info.ChannelID) {
		return StatusExists, append([]string(nil), ch.Categories...)
	}

	cat.ChannelIDs = append(cat.ChannelIDs, info.ChannelID)
	ch.Categories = append(ch.Categories, categoryID)
	return StatusAdded, append([]string(nil), ch.Categories...)
}

// DetachChannel removes the category/channel link from both sides. Missing
// entities make this a no-op, not an error.
func (s *Service) DetachChannel(channelID, categoryID string) error {
	return s.states.Update(func(st *domain.State) error {
		detach(st, channelID, categoryID)
		return nil
	})
}

func detach(st *domain.State, channelID, categoryID string) {
	cat, okCat := st.Categories[categoryID]
	ch, okCh := st.Channels[channelID]
	if !okCat || !okCh {
		return
	}
	cat.ChannelIDs = remove(cat.ChannelIDs, channelID)
	ch.Categories = remove(ch.Categories, categoryID)
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// RenameCategory sets the category's display name to the trimmed newName.
// The new name is re-checked for normalized uniqueness; renaming a category
// to a differently-cased version of its own name is allowed.
func (s *Service) RenameCategory(categoryID, newName string) error {
	return s.states.Update(func(st *domain.State) error {
		if strings.TrimSpace(newName) == "" {
			return domain.ErrEmptyName
		}
		cat, ok := st.Categories[categoryID]
		if !ok {
			return domain.ErrCategoryNotFound
		}
		if existing := findCategoryByName(st, newName); existing != nil && existing.ID != categoryID {
			return domain.ErrDuplicateName
		}
		cat.Name = strings.TrimSpace(newName)
		return nil
	})
}

// DeleteCategory detaches every member channel (keeping the symmetry
// invariant) and removes the category. Channels that were only in this
// category remain in the channel table, orphaned.
func (s *Service) DeleteCategory(categoryID string) error {
	return s.states.Update(func(st *domain.State) error {
		cat, ok := st.Categories[categoryID]
		if !ok {
			return domain.ErrCategoryNotFound
		}
		for _, channelID := range append([]string(nil), cat.ChannelIDs...) {
			detach(st, channelID, categoryID)
		}
		delete(st.Categories, categoryID)
		return nil
	})
}

// UpdateCategoryOrder sets the category's display position.
func (s *Service) UpdateCategoryOrder(categoryID string, order int) error {
	return s.states.Update(func(st *domain.State) error {
		cat, ok := st.Categories[categoryID]
		if !ok {
			return domain.ErrCategoryNotFound
		}
		cat.Order = order
		return nil
	})
}

// UpdateChannelTitle replaces a known channel's display title, used when a
// better name turns up after the channel was first saved.
func (s *Service) UpdateChannelTitle(channelID, title string) (domain.Channel, error) {
	var out domain.Channel
	err := s.states.Update(func(st *domain.State) error {
		ch, ok := st.Channels[channelID]
		if !ok {
			return domain.ErrChannelNotFound
		}
		if title != "" {
			ch.Title = title
		}
		out = *ch
		return nil
	})
	if err != nil {
		return domain.Channel{}, err
	}
	return out, nil
}
