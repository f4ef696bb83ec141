package library

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubedeck/internal/domain"
	"tubedeck/internal/log"
	"tubedeck/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.StateStore) {
	t.Helper()
	states := storage.NewStateStore(storage.NewMemoryKV())
	svc := NewService(states, log.NullLogger())
	svc.SetClock(func() time.Time { return time.UnixMilli(1_700_000_000_000) })

	seq := 0
	svc.SetIDSource(func() string {
		seq++
		return fmt.Sprintf("cat-%d", seq)
	})
	return svc, states
}

func channel(id string) domain.ChannelInfo {
	return domain.ChannelInfo{
		ChannelID: id,
		Title:     "Title of " + id,
		URL:       "https://youtube.com/channel/" + id,
	}
}

// requireSymmetry asserts the two-way membership invariant: every category
// membership is mirrored on the channel, and vice versa.
func requireSymmetry(t *testing.T, st *domain.State) {
	t.Helper()
	for catID, cat := range st.Categories {
		for _, chID := range cat.ChannelIDs {
			ch, ok := st.Channels[chID]
			require.True(t, ok, "category %s references unknown channel %s", catID, chID)
			assert.True(t, ch.InCategory(catID), "channel %s missing back-reference to %s", chID, catID)
		}
	}
	for chID, ch := range st.Channels {
		for _, catID := range ch.Categories {
			cat, ok := st.Categories[catID]
			require.True(t, ok, "channel %s references unknown category %s", chID, catID)
			assert.True(t, cat.HasChannel(chID), "category %s missing back-reference to %s", catID, chID)
		}
	}
}

func TestEnsureCategoryIdempotent(t *testing.T) {
	svc, _ := newTestService(t)

	first, created, err := svc.EnsureCategory("Cooking")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Cooking", first.Name)
	assert.Equal(t, 1, first.Order)

	// Equivalent names (case, surrounding whitespace) resolve to the same
	// category.
	for _, name := range []string{"Cooking", "cooking", "  COOKING  "} {
		again, created, err := svc.EnsureCategory(name)
		require.NoError(t, err)
		assert.False(t, created, "name %q created a duplicate", name)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, "Cooking", again.Name, "display name must keep original casing")
	}

	cats, err := svc.ListCategories()
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestEnsureCategoryEmptyName(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.EnsureCategory("   ")
	assert.ErrorIs(t, err, domain.ErrEmptyName)
}

func TestEnsureCategoryOrderAssignment(t *testing.T) {
	svc, _ := newTestService(t)

	a, _, err := svc.EnsureCategory("Alpha")
	require.NoError(t, err)
	b, _, err := svc.EnsureCategory("Beta")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Order)
	assert.Equal(t, 2, b.Order)

	// New categories slot after the current maximum, even when it was set
	// manually.
	require.NoError(t, svc.UpdateCategoryOrder(a.ID, 10))
	c, _, err := svc.EnsureCategory("Gamma")
	require.NoError(t, err)
	assert.Equal(t, 11, c.Order)
}

func TestSaveCreatorNewCategoryAndChannel(t *testing.T) {
	svc, states := newTestService(t)

	res, err := svc.SaveCreator("Tech", channel("UC123"))
	require.NoError(t, err)
	assert.Equal(t, StatusAdded, res.Status)
	assert.True(t, res.CreatedCategory)
	assert.Equal(t, "Tech", res.Category.Name)
	assert.Equal(t, []string{res.Category.ID}, res.ChannelCategories)

	st, err := states.Load()
	require.NoError(t, err)
	requireSymmetry(t, st)

	ch := st.Channels["UC123"]
	require.NotNil(t, ch)
	assert.Equal(t, "Title of UC123", ch.Title)
	assert.Equal(t, int64(1_700_000_000_000), ch.AddedAt)
}

func TestSaveCreatorExistingLink(t *testing.T) {
	svc, states := newTestService(t)

	_, err := svc.SaveCreator("Tech", channel("UC123"))
	require.NoError(t, err)

	res, err := svc.SaveCreator("Tech", channel("UC123"))
	require.NoError(t, err)
	assert.Equal(t, StatusExists, res.Status)
	assert.False(t, res.CreatedCategory)

	st, err := states.Load()
	require.NoError(t, err)
	assert.Len(t, st.Categories[res.Category.ID].ChannelIDs, 1, "repeat save must not duplicate the link")
	requireSymmetry(t, st)
}

func TestSaveCreatorMultipleCategories(t *testing.T) {
	svc, states := newTestService(t)

	first, err := svc.SaveCreator("Tech", channel("UC123"))
	require.NoError(t, err)
	second, err := svc.SaveCreator("Science", channel("UC123"))
	require.NoError(t, err)

	assert.Equal(t, StatusAdded, second.Status)
	assert.ElementsMatch(t, []string{first.Category.ID, second.Category.ID}, second.ChannelCategories)

	st, err := states.Load()
	require.NoError(t, err)
	assert.Len(t, st.Channels, 1, "same channel saved twice must stay one record")
	requireSymmetry(t, st)
}

func TestAttachChannelMissingCategory(t *testing.T) {
	svc, states := newTestService(t)

	status, memberships, err := svc.AttachChannel(channel("UC123"), "no-such-category")
	require.NoError(t, err)
	assert.Equal(t, StatusMissingCategory, status)
	assert.Empty(t, memberships)

	st, err := states.Load()
	require.NoError(t, err)
	assert.Empty(t, st.Channels, "failed attach must not create a channel record")
}

func TestAttachChannelTitleUpsert(t *testing.T) {
	svc, states := newTestService(t)

	cat, _, err := svc.EnsureCategory("Tech")
	require.NoError(t, err)

	_, _, err = svc.AttachChannel(domain.ChannelInfo{ChannelID: "UC123", Title: "Good Title", URL: "https://a"}, cat.ID)
	require.NoError(t, err)

	// A later attach with a blank title must not erase the known one; the
	// URL always takes the latest value.
	_, _, err = svc.AttachChannel(domain.ChannelInfo{ChannelID: "UC123", Title: "", URL: "https://b"}, cat.ID)
	require.NoError(t, err)

	st, err := states.Load()
	require.NoError(t, err)
	assert.Equal(t, "Good Title", st.Channels["UC123"].Title)
	assert.Equal(t, "https://b", st.Channels["UC123"].URL)
}

func TestDetachChannel(t *testing.T) {
	svc, states := newTestService(t)

	res, err := svc.SaveCreator("Tech", channel("UC123"))
	require.NoError(t, err)

	require.NoError(t, svc.DetachChannel("UC123", res.Category.ID))

	st, err := states.Load()
	require.NoError(t, err)
	assert.Empty(t, st.Categories[res.Category.ID].ChannelIDs)
	require.NotNil(t, st.Channels["UC123"], "detach keeps the channel record")
	assert.Empty(t, st.Channels["UC123"].Categories)
	requireSymmetry(t, st)

	// Detaching again, or with unknown ids, is a no-op.
	require.NoError(t, svc.DetachChannel("UC123", res.Category.ID))
	require.NoError(t, svc.DetachChannel("nope", "nope"))
}

func TestRenameCategory(t *testing.T) {
	svc, _ := newTestService(t)

	a, _, err := svc.EnsureCategory("Alpha")
	require.NoError(t, err)
	_, _, err = svc.EnsureCategory("Beta")
	require.NoError(t, err)

	tests := []struct {
		name    string
		newName string
		wantErr error
	}{
		{"plain rename", "Gamma", nil},
		{"self rename different case", "GAMMA", nil},
		{"collision with other category", "beta", domain.ErrDuplicateName},
		{"blank", "  ", domain.ErrEmptyName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.RenameCategory(a.ID, tt.newName)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	assert.ErrorIs(t, svc.RenameCategory("missing", "X"), domain.ErrCategoryNotFound)

	cats, err := svc.ListCategories()
	require.NoError(t, err)
	assert.Equal(t, "GAMMA", cats[0].Name)
}

func TestDeleteCategoryDetachesMembers(t *testing.T) {
	svc, states := newTestService(t)

	tech, err := svc.SaveCreator("Tech", channel("UC1"))
	require.NoError(t, err)
	_, err = svc.SaveCreator("Tech", channel("UC2"))
	require.NoError(t, err)
	science, err := svc.SaveCreator("Science", channel("UC1"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(tech.Category.ID))

	st, err := states.Load()
	require.NoError(t, err)
	assert.NotContains(t, st.Categories, tech.Category.ID)
	assert.Equal(t, []string{science.Category.ID}, st.Channels["UC1"].Categories)
	assert.Empty(t, st.Channels["UC2"].Categories, "orphaned channel stays but loses the membership")
	requireSymmetry(t, st)

	assert.ErrorIs(t, svc.DeleteCategory(tech.Category.ID), domain.ErrCategoryNotFound)
}

func TestListCategoriesOrdering(t *testing.T) {
	svc, _ := newTestService(t)

	a, _, err := svc.EnsureCategory("Zeta")
	require.NoError(t, err)
	b, _, err := svc.EnsureCategory("Alpha")
	require.NoError(t, err)
	c, _, err := svc.EnsureCategory("Mid")
	require.NoError(t, err)

	// Give Zeta and Alpha the same order so the name tie-break kicks in.
	require.NoError(t, svc.UpdateCategoryOrder(a.ID, 5))
	require.NoError(t, svc.UpdateCategoryOrder(b.ID, 5))
	require.NoError(t, svc.UpdateCategoryOrder(c.ID, 1))

	cats, err := svc.ListCategories()
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, "Mid", cats[0].Name)
	assert.Equal(t, "Alpha", cats[1].Name)
	assert.Equal(t, "Zeta", cats[2].Name)
}

func TestGetChannelStatus(t *testing.T) {
	svc, _ := newTestService(t)

	refs, err := svc.GetChannelStatus("unknown")
	require.NoError(t, err)
	assert.Empty(t, refs)
	assert.NotNil(t, refs, "unknown channel yields empty list, not null")

	tech, err := svc.SaveCreator("Tech", channel("UC1"))
	require.NoError(t, err)
	science, err := svc.SaveCreator("Science", channel("UC1"))
	require.NoError(t, err)

	refs, err = svc.GetChannelStatus("UC1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []CategoryRef{
		{ID: tech.Category.ID, Name: "Tech"},
		{ID: science.Category.ID, Name: "Science"},
	}, refs)
}

func TestUpdateChannelTitle(t *testing.T) {
	svc, states := newTestService(t)

	_, err := svc.SaveCreator("Tech", channel("UC1"))
	require.NoError(t, err)

	ch, err := svc.UpdateChannelTitle("UC1", "Better Title")
	require.NoError(t, err)
	assert.Equal(t, "Better Title", ch.Title)

	// A blank replacement keeps the current title.
	ch, err = svc.UpdateChannelTitle("UC1", "")
	require.NoError(t, err)
	assert.Equal(t, "Better Title", ch.Title)

	_, err = svc.UpdateChannelTitle("missing", "X")
	assert.ErrorIs(t, err, domain.ErrChannelNotFound)

	st, err := states.Load()
	require.NoError(t, err)
	assert.Equal(t, "Better Title", st.Channels["UC1"].Title)
}
