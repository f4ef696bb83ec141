// Package search provides fuzzy lookup across saved categories and
// channels, for quick filtering in whatever front end sits on the store.
package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sahilm "github.com/sahilm/fuzzy"

	"tubedeck/internal/domain"
)

// Kind distinguishes result entries.
const (
	KindCategory = "category"
	KindChannel  = "channel"
)

// Result is one ranked match.
type Result struct {
	Kind           string `json:"kind"`
	ID             string `json:"id"`
	Title          string `json:"title"`
	Rank           int    `json:"rank"`           // lower is better
	MatchedIndexes []int  `json:"matchedIndexes"` // character positions, for highlighting
}

type indexEntry struct {
	kind  string
	id    string
	title string
}

// index implements sahilm/fuzzy.Source over lowercased titles.
type index struct {
	entries     []indexEntry
	lowerTitles []string
}

func (ix *index) String(i int) string { return ix.lowerTitles[i] }
func (ix *index) Len() int            { return len(ix.entries) }

func buildIndex(st *domain.State) *index {
	ix := &index{}
	for _, cat := range st.Categories {
		ix.entries = append(ix.entries, indexEntry{kind: KindCategory, id: cat.ID, title: cat.Name})
	}
	for _, ch := range st.Channels {
		ix.entries = append(ix.entries, indexEntry{kind: KindChannel, id: ch.ChannelID, title: ch.Title})
	}
	sort.Slice(ix.entries, func(i, j int) bool {
		if ix.entries[i].kind != ix.entries[j].kind {
			return ix.entries[i].kind < ix.entries[j].kind
		}
		return ix.entries[i].title < ix.entries[j].title
	})
	ix.lowerTitles = make([]string, len(ix.entries))
	for i, e := range ix.entries {
		ix.lowerTitles[i] = strings.ToLower(e.title)
	}
	return ix
}

// Query returns categories and channels fuzzy-matching q, best first.
// Ranking uses Levenshtein distance over folded titles; match positions for
// highlighting come from a second structural pass.
func Query(st *domain.State, q string) []Result {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}

	ix := buildIndex(st)

	ranks := fuzzy.RankFindNormalizedFold(q, ix.lowerTitles)
	sort.Sort(ranks)

	positions := make(map[int][]int)
	for _, m := range sahilm.FindFrom(strings.ToLower(q), ix) {
		positions[m.Index] = m.MatchedIndexes
	}

	results := make([]Result, 0, len(ranks))
	for _, r := range ranks {
		e := ix.entries[r.OriginalIndex]
		results = append(results, Result{
			Kind:           e.kind,
			ID:             e.id,
			Title:          e.title,
			Rank:           r.Distance,
			MatchedIndexes: positions[r.OriginalIndex],
		})
	}
	return results
}
