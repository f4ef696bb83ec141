package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubedeck/internal/log"
)

func TestResolveViaOEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"author_name": "Cool Creator", "author_url": "https://www.youtube.com/channel/UCabc123"}`)
	}))
	t.Cleanup(srv.Close)

	r := NewResolver(log.NullLogger())
	r.SetOEmbedBase(srv.URL)

	ch, err := r.Resolve(context.Background(), "https://www.youtube.com/watch?v=v1")
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Equal(t, "UCabc123", ch.ChannelID)
	assert.Equal(t, "Cool Creator", ch.Title)
	assert.Equal(t, "https://www.youtube.com/channel/UCabc123", ch.URL)
}

func TestResolveOEmbedMissingAuthorName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"author_url": "https://www.youtube.com/channel/UCabc123"}`)
	}))
	t.Cleanup(srv.Close)

	r := NewResolver(log.NullLogger())
	r.SetOEmbedBase(srv.URL)

	ch, err := r.Resolve(context.Background(), "https://www.youtube.com/watch?v=v1")
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Equal(t, fallbackTitle, ch.Title)
}

func TestResolveFallsBackToPageScrape(t *testing.T) {
	// oEmbed fails; the watch page itself carries the channel id and owner
	// name in its embedded player config.
	oembed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(oembed.Close)

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><script>var cfg = {"channelId":"UCscraped","ownerChannelName":"Scraped Creator"};</script></html>`)
	}))
	t.Cleanup(page.Close)

	r := NewResolver(log.NullLogger())
	r.SetOEmbedBase(oembed.URL)

	ch, err := r.Resolve(context.Background(), page.URL)
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Equal(t, "UCscraped", ch.ChannelID)
	assert.Equal(t, "Scraped Creator", ch.Title)
	assert.Equal(t, "https://www.youtube.com/channel/UCscraped", ch.URL)
}

func TestResolveUnresolvable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>nothing useful here</html>`)
	}))
	t.Cleanup(srv.Close)

	r := NewResolver(log.NullLogger())
	r.SetOEmbedBase(srv.URL)

	ch, err := r.Resolve(context.Background(), srv.URL)
	require.NoError(t, err, "failing to resolve is not an error")
	assert.Nil(t, ch)
}

func TestFirstMatchPriority(t *testing.T) {
	html := `{"channelName":"From Config","ownerChannelName":"From Owner"}`
	assert.Equal(t, "From Config", firstMatch(html, reChannelName, reOwnerName))
	assert.Equal(t, "From Owner", firstMatch(`{"ownerChannelName":"From Owner"}`, reChannelName, reOwnerName))
	assert.Equal(t, "", firstMatch("nothing", reChannelName, reOwnerName))
}

func TestChannelIDExtractionFromAuthorURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/channel/UCabc123", "UCabc123"},
		{"https://www.youtube.com/user/someuser", "someuser"},
		{"https://www.youtube.com/c/customname", "customname"},
		{"https://www.youtube.com/@handle", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, firstMatch(tt.url, reChannelPath, reUserPath, reCustomPath), tt.url)
	}
}
