package parser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *FeedParser {
	return NewFeedParser(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func readTestdata(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestFeedParser_Parse_RSS(t *testing.T) {
	feed, err := newTestParser().Parse(context.Background(), "https://rss.example.com/feed", readTestdata(t, "rss.xml"))

	require.NoError(t, err)
	require.NotNil(t, feed)
	assert.False(t, feed.Bozo)
	assert.Equal(t, "rss", feed.Type)
	assert.Equal(t, "RSS Example Site", feed.Meta.Get("title"))
	assert.Equal(t, "https://rss.example.com/", feed.Meta.Get("link"))
	assert.Equal(t, "", feed.Meta.Get("id"))
	require.Len(t, feed.Entries, 5)

	first := feed.Entries[0]
	assert.Equal(t, "RSS post 1", first.Get("title"))
	assert.Equal(t, "https://rss.example.com/posts/1.html", first.Get("link"))
	assert.Equal(t, "tag:rss.example.com,2024-03-10:/posts/1.html", first.Get("id"))
	assert.Equal(t, "Sun, 10 Mar 2024 10:00:00 +0000", first.Get("published"))
	assert.Equal(t, "Alice", first.Get("author"))
	assert.True(t, strings.HasPrefix(first.Get("description"), "<p>This is the <b>summary</b>"))
}

func TestFeedParser_Parse_Atom(t *testing.T) {
	feed, err := newTestParser().Parse(context.Background(), "https://atom.example.com/feed", readTestdata(t, "atom.xml"))

	require.NoError(t, err)
	assert.False(t, feed.Bozo)
	assert.Equal(t, "atom", feed.Type)
	assert.Equal(t, "Atom Example Site", feed.Meta.Get("title"))
	assert.Equal(t, "https://atom.example.com/", feed.Meta.Get("link"))
	assert.Equal(t, "https://atom.example.com/", feed.Meta.Get("id"))
	require.Len(t, feed.Entries, 5)

	first := feed.Entries[0]
	assert.Equal(t, "Atom post 1", first.Get("title"))
	assert.Equal(t, "https://atom.example.com/posts/1.html", first.Get("link"))
	assert.Equal(t, "2024-03-09T10:00:00+00:00", first.Get("published"))
	assert.Equal(t, "2024-03-09T12:00:00+00:00", first.Get("updated"))
	assert.Equal(t, "Bob", first.Get("author"))
	assert.Contains(t, first.Get("description"), "<em>summary</em>")
}

func TestFeedParser_Parse_TruncatedFeedIsRecovered(t *testing.T) {
	full := readTestdata(t, "rss.xml")
	cut := strings.Index(full, "<title>RSS post 3</title>")
	require.Positive(t, cut)

	feed, err := newTestParser().Parse(context.Background(), "https://rss.example.com/feed", full[:cut])

	require.NoError(t, err)
	assert.True(t, feed.Bozo)
	assert.Error(t, feed.BozoErr)
	assert.Equal(t, "RSS Example Site", feed.Meta.Get("title"))
	require.Len(t, feed.Entries, 2)
	assert.Equal(t, "RSS post 1", feed.Entries[0].Get("title"))
	assert.Equal(t, "https://rss.example.com/posts/1.html", feed.Entries[0].Get("link"))
	assert.Equal(t, "Sun, 10 Mar 2024 10:00:00 +0000", feed.Entries[0].Get("published"))
	assert.Equal(t, "Alice", feed.Entries[0].Get("author"))
	assert.Equal(t, "RSS post 2", feed.Entries[1].Get("title"))
}

func TestFeedParser_Parse_Garbage(t *testing.T) {
	feed, err := newTestParser().Parse(context.Background(), "https://example.com/", "this is not a feed at all")

	require.NoError(t, err)
	assert.True(t, feed.Bozo)
	assert.Empty(t, feed.Entries)
}

func TestFeedParser_Parse_EmptyFeed(t *testing.T) {
	xmlData := `<rss version="2.0"><channel><title>Empty Feed</title><link>https://example.com</link></channel></rss>`

	feed, err := newTestParser().Parse(context.Background(), "https://example.com/feed", xmlData)

	require.NoError(t, err)
	assert.False(t, feed.Bozo)
	assert.Equal(t, "Empty Feed", feed.Meta.Get("title"))
	assert.Empty(t, feed.Entries)
}

func TestFeedParser_Parse_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	feed, err := newTestParser().Parse(ctx, "https://example.com/feed", readTestdata(t, "rss.xml"))

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, feed)
}

func TestRecoverFeed_AtomEntries(t *testing.T) {
	full := readTestdata(t, "atom.xml")
	cut := strings.Index(full, "<title>Atom post 2</title>")
	require.Positive(t, cut)

	feed := recoverFeed(full[:cut])

	assert.Equal(t, "atom", feed.Type)
	assert.Equal(t, "https://atom.example.com/", feed.Meta.Get("id"))
	assert.Equal(t, "https://atom.example.com/", feed.Meta.Get("link"))
	require.Len(t, feed.Entries, 1)
	entry := feed.Entries[0]
	assert.Equal(t, "https://atom.example.com/posts/1.html", entry.Get("link"))
	assert.Equal(t, "Bob", entry.Get("author"))
	assert.Equal(t, "2024-03-09T10:00:00+00:00", entry.Get("published"))
	assert.Contains(t, entry.Get("description"), "<em>summary</em>")
}

func TestRecoverFeed_UnescapedAmpersand(t *testing.T) {
	xmlData := `<rss><channel><title>Tom & Jerry</title>
<item><title>Cats & Mice</title><link>https://example.com/1</link><pubDate>Sun, 10 Mar 2024 10:00:00 +0000</pubDate></item>
</channel></rss>`

	feed := recoverFeed(xmlData)

	assert.Equal(t, "Tom & Jerry", feed.Meta.Get("title"))
	require.Len(t, feed.Entries, 1)
	assert.Equal(t, "Cats & Mice", feed.Entries[0].Get("title"))
}
