package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewArticle_ResolvesSourceFields(t *testing.T) {
	entry := Entry{"title": "Hello", "link": "https://a.example/hello", "id": "a-1", "comments": "https://a.example/hello#c"}
	source := FeedMeta{"title": "Site A", "link": "https://a.example", "language": "en"}

	a := NewArticle(entry, source)

	assert.Equal(t, "Hello", a.Title)
	assert.Equal(t, "Site A", a.SourceTitle)
	assert.Equal(t, "https://a.example", a.SourceLink)
	assert.Equal(t, "", a.SourceID)
	assert.Equal(t, "en", a.Field("source_language"))
	assert.Equal(t, "https://a.example/hello#c", a.Field("comments"))
	assert.Equal(t, "", a.Field("invalid_attribute"))
	assert.Equal(t, "", a.Field("source_missing"))
}

func TestNewArticle_CopiesRawFields(t *testing.T) {
	entry := Entry{"title": "Hello", "category": "go"}
	source := FeedMeta{"title": "Site A"}

	a := NewArticle(entry, source)
	entry["category"] = "changed"
	source["title"] = "changed"

	assert.Equal(t, "go", a.Field("category"))
	assert.Equal(t, "Site A", a.SourceTitle)
}

func TestArticle_NilRawMaps(t *testing.T) {
	a := NewArticle(nil, nil)

	assert.Equal(t, "", a.Title)
	assert.Equal(t, "", a.Field("anything"))
	assert.Equal(t, "", a.Field("source_id"))
}

func TestArticle_DateFields(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	a := NewArticle(Entry{}, FeedMeta{})
	a.Date = &ts
	a.Published = &ts

	assert.Equal(t, "2024-03-01T10:00:00Z", a.Field("date"))
	assert.Equal(t, "2024-03-01T10:00:00Z", a.Field("published"))
	assert.Equal(t, "", a.Field("created"))
	assert.Equal(t, ts, a.SortTime())
}

func TestArticle_SortTimeWithoutDate(t *testing.T) {
	a := NewArticle(Entry{}, FeedMeta{})
	assert.True(t, a.SortTime().IsZero())
}

func TestFields_Get(t *testing.T) {
	var f Fields
	assert.Equal(t, "", f.Get("x"))
	assert.False(t, f.Has("x"))

	f = Fields{"x": "1", "y": ""}
	assert.True(t, f.Has("x"))
	assert.False(t, f.Has("y"))
}
