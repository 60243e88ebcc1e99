package library

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyview/internal/config"
	"storyview/internal/story"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "library.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newDoc(title string, durations ...time.Duration) *config.Document {
	doc := &config.Document{Title: title}
	for _, d := range durations {
		doc.Items = append(doc.Items, config.ItemSpec{Kind: "text", Text: title, Duration: d})
	}
	return doc
}

func TestPutAndGet(t *testing.T) {
	s := setupTestStore(t)

	rec, err := s.Put(newDoc("Morning", time.Second, 2*time.Second))
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.Created.IsZero())

	got, err := s.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Morning", got.Document.Title)
	require.Len(t, got.Document.Items, 2)
	assert.Equal(t, 2*time.Second, got.Document.Items[1].Duration)

	byTitle, err := s.FindByTitle("  MORNING ")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, byTitle.ID)

	_, err = s.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindByTitle("Evening")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutReplacesSameTitle(t *testing.T) {
	s := setupTestStore(t)

	first, err := s.Put(newDoc("Morning", time.Second))
	require.NoError(t, err)
	second, err := s.Put(newDoc("morning", 3*time.Second))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Created, second.Created)

	all, err := s.List()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 3*time.Second, all[0].Document.Items[0].Duration)
}

func TestPutRejectsInvalidStories(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Put(newDoc("", time.Second))
	assert.Error(t, err)

	_, err = s.Put(newDoc("Empty"))
	assert.ErrorIs(t, err, story.ErrEmptyStory)

	_, err = s.Put(newDoc("Zero", 0))
	assert.ErrorIs(t, err, story.ErrNonPositiveDuration)

	all, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListSortedByTitle(t *testing.T) {
	s := setupTestStore(t)
	for _, title := range []string{"charlie", "Alpha", "bravo"} {
		_, err := s.Put(newDoc(title, time.Second))
		require.NoError(t, err)
	}

	all, err := s.List()
	require.NoError(t, err)
	var titles []string
	for _, rec := range all {
		titles = append(titles, rec.Document.Title)
	}
	assert.Equal(t, []string{"Alpha", "bravo", "charlie"}, titles)
}

func TestResolveAndDelete(t *testing.T) {
	s := setupTestStore(t)
	rec, err := s.Put(newDoc("Morning", time.Second))
	require.NoError(t, err)
	require.NoError(t, s.AddTag(rec.ID, "daily"))

	byID, err := s.Resolve(rec.ID)
	require.NoError(t, err)
	byTitle, err := s.Resolve("morning")
	require.NoError(t, err)
	assert.Equal(t, byID.ID, byTitle.ID)

	require.NoError(t, s.Delete("Morning"))
	_, err = s.Resolve(rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindByTitle("Morning")
	assert.ErrorIs(t, err, ErrNotFound)

	tags, err := s.AllTags()
	require.NoError(t, err)
	assert.Empty(t, tags, "tags of a removed story are cleaned up")

	assert.ErrorIs(t, s.Delete("Morning"), ErrNotFound)
}

func TestTags(t *testing.T) {
	s := setupTestStore(t)
	a, err := s.Put(newDoc("Alpha", time.Second))
	require.NoError(t, err)
	b, err := s.Put(newDoc("Bravo", time.Second))
	require.NoError(t, err)

	require.NoError(t, s.AddTag("Alpha", "work"))
	require.NoError(t, s.AddTag("Alpha", "daily"))
	require.NoError(t, s.AddTag("Alpha", "daily"))
	require.NoError(t, s.AddTag(b.ID, "daily"))

	tags, err := s.Tags(a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"daily", "work"}, tags)

	daily, err := s.StoriesWithTag("daily")
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.Equal(t, "Alpha", daily[0].Document.Title)

	all, err := s.AllTags()
	require.NoError(t, err)
	assert.Equal(t, []TagWithCount{{Name: "daily", Count: 2}, {Name: "work", Count: 1}}, all)

	require.NoError(t, s.RemoveTag("Alpha", "work"))
	all, err = s.AllTags()
	require.NoError(t, err)
	assert.Equal(t, []TagWithCount{{Name: "daily", Count: 2}}, all)

	assert.Error(t, s.AddTag("Alpha", " "))
	assert.ErrorIs(t, s.AddTag("Zulu", "x"), ErrNotFound)

	none, err := s.StoriesWithTag("missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReopenKeepsStories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	s, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	rec, err := s.Put(newDoc("Morning", time.Second))
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	require.NoError(t, s.Close())

	s, err = Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Morning", got.Document.Title)
}
