package scan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyview/internal/story"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		kind story.Kind
		ok   bool
	}{
		{"image.PNG", story.KindImage, true},
		{"image.jpg", story.KindImage, true},
		{"image.jpeg", story.KindImage, true},
		{"anim.gif", story.KindGIF, true},
		{"clip.MP4", story.KindVideo, true},
		{"image.txt", 0, false},
		{"image", 0, false},
		{".jpeg", story.KindImage, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := KindOf(tt.name)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.kind, kind)
			}
		})
	}
}

// makeTree creates:
//
//	image1.png, image2.JPG, document.txt, empty.gif (0 bytes)
//	sub1/image3.jpeg, sub1/notes.md, sub1/subsub/clip.mp4
//	.hidden/secret.png
func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]int{
		"image1.png":           10,
		"image2.JPG":           10,
		"document.txt":         10,
		"empty.gif":            0,
		"sub1/image3.jpeg":     10,
		"sub1/notes.md":        10,
		"sub1/subsub/clip.mp4": 10,
		".hidden/secret.png":   10,
	}
	for rel, size := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, make([]byte, size), 0o644))
	}
	return root
}

func relPaths(t *testing.T, root string, items FileItems) []string {
	t.Helper()
	var out []string
	for _, it := range items {
		assert.True(t, filepath.IsAbs(it.Path), "%s is not absolute", it.Path)
		assert.Positive(t, it.Size)
		rel, err := filepath.Rel(root, it.Path)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestFind(t *testing.T) {
	root := makeTree(t)

	items, err := Find(root, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"image1.png", "image2.JPG"}, relPaths(t, root, items))

	items, err = Find(root, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"image1.png", "image2.JPG", "sub1/image3.jpeg", "sub1/subsub/clip.mp4"}, relPaths(t, root, items))
	assert.Equal(t, story.KindVideo, items[3].Kind)

	_, err = Find(filepath.Join(root, "missing"), true)
	assert.Error(t, err)
}

func TestBuildDocument(t *testing.T) {
	root := makeTree(t)

	doc, err := BuildDocument(root, Options{Recursive: true, Duration: 3 * time.Second, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.NoError(t, doc.Validate())

	assert.Equal(t, filepath.Base(root), doc.Title)
	require.Len(t, doc.Items, 4)
	assert.Equal(t, "image", doc.Items[0].Kind)
	assert.Equal(t, "image1", doc.Items[0].Caption)
	assert.Equal(t, "video", doc.Items[3].Kind)
	assert.Equal(t, 12*time.Second, doc.TotalDuration())

	items, err := doc.Items()
	require.NoError(t, err)
	page, ok := items[2].Page()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "sub1", "image3.jpeg"), page.Source)
}

func TestBuildDocumentDefaults(t *testing.T) {
	root := makeTree(t)
	doc, err := BuildDocument(root, Options{Title: "Holiday"})
	require.NoError(t, err)
	assert.Equal(t, "Holiday", doc.Title)
	for _, it := range doc.Items {
		assert.Equal(t, DefaultDuration, it.Duration)
	}
}

func TestBuildDocumentShuffleIsSeeded(t *testing.T) {
	root := makeTree(t)
	a, err := BuildDocument(root, Options{Recursive: true, Shuffle: true, Seed: 42})
	require.NoError(t, err)
	b, err := BuildDocument(root, Options{Recursive: true, Shuffle: true, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, a.Items, b.Items)
	assert.Len(t, a.Items, 4)
}

func TestBuildDocumentEmptyDir(t *testing.T) {
	_, err := BuildDocument(t.TempDir(), Options{})
	assert.ErrorIs(t, err, story.ErrEmptyStory)
}
