// Package scan builds stories from the media files in a directory tree.
package scan

import (
	"fmt"
	"io/fs"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"storyview/internal/config"
	"storyview/internal/story"
)

// DefaultDuration is how long each scanned page is shown unless overridden.
const DefaultDuration = 5 * time.Second

// FileItem is a media file found by a scan.
type FileItem struct {
	Path string
	Kind story.Kind
	Size int64
}

// FileItems is a slice of FileItem
type FileItems []FileItem

// Options control how a directory becomes a story.
type Options struct {
	Title     string
	Duration  time.Duration
	Recursive bool
	// Shuffle randomises page order. Seed 0 picks a time based seed.
	Shuffle bool
	Seed    int64
	Logger  zerolog.Logger
}

// KindOf reports the page kind for a file name, or false when the file is
// not media a story can show.
func KindOf(name string) (story.Kind, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".webp", ".bmp":
		return story.KindImage, true
	case ".gif":
		return story.KindGIF, true
	case ".mp4", ".webm", ".mov", ".m4v":
		return story.KindVideo, true
	default:
		return 0, false
	}
}

// Find returns the non-empty media files under dir sorted by path. Hidden
// directories are skipped.
func Find(dir string, recursive bool) (FileItems, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	var items FileItems
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		// ignore dir itself to avoid skipping everything
		if d.IsDir() {
			if p != root && (!recursive || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		kind, ok := KindOf(p)
		if !ok || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() == 0 {
			return nil
		}
		items = append(items, FileItem{Path: p, Kind: kind, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
	return items, nil
}

// BuildDocument turns the media in dir into a story document, one page per
// file, captioned with the file name.
func BuildDocument(dir string, opts Options) (*config.Document, error) {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.Title == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		opts.Title = filepath.Base(abs)
	}

	files, err := Find(dir, opts.Recursive)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no media found in %s", story.ErrEmptyStory, dir)
	}
	if opts.Shuffle {
		seed := opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(files), func(i, j int) { files[i], files[j] = files[j], files[i] })
	}

	doc := &config.Document{Title: opts.Title}
	for _, f := range files {
		base := filepath.Base(f.Path)
		doc.Items = append(doc.Items, config.ItemSpec{
			Kind:     f.Kind.String(),
			Source:   f.Path,
			Caption:  strings.TrimSuffix(base, filepath.Ext(base)),
			Duration: opts.Duration,
		})
	}
	opts.Logger.Info().Str("dir", dir).Str("title", opts.Title).Int("pages", len(doc.Items)).Msg("scanned story")
	return doc, nil
}
