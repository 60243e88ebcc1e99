// Package library stores story definitions in a bbolt database. Stories are
// looked up by ID or title and may carry tags. Playback position is never
// stored.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"

	"storyview/internal/config"
)

const (
	StoriesBucket    = "Stories"    // story ID to JSON record
	TitlesBucket     = "Titles"     // folded title to story ID
	StoryTagsBucket  = "StoryTags"  // story ID to tag list
	TagStoriesBucket = "TagStories" // tag to story ID list
)

// ErrNotFound is returned when no story matches a reference.
var ErrNotFound = errors.New("story not found")

// Record is a stored story.
type Record struct {
	ID       string          `json:"id"`
	Document config.Document `json:"document"`
	Created  time.Time       `json:"created"`
	Updated  time.Time       `json:"updated"`
}

// TagWithCount holds a tag name and the number of stories carrying it.
type TagWithCount struct {
	Name  string
	Count int
}

// Store is the story library.
type Store struct {
	db  *bolt.DB
	log zerolog.Logger
}

// Open creates or opens the library at path, creating parent directories and
// buckets as needed.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	if path == "" {
		path = config.DefaultLibraryPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open library %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{StoriesBucket, TitlesBucket, StoryTagsBucket, TagStoriesBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger = logger.With().Str("component", "library").Logger()
	logger.Debug().Str("path", path).Msg("library opened")
	return &Store{db: db, log: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file.
func (s *Store) Path() string { return s.db.Path() }

func titleKey(title string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(title)))
}

// Put validates and stores doc. A story with the same title is replaced and
// keeps its ID, tags and creation time.
func (s *Store) Put(doc *config.Document) (Record, error) {
	if strings.TrimSpace(doc.Title) == "" {
		return Record{}, fmt.Errorf("story title cannot be empty")
	}
	if err := doc.Validate(); err != nil {
		return Record{}, fmt.Errorf("story %q: %w", doc.Title, err)
	}

	now := time.Now().UTC()
	rec := Record{Document: *doc, Created: now, Updated: now}
	err := s.db.Update(func(tx *bolt.Tx) error {
		stories := tx.Bucket([]byte(StoriesBucket))
		titles := tx.Bucket([]byte(TitlesBucket))

		if id := titles.Get(titleKey(doc.Title)); id != nil {
			prev, err := decodeRecord(stories.Get(id))
			if err != nil {
				return fmt.Errorf("failed to decode story %s: %w", id, err)
			}
			rec.ID = prev.ID
			rec.Created = prev.Created
		} else {
			rec.ID = uuid.NewString()
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode story %q: %w", doc.Title, err)
		}
		if err := stories.Put([]byte(rec.ID), data); err != nil {
			return err
		}
		return titles.Put(titleKey(doc.Title), []byte(rec.ID))
	})
	if err != nil {
		return Record{}, err
	}
	s.log.Info().Str("id", rec.ID).Str("title", doc.Title).Int("items", len(doc.Items)).Msg("story saved")
	return rec, nil
}

// Get returns the story with the given ID.
func (s *Store) Get(id string) (Record, error) {
	var rec Record
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		rec, err = getRecord(tx, []byte(id))
		return err
	})
	return rec, err
}

// FindByTitle returns the story with the given title, ignoring case.
func (s *Store) FindByTitle(title string) (Record, error) {
	var rec Record
	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket([]byte(TitlesBucket)).Get(titleKey(title))
		if id == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, title)
		}
		var err error
		rec, err = getRecord(tx, id)
		return err
	})
	return rec, err
}

// Resolve looks ref up as an ID first and as a title second.
func (s *Store) Resolve(ref string) (Record, error) {
	var rec Record
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		rec, err = resolve(tx, ref)
		return err
	})
	return rec, err
}

// List returns every story sorted by title.
func (s *Store) List() ([]Record, error) {
	var records []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(StoriesBucket)).ForEach(func(k, v []byte) error {
			rec, err := decodeRecord(v)
			if err != nil {
				s.log.Warn().Err(err).Str("id", string(k)).Msg("skipping unreadable story")
				return nil
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	sortByTitle(records)
	return records, nil
}

// Delete removes a story and its tags.
func (s *Store) Delete(ref string) error {
	var title string
	err := s.db.Update(func(tx *bolt.Tx) error {
		rec, err := resolve(tx, ref)
		if err != nil {
			return err
		}
		title = rec.Document.Title
		id := []byte(rec.ID)

		tags, err := decodeList(tx.Bucket([]byte(StoryTagsBucket)).Get(id))
		if err != nil {
			return fmt.Errorf("failed to decode tags for story %s: %w", rec.ID, err)
		}
		for _, tag := range tags {
			if _, err := updateStoredList(tx, []byte(TagStoriesBucket), []byte(tag), rec.ID, false); err != nil {
				return fmt.Errorf("failed to untag story %s from %q: %w", rec.ID, tag, err)
			}
		}
		if err := tx.Bucket([]byte(StoryTagsBucket)).Delete(id); err != nil {
			return err
		}
		if err := tx.Bucket([]byte(TitlesBucket)).Delete(titleKey(title)); err != nil {
			return err
		}
		return tx.Bucket([]byte(StoriesBucket)).Delete(id)
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("title", title).Msg("story removed")
	return nil
}

func resolve(tx *bolt.Tx, ref string) (Record, error) {
	if tx.Bucket([]byte(StoriesBucket)).Get([]byte(ref)) != nil {
		return getRecord(tx, []byte(ref))
	}
	if id := tx.Bucket([]byte(TitlesBucket)).Get(titleKey(ref)); id != nil {
		return getRecord(tx, id)
	}
	return Record{}, fmt.Errorf("%w: %q", ErrNotFound, ref)
}

func getRecord(tx *bolt.Tx, id []byte) (Record, error) {
	data := tx.Bucket([]byte(StoriesBucket)).Get(id)
	if data == nil {
		return Record{}, fmt.Errorf("%w: %q", ErrNotFound, string(id))
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return Record{}, fmt.Errorf("failed to decode story %s: %w", id, err)
	}
	return rec, nil
}

func decodeRecord(data []byte) (Record, error) {
	var rec Record
	err := json.Unmarshal(data, &rec)
	return rec, err
}

func sortByTitle(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		return strings.ToLower(records[i].Document.Title) < strings.ToLower(records[j].Document.Title)
	})
}
