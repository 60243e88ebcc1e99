package library

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	bolt "go.etcd.io/bbolt"
)

// AddTag attaches tag to the story ref resolves to.
func (s *Store) AddTag(ref, tag string) error {
	return s.updateTag(ref, tag, true)
}

// RemoveTag detaches tag from the story ref resolves to.
func (s *Store) RemoveTag(ref, tag string) error {
	return s.updateTag(ref, tag, false)
}

func (s *Store) updateTag(ref, tag string, add bool) error {
	tag = strings.TrimSpace(tag)
	if ref == "" || tag == "" {
		return fmt.Errorf("story and tag cannot be empty")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		rec, err := resolve(tx, ref)
		if err != nil {
			return err
		}
		if _, err := updateStoredList(tx, []byte(StoryTagsBucket), []byte(rec.ID), tag, add); err != nil {
			return fmt.Errorf("updating story->tags for %q: %w", rec.Document.Title, err)
		}
		if _, err := updateStoredList(tx, []byte(TagStoriesBucket), []byte(tag), rec.ID, add); err != nil {
			return fmt.Errorf("updating tag->stories for %q: %w", tag, err)
		}
		return nil
	})
}

// Tags returns the sorted tags of a story.
func (s *Store) Tags(ref string) ([]string, error) {
	var tags []string
	err := s.db.View(func(tx *bolt.Tx) error {
		rec, err := resolve(tx, ref)
		if err != nil {
			return err
		}
		tags, err = decodeList(tx.Bucket([]byte(StoryTagsBucket)).Get([]byte(rec.ID)))
		return err
	})
	sort.Strings(tags)
	return tags, err
}

// StoriesWithTag returns the stories carrying tag, sorted by title.
func (s *Store) StoriesWithTag(tag string) ([]Record, error) {
	var records []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		ids, err := decodeList(tx.Bucket([]byte(TagStoriesBucket)).Get([]byte(tag)))
		if err != nil {
			return fmt.Errorf("failed to decode stories for tag %q: %w", tag, err)
		}
		for _, id := range ids {
			rec, err := getRecord(tx, []byte(id))
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	sortByTitle(records)
	return records, err
}

// AllTags returns every tag with its story count, sorted by name.
func (s *Store) AllTags() ([]TagWithCount, error) {
	var all []TagWithCount
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(TagStoriesBucket)).ForEach(func(k, v []byte) error {
			ids, err := decodeList(v)
			if err != nil {
				s.log.Warn().Err(err).Str("tag", string(k)).Msg("skipping unreadable tag")
				return nil
			}
			all = append(all, TagWithCount{Name: string(k), Count: len(ids)})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

func encodeList(list []string) ([]byte, error) {
	return json.Marshal(list)
}

func decodeList(data []byte) ([]string, error) {
	list := []string{}
	if data == nil {
		return list, nil
	}
	err := json.Unmarshal(data, &list)
	return list, err
}

// updateStoredList adds or removes item in the JSON list stored under key.
// A list that becomes empty is deleted. It reports whether the list changed.
func updateStoredList(tx *bolt.Tx, bucketName, key []byte, item string, add bool) (bool, error) {
	bucket := tx.Bucket(bucketName)
	list, err := decodeList(bucket.Get(key))
	if err != nil {
		return false, fmt.Errorf("failed to decode list for %q in %s: %w", key, bucketName, err)
	}

	idx := -1
	for i, existing := range list {
		if existing == item {
			idx = i
			break
		}
	}
	switch {
	case add && idx < 0:
		list = append(list, item)
	case !add && idx >= 0:
		list = append(list[:idx], list[idx+1:]...)
	default:
		return false, nil
	}

	if len(list) == 0 {
		return true, bucket.Delete(key)
	}
	data, err := encodeList(list)
	if err != nil {
		return true, err
	}
	return true, bucket.Put(key, data)
}
