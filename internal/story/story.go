// Package story defines the pages of a story and the timing attached to them.
package story

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"

	"go.uber.org/multierr"
)

var (
	// ErrEmptyStory is returned when a story has no items to play.
	ErrEmptyStory = errors.New("story has no items")
	// ErrNonPositiveDuration is returned when an item cannot be timed.
	ErrNonPositiveDuration = errors.New("item duration must be positive")
)

// Kind identifies how a page payload is rendered.
type Kind int

const (
	KindText Kind = iota
	KindImage
	KindGIF
	KindVideo
)

var kindNames = map[Kind]string{
	KindText:  "text",
	KindImage: "image",
	KindGIF:   "gif",
	KindVideo: "video",
}

// String returns the lower case name used in story documents.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind converts a document name back into a Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return KindText, nil
	}
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown page kind %q", s)
}

// Page is the renderable payload of an item. The playback core never looks
// inside it.
type Page struct {
	Kind       Kind
	Text       string
	Source     string // file path or URL for image, gif and video pages
	Caption    string
	Background color.NRGBA
}

// Item is one timed page of a story.
type Item struct {
	Payload  any
	Duration time.Duration
	// Shown is set once the item has completed playback or was skipped.
	Shown bool
}

// NewItem creates an unshown item.
func NewItem(payload any, d time.Duration) Item {
	return Item{Payload: payload, Duration: d}
}

// Page returns the payload as a Page when it is one.
func (it Item) Page() (Page, bool) {
	switch p := it.Payload.(type) {
	case Page:
		return p, true
	case *Page:
		if p != nil {
			return *p, true
		}
	}
	return Page{}, false
}

// Validate reports every precondition the items violate.
func Validate(items []Item) error {
	if len(items) == 0 {
		return ErrEmptyStory
	}
	var err error
	for i, it := range items {
		if it.Duration <= 0 {
			err = multierr.Append(err, fmt.Errorf("item %d: %w (got %s)", i, ErrNonPositiveDuration, it.Duration))
		}
	}
	return err
}
