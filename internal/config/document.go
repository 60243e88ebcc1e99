// Package config reads story documents and application settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"storyview/internal/playback"
	"storyview/internal/story"
)

// DefaultBackground is used for pages that do not set a background colour.
var DefaultBackground = color.NRGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff}

// ErrEmptyDocument is returned when a story file contains no YAML document.
var ErrEmptyDocument = errors.New("empty story document")

// Document is the on-disk form of a story.
type Document struct {
	Title            string     `yaml:"title" json:"title"`
	Repeat           bool       `yaml:"repeat,omitempty" json:"repeat,omitempty"`
	Inline           bool       `yaml:"inline,omitempty" json:"inline,omitempty"`
	ProgressPosition string     `yaml:"progress_position,omitempty" json:"progress_position,omitempty"`
	Items            []ItemSpec `yaml:"items" json:"items"`
}

// ItemSpec is one page of a Document.
type ItemSpec struct {
	Kind       string        `yaml:"kind,omitempty" json:"kind,omitempty"`
	Text       string        `yaml:"text,omitempty" json:"text,omitempty"`
	Source     string        `yaml:"source,omitempty" json:"source,omitempty"`
	Caption    string        `yaml:"caption,omitempty" json:"caption,omitempty"`
	Background string        `yaml:"background,omitempty" json:"background,omitempty"`
	Duration   time.Duration `yaml:"duration" json:"duration"`
	Shown      bool          `yaml:"shown,omitempty" json:"shown,omitempty"`
}

// ParseDocument decodes a story document. Unknown fields are rejected so
// typos do not silently change a story.
func ParseDocument(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, fmt.Errorf("failed to parse story: %w", err)
	}
	return &doc, nil
}

// LoadDocument reads and validates the story at path. A document without a
// title is named after its file.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read story %s: %w", path, err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Title == "" {
		doc.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Marshal encodes the document back to YAML.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode story: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate reports every problem in the document at once.
func (d *Document) Validate() error {
	var err error
	if _, perr := ParseIndicator(d.ProgressPosition); perr != nil {
		err = multierr.Append(err, perr)
	}
	if len(d.Items) == 0 {
		err = multierr.Append(err, story.ErrEmptyStory)
	}
	for i, spec := range d.Items {
		if _, ierr := spec.page(); ierr != nil {
			err = multierr.Append(err, fmt.Errorf("item %d: %w", i, ierr))
		}
		if spec.Duration <= 0 {
			err = multierr.Append(err, fmt.Errorf("item %d: %w (got %s)", i, story.ErrNonPositiveDuration, spec.Duration))
		}
	}
	return err
}

// Items converts the document into playable items.
func (d *Document) Items() ([]story.Item, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	items := make([]story.Item, len(d.Items))
	for i, spec := range d.Items {
		page, _ := spec.page()
		items[i] = story.NewItem(page, spec.Duration)
		items[i].Shown = spec.Shown
	}
	return items, nil
}

// PlaybackOptions returns the engine options the document asks for. Callers
// add callbacks, clock and controller.
func (d *Document) PlaybackOptions() playback.Options {
	indicator, _ := ParseIndicator(d.ProgressPosition)
	return playback.Options{
		Repeat:    d.Repeat,
		Inline:    d.Inline,
		Indicator: indicator,
	}
}

// TotalDuration is the time one pass over the story takes.
func (d *Document) TotalDuration() time.Duration {
	var total time.Duration
	for _, spec := range d.Items {
		total += spec.Duration
	}
	return total
}

func (s ItemSpec) page() (story.Page, error) {
	kind, err := story.ParseKind(s.Kind)
	if err != nil {
		return story.Page{}, err
	}
	bg := DefaultBackground
	if s.Background != "" {
		if bg, err = ParseColor(s.Background); err != nil {
			return story.Page{}, err
		}
	}
	if kind != story.KindText && s.Source == "" {
		return story.Page{}, fmt.Errorf("%s page needs a source", kind)
	}
	return story.Page{
		Kind:       kind,
		Text:       s.Text,
		Source:     s.Source,
		Caption:    s.Caption,
		Background: bg,
	}, nil
}

// ParseIndicator reads a progress_position value. Empty means top.
func ParseIndicator(s string) (playback.IndicatorPosition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "top":
		return playback.IndicatorTop, nil
	case "bottom":
		return playback.IndicatorBottom, nil
	default:
		return playback.IndicatorTop, fmt.Errorf("invalid progress_position %q, must be top or bottom", s)
	}
}

// ParseColor reads #RGB, #RRGGBB or #RRGGBBAA. The leading # is optional.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
