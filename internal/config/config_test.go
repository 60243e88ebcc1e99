package config

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyview/internal/gesture"
	"storyview/internal/playback"
	"storyview/internal/story"
)

const sampleStory = `title: Launch day
repeat: true
progress_position: bottom
items:
  - kind: text
    text: We shipped!
    background: "#2196F3"
    duration: 3s
  - kind: image
    source: team.jpg
    caption: The team
    duration: 5s
    shown: true
  - kind: video
    source: https://example.com/demo.mp4
    duration: 12s
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleStory))
	require.NoError(t, err)
	require.NoError(t, doc.Validate())

	assert.Equal(t, "Launch day", doc.Title)
	assert.True(t, doc.Repeat)
	require.Len(t, doc.Items, 3)
	assert.Equal(t, 5*time.Second, doc.Items[1].Duration)
	assert.Equal(t, 20*time.Second, doc.TotalDuration())

	opts := doc.PlaybackOptions()
	assert.True(t, opts.Repeat)
	assert.Equal(t, playback.IndicatorBottom, opts.Indicator)

	items, err := doc.Items()
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.True(t, items[1].Shown)

	page, ok := items[0].Page()
	require.True(t, ok)
	assert.Equal(t, story.KindText, page.Kind)
	assert.Equal(t, "We shipped!", page.Text)
	assert.Equal(t, color.NRGBA{R: 0x21, G: 0x96, B: 0xf3, A: 0xff}, page.Background)

	page, _ = items[2].Page()
	assert.Equal(t, story.KindVideo, page.Kind)
	assert.Equal(t, DefaultBackground, page.Background)
}

func TestParseDocumentErrors(t *testing.T) {
	_, err := ParseDocument(nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = ParseDocument([]byte("title: x\nitems: []\ncolour: red\n"))
	assert.Error(t, err, "unknown fields are rejected")

	_, err = ParseDocument([]byte("items:\n  - duration: soon\n"))
	assert.Error(t, err)
}

func TestDocumentValidateReportsEverything(t *testing.T) {
	doc := &Document{
		ProgressPosition: "left",
		Items: []ItemSpec{
			{Kind: "text", Duration: time.Second},
			{Kind: "hologram", Duration: time.Second},
			{Kind: "image", Duration: 0},
			{Background: "#zzz", Duration: time.Second},
		},
	}
	err := doc.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "progress_position")
	assert.Contains(t, msg, "item 1")
	assert.Contains(t, msg, "hologram")
	assert.Contains(t, msg, "image page needs a source")
	assert.Contains(t, msg, "item 3")
	assert.ErrorIs(t, err, story.ErrNonPositiveDuration)

	_, err = doc.Items()
	assert.Error(t, err)

	assert.ErrorIs(t, (&Document{}).Validate(), story.ErrEmptyStory)
}

func TestLoadDocument(t *testing.T) {
	path := writeFile(t, "morning.yaml", "items:\n  - text: hi\n    duration: 1s\n")
	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "morning", doc.Title, "title defaults to the file name")

	bad := writeFile(t, "bad.yaml", "items:\n  - text: hi\n")
	_, err = LoadDocument(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")

	_, err = LoadDocument(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDocumentMarshalRoundTrip(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleStory))
	require.NoError(t, err)

	data, err := doc.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "duration: 3s")

	again, err := ParseDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		err  bool
	}{
		{in: "#fff", want: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
		{in: "000000", want: color.NRGBA{A: 0xff}},
		{in: "#11223344", want: color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}},
		{in: "#12345", err: true},
		{in: "#gggggg", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, gesture.DefaultHoldDelay, cfg.Playback.HoldDelay)
		assert.Equal(t, playback.DefaultFastForward, cfg.Playback.FastForward)
		assert.Equal(t, time.Second/60, cfg.Playback.FrameInterval())
		assert.NotEmpty(t, cfg.Library.Path)
		require.NoError(t, cfg.Validate())
	})

	t.Run("missing file", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Defaults().Server, cfg.Server)
	})

	t.Run("file overlays defaults", func(t *testing.T) {
		path := writeFile(t, "storyview.yaml", `
library:
  path: /tmp/stories.db
playback:
  hold_delay: 300ms
  frame_rate: 30
logging:
  level: debug
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/stories.db", cfg.Library.Path)
		assert.Equal(t, 300*time.Millisecond, cfg.Playback.HoldDelay)
		assert.Equal(t, playback.DefaultFastForward, cfg.Playback.FastForward, "untouched keys keep defaults")
		assert.Equal(t, time.Second/30, cfg.Playback.FrameInterval())
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeFile(t, "storyview.yaml", "playback:\n  hold_delay: -1s\n  frame_rate: 0\nlogging:\n  level: loud\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "hold_delay")
		assert.Contains(t, err.Error(), "frame_rate")
		assert.Contains(t, err.Error(), "logging.level")
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggingSettings{Level: "warn"}, &buf)
	logger.Info().Msg("hidden")
	logger.Warn().Str("story", "x").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"visible"`)
	assert.Contains(t, out, `"story":"x"`)

	buf.Reset()
	logger = NewLogger(LoggingSettings{Level: "nonsense", Pretty: true}, &buf)
	logger.Info().Msg("pretty")
	assert.Contains(t, buf.String(), "pretty")
}
