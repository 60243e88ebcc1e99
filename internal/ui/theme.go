package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// storyTheme wraps an existing theme, forces the dark variant and trims
// padding so the progress bars sit close together.
type storyTheme struct {
	fyne.Theme
}

var _ fyne.Theme = (*storyTheme)(nil)

func (t *storyTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 2
	case theme.SizeNameInnerPadding:
		return 2
	}
	return t.Theme.Size(name)
}

func (t *storyTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return t.Theme.Color(name, theme.VariantDark)
}

func (t *storyTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.Theme.Font(style)
}

func (t *storyTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.Theme.Icon(name)
}

// NewStoryTheme creates the viewer theme on top of baseTheme.
func NewStoryTheme(baseTheme fyne.Theme) fyne.Theme {
	return &storyTheme{Theme: baseTheme}
}
