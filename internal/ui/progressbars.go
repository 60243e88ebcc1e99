package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// progressBars draws one bar per item, side by side.
type progressBars struct {
	box  *fyne.Container
	bars []*widget.ProgressBar
}

func newProgressBars(n int) *progressBars {
	b := &progressBars{bars: make([]*widget.ProgressBar, n)}
	objects := make([]fyne.CanvasObject, n)
	for i := range b.bars {
		bar := widget.NewProgressBar()
		bar.TextFormatter = func() string { return "" }
		b.bars[i] = bar
		objects[i] = bar
	}
	b.box = container.NewGridWithColumns(max(n, 1), objects...)
	return b
}

func (b *progressBars) Object() fyne.CanvasObject { return b.box }

// Update sets each bar from values. Unchanged bars are not refreshed.
func (b *progressBars) Update(values []float64) {
	for i, bar := range b.bars {
		v := 0.0
		if i < len(values) {
			v = values[i]
		}
		if bar.Value != v {
			bar.SetValue(v)
		}
	}
}

// Values returns the current bar values.
func (b *progressBars) Values() []float64 {
	out := make([]float64, len(b.bars))
	for i, bar := range b.bars {
		out[i] = bar.Value
	}
	return out
}
