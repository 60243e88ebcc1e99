package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// tapArea is a transparent widget laid over the page that reports presses
// with their horizontal position, so the caller can tell rewind taps from
// advance taps and holds. Mouse and touch input take the same path.
type tapArea struct {
	widget.BaseWidget
	bg *canvas.Rectangle

	onDown   func(x, width float64)
	onUp     func()
	onCancel func()
	pressed  bool
}

var (
	_ desktop.Mouseable = (*tapArea)(nil)
	_ desktop.Hoverable = (*tapArea)(nil)
	_ mobile.Touchable  = (*tapArea)(nil)
)

func newTapArea(onDown func(x, width float64), onUp, onCancel func()) *tapArea {
	t := &tapArea{
		bg:       canvas.NewRectangle(color.Transparent),
		onDown:   onDown,
		onUp:     onUp,
		onCancel: onCancel,
	}
	t.ExtendBaseWidget(t)
	return t
}

func (t *tapArea) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.bg)
}

func (t *tapArea) press(x float32) {
	if t.pressed {
		return
	}
	t.pressed = true
	if t.onDown != nil {
		t.onDown(float64(x), float64(t.Size().Width))
	}
}

func (t *tapArea) release() {
	if !t.pressed {
		return
	}
	t.pressed = false
	if t.onUp != nil {
		t.onUp()
	}
}

func (t *tapArea) cancel() {
	if !t.pressed {
		return
	}
	t.pressed = false
	if t.onCancel != nil {
		t.onCancel()
	}
}

// MouseDown starts a press. Only the primary button counts.
func (t *tapArea) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	t.press(ev.Position.X)
}

// MouseUp ends the press.
func (t *tapArea) MouseUp(*desktop.MouseEvent) { t.release() }

func (t *tapArea) MouseIn(*desktop.MouseEvent)    {}
func (t *tapArea) MouseMoved(*desktop.MouseEvent) {}

// MouseOut cancels a press that leaves the area.
func (t *tapArea) MouseOut() { t.cancel() }

// TouchDown starts a press on touch screens.
func (t *tapArea) TouchDown(ev *mobile.TouchEvent) { t.press(ev.Position.X) }

func (t *tapArea) TouchUp(*mobile.TouchEvent) { t.release() }

// TouchCancel fires when the system takes the touch away, for example for a
// scroll or a notification shade.
func (t *tapArea) TouchCancel(*mobile.TouchEvent) { t.cancel() }
