package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// About describes the open story. Playback is suspended while it is shown
// and resumes afterwards if it was running.
type About struct {
	title     string
	parent    fyne.Window
	container *fyne.Container
	d         dialog.Dialog
	onShow    func()
	onHide    func()
}

func NewAbout(parent fyne.Window, title string, lines []string, onShow, onHide func()) *About {
	a := &About{
		title:  title,
		parent: parent,
		onShow: onShow,
		onHide: onHide,
	}

	vbox := container.NewVBox()
	for _, line := range lines {
		vbox.Add(widget.NewLabel(line))
	}

	ok := container.NewHBox(
		layout.NewSpacer(),
		widget.NewButton("OK", func() { a.Hide() }),
		layout.NewSpacer(),
	)

	a.container = container.NewBorder(nil, ok, nil, nil, vbox)
	return a
}

func (a *About) Hide() {
	if a.d != nil {
		a.d.Hide()
	}
}

func (a *About) Show() {
	a.d = dialog.NewCustomWithoutButtons(a.title, a.container, a.parent)
	a.d.SetOnClosed(func() {
		if a.onHide != nil {
			a.onHide()
		}
	})
	if a.onShow != nil {
		a.onShow()
	}
	a.d.Show()
}

func (a *App) showAbout() {
	lines := []string{
		a.doc.Title,
		fmt.Sprintf("%d pages, %s per pass", len(a.doc.Items), a.doc.TotalDuration()),
		fmt.Sprintf("Repeat: %t", a.doc.Repeat),
		"Tap the left third to go back, the rest to go forward.",
		"Press and hold to pause.",
	}
	NewAbout(a.win, "About this story", lines,
		func() { a.player.SuspendForOperation() },
		func() { a.player.ResumeAfterOperation() },
	).Show()
}
