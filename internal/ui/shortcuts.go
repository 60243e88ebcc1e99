package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

var shortcutHelp = []struct{ description, keys string }{
	{"Quit", "Ctrl+Q or Q"},
	{"Next Page", "Arrow Right"},
	{"Previous Page", "Arrow Left"},
	{"Play / Pause", "P or Space"},
	{"Close Dialog", "Esc"},
}

func (a *App) buildKeyboardShortcuts() {
	// ctrl+q to quit application
	a.win.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyQ,
		Modifier: a.mainModKey,
	}, func(_ fyne.Shortcut) { a.app.Quit() })

	a.win.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeyRight:
			a.player.Advance()
		case fyne.KeyLeft:
			a.player.Rewind()
		case fyne.KeyP, fyne.KeySpace:
			a.player.Toggle()
		case fyne.KeyQ:
			a.app.Quit()
		// close dialogs with esc key
		case fyne.KeyEscape:
			if len(a.win.Canvas().Overlays().List()) > 0 {
				a.win.Canvas().Overlays().Top().Hide()
			}
		}
	})
}

func (a *App) showShortcuts() {
	win := a.app.NewWindow("Keyboard Shortcuts")
	table := widget.NewTable(
		func() (int, int) { return len(shortcutHelp) + 1, 2 }, // +1 for header row
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			if id.Row == 0 {
				label.TextStyle.Bold = true
				label.SetText([]string{"Description", "Shortcut"}[id.Col])
				return
			}
			label.TextStyle.Bold = false
			row := shortcutHelp[id.Row-1]
			if id.Col == 0 {
				label.SetText(row.description)
			} else {
				label.SetText(row.keys)
			}
		},
	)
	table.SetColumnWidth(0, 200)
	table.SetColumnWidth(1, 200)
	win.SetContent(table)
	win.Resize(fyne.NewSize(400, 260))
	win.Show()
}
