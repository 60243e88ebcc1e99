// Package ui is the fyne story viewer: progress bars, the active page, tap
// and hold regions and keyboard shortcuts.
package ui

import (
	"context"
	"fmt"
	"runtime"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"storyview/internal/config"
	"storyview/internal/controller"
	"storyview/internal/playback"
	"storyview/internal/story"
)

// Options configure the viewer.
type Options struct {
	Settings   *config.Settings
	Logger     zerolog.Logger
	Controller *controller.Controller
	Clock      clockwork.Clock
	// OnComplete, if set, is called on the UI goroutine every time the
	// story finishes.
	OnComplete func()
}

// App is one story window.
type App struct {
	app  fyne.App
	win  fyne.Window
	doc  *config.Document
	opts Options
	log  zerolog.Logger

	player *playback.Player
	clock  clockwork.Clock

	page       *pageView
	bars       *progressBars
	tap        *tapArea
	playBtn    *widget.Button
	status     *widget.Label
	logUI      *LogUIManager
	mainModKey fyne.KeyModifier

	last playback.Snapshot
}

// NewApp builds the window and the player for doc. Nothing plays until
// Start or Run.
func NewApp(fa fyne.App, doc *config.Document, opts Options) (*App, error) {
	items, err := doc.Items()
	if err != nil {
		return nil, fmt.Errorf("cannot show %q: %w", doc.Title, err)
	}
	if opts.Settings == nil {
		opts.Settings = config.Defaults()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	a := &App{
		app:   fa,
		doc:   doc,
		opts:  opts,
		clock: opts.Clock,
	}
	a.win = fa.NewWindow("Storyview - " + doc.Title)
	a.buildMainUI(len(items))
	a.log = opts.Logger.Hook(a.logUI).With().Str("story", doc.Title).Logger()

	engineOpts := doc.PlaybackOptions()
	engineOpts.Controller = opts.Controller
	engineOpts.FastForward = opts.Settings.Playback.FastForward
	engineOpts.Clock = opts.Clock
	engineOpts.Logger = a.log
	engineOpts.OnStoryShow = a.onStoryShow
	engineOpts.OnComplete = a.onComplete

	engine, err := playback.NewEngine(items, engineOpts)
	if err != nil {
		return nil, err
	}
	a.player = playback.NewPlayer(engine, playback.PlayerConfig{
		FrameInterval: opts.Settings.Playback.FrameInterval(),
		HoldDelay:     opts.Settings.Playback.HoldDelay,
		Clock:         opts.Clock,
		Logger:        a.log,
	})
	return a, nil
}

// Player returns the player driving this window.
func (a *App) Player() *playback.Player { return a.player }

// Window returns the story window.
func (a *App) Window() fyne.Window { return a.win }

// Start begins playback and the render loop.
func (a *App) Start(ctx context.Context) error {
	if err := a.player.Start(ctx); err != nil {
		return err
	}
	go a.renderLoop(ctx)
	return nil
}

// Run starts playback, shows the window and blocks until the app quits.
func (a *App) Run(ctx context.Context) error {
	a.app.Settings().SetTheme(NewStoryTheme(theme.DefaultTheme()))
	if err := a.Start(ctx); err != nil {
		return err
	}
	a.win.SetOnClosed(a.player.Close)
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(a.app.Quit)
		case <-a.player.Done():
		}
	}()
	a.win.ShowAndRun()
	a.player.Close()
	return nil
}

func (a *App) buildMainUI(n int) {
	// set main mod key to super on darwin hosts, else set it to ctrl
	if runtime.GOOS == "darwin" {
		a.mainModKey = fyne.KeyModifierSuper
	} else {
		a.mainModKey = fyne.KeyModifierControl
	}

	a.page = newPageView()
	a.bars = newProgressBars(n)
	a.tap = newTapArea(
		func(x, width float64) { a.player.Press(x, width) },
		func() { a.player.Release() },
		func() { a.player.CancelPress() },
	)

	a.buildMenu()
	a.buildKeyboardShortcuts()

	a.win.SetContent(container.NewBorder(
		a.buildToolbar(),
		a.buildStatusBar(),
		nil, nil,
		a.buildStage(),
	))
	a.win.Resize(fyne.NewSize(420, 740))
}

// buildStage lays the bars over or around the page depending on the story.
func (a *App) buildStage() fyne.CanvasObject {
	bars := container.NewPadded(a.bars.Object())
	var top, bottom fyne.CanvasObject = bars, nil
	indicator, _ := config.ParseIndicator(a.doc.ProgressPosition)
	if indicator == playback.IndicatorBottom {
		top, bottom = nil, bars
	}
	if a.doc.Inline {
		return container.NewStack(
			a.page.Object(),
			container.NewBorder(top, bottom, nil, nil),
			a.tap,
		)
	}
	return container.NewBorder(top, bottom, nil, nil,
		container.NewStack(a.page.Object(), a.tap))
}

func (a *App) buildToolbar() *widget.Toolbar {
	return widget.NewToolbar(
		widget.NewToolbarAction(theme.MediaSkipPreviousIcon(), func() { a.player.Rewind() }),
		widget.NewToolbarAction(theme.MediaPauseIcon(), func() { a.player.Toggle() }),
		widget.NewToolbarAction(theme.MediaSkipNextIcon(), func() { a.player.Advance() }),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.InfoIcon(), a.showAbout),
	)
}

func (a *App) buildStatusBar() fyne.CanvasObject {
	a.status = widget.NewLabel("")
	a.playBtn = widget.NewButtonWithIcon("", theme.MediaPauseIcon(), func() { a.player.Toggle() })

	logLabel := widget.NewLabel("")
	logLabel.Truncation = fyne.TextTruncateEllipsis
	var up, down *widget.Button
	up = widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() { a.logUI.ShowPreviousLogMessage() })
	down = widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() { a.logUI.ShowNextLogMessage() })
	a.logUI = NewLogUIManager(logLabel, up, down, DefaultMaxLogMessages)
	a.logUI.UpdateLogDisplay()

	return container.NewVBox(
		widget.NewSeparator(),
		container.NewBorder(nil, nil, a.playBtn, nil, a.status),
		container.NewBorder(nil, nil, nil, container.NewHBox(up, down), logLabel),
	)
}

func (a *App) buildMenu() {
	a.win.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("Story",
			fyne.NewMenuItem("Play / Pause", func() { a.player.Toggle() }),
			fyne.NewMenuItem("Next Page", func() { a.player.Advance() }),
			fyne.NewMenuItem("Previous Page", func() { a.player.Rewind() }),
		),
		fyne.NewMenu("Help",
			fyne.NewMenuItem("Keyboard Shortcuts", a.showShortcuts),
			fyne.NewMenuItem("About", a.showAbout),
		),
	))
}

// onStoryShow runs on the player goroutine.
func (a *App) onStoryShow(index int, item story.Item) {
	page, ok := item.Page()
	if !ok {
		page = story.Page{Kind: story.KindText, Text: fmt.Sprint(item.Payload), Background: config.DefaultBackground}
	}
	a.log.Debug().Int("index", index).Str("kind", page.Kind.String()).Msg("story shown")
	fyne.Do(func() { a.page.Show(page) })
}

// onComplete runs on the player goroutine.
func (a *App) onComplete() {
	a.log.Info().Bool("repeat", a.doc.Repeat).Msg("story complete")
	if a.opts.OnComplete != nil {
		fyne.Do(a.opts.OnComplete)
	}
}

func (a *App) renderLoop(ctx context.Context) {
	ticker := a.clock.NewTicker(a.opts.Settings.Playback.FrameInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.player.Done():
			return
		case <-ticker.Chan():
			snap, ok := a.player.Snapshot()
			if !ok {
				return
			}
			fyne.Do(func() { a.render(snap) })
		}
	}
}

// Refresh pulls the current state and redraws. Call it on the UI goroutine.
func (a *App) Refresh() {
	if snap, ok := a.player.Snapshot(); ok {
		a.render(snap)
	}
}

func (a *App) render(s playback.Snapshot) {
	a.bars.Update(s.Bars)
	if s.State == a.last.State && s.Active == a.last.Active && a.status.Text != "" {
		a.last = s
		return
	}
	a.last = s

	switch s.State {
	case playback.StatePlaying:
		a.playBtn.SetIcon(theme.MediaPauseIcon())
		a.status.SetText(fmt.Sprintf("Page %d of %d", s.Active+1, len(s.Bars)))
	case playback.StatePaused:
		a.playBtn.SetIcon(theme.MediaPlayIcon())
		a.status.SetText(fmt.Sprintf("Page %d of %d | Paused", s.Active+1, len(s.Bars)))
	default:
		a.playBtn.SetIcon(theme.MediaReplayIcon())
		a.status.SetText("Finished")
	}
}
