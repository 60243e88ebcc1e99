package ui

import (
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
)

const DefaultMaxLogMessages = 100

// LogUIManager keeps the recent log lines shown in the status bar and lets
// the user page through them. It doubles as a zerolog hook so anything the
// app logs at info or above also appears on screen.
type LogUIManager struct {
	mu              sync.Mutex
	logMessages     []string
	currentLogIndex int
	maxLogMessages  int

	// UI elements it controls
	statusLogLabel   *widget.Label
	statusLogUpBtn   *widget.Button
	statusLogDownBtn *widget.Button
}

var _ zerolog.Hook = (*LogUIManager)(nil)

func NewLogUIManager(logLabel *widget.Label, upBtn, downBtn *widget.Button, maxMessages int) *LogUIManager {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxLogMessages
	}
	return &LogUIManager{
		logMessages:      make([]string, 0, maxMessages),
		currentLogIndex:  -1,
		maxLogMessages:   maxMessages,
		statusLogLabel:   logLabel,
		statusLogUpBtn:   upBtn,
		statusLogDownBtn: downBtn,
	}
}

// Run implements zerolog.Hook. It may be called from any goroutine.
func (lm *LogUIManager) Run(_ *zerolog.Event, level zerolog.Level, message string) {
	if level < zerolog.InfoLevel || level == zerolog.NoLevel || message == "" {
		return
	}
	line := fmt.Sprintf("%s: %s", level, message)
	fyne.Do(func() { lm.AddLogMessage(line) })
}

// AddLogMessage appends a line and shows it. Call it on the UI goroutine.
func (lm *LogUIManager) AddLogMessage(message string) {
	lm.mu.Lock()
	lm.logMessages = append(lm.logMessages, message)
	if len(lm.logMessages) > lm.maxLogMessages {
		lm.logMessages = lm.logMessages[len(lm.logMessages)-lm.maxLogMessages:]
	}
	lm.currentLogIndex = len(lm.logMessages) - 1
	lm.mu.Unlock()
	lm.UpdateLogDisplay()
}

// Messages returns a copy of the stored lines, oldest first.
func (lm *LogUIManager) Messages() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return append([]string(nil), lm.logMessages...)
}

func (lm *LogUIManager) UpdateLogDisplay() {
	if lm.statusLogLabel == nil || lm.statusLogUpBtn == nil || lm.statusLogDownBtn == nil {
		return
	}
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if len(lm.logMessages) == 0 {
		lm.statusLogLabel.SetText("")
		lm.statusLogUpBtn.Disable()
		lm.statusLogDownBtn.Disable()
		return
	}

	if lm.currentLogIndex < 0 {
		lm.currentLogIndex = 0
	} else if lm.currentLogIndex >= len(lm.logMessages) {
		lm.currentLogIndex = len(lm.logMessages) - 1
	}

	lm.statusLogLabel.SetText(fmt.Sprintf("[%d/%d] %s", lm.currentLogIndex+1, len(lm.logMessages), lm.logMessages[lm.currentLogIndex]))
	if lm.currentLogIndex <= 0 {
		lm.statusLogUpBtn.Disable()
	} else {
		lm.statusLogUpBtn.Enable()
	}
	if lm.currentLogIndex >= len(lm.logMessages)-1 {
		lm.statusLogDownBtn.Disable()
	} else {
		lm.statusLogDownBtn.Enable()
	}
}

func (lm *LogUIManager) ShowPreviousLogMessage() {
	lm.mu.Lock()
	if len(lm.logMessages) == 0 || lm.currentLogIndex <= 0 {
		lm.mu.Unlock()
		return
	}
	lm.currentLogIndex--
	lm.mu.Unlock()
	lm.UpdateLogDisplay()
}

func (lm *LogUIManager) ShowNextLogMessage() {
	lm.mu.Lock()
	if len(lm.logMessages) == 0 || lm.currentLogIndex >= len(lm.logMessages)-1 {
		lm.mu.Unlock()
		return
	}
	lm.currentLogIndex++
	lm.mu.Unlock()
	lm.UpdateLogDisplay()
}
