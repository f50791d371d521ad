package ui

import (
	"github.com/desertthunder/yt2text/internal/tasks"
)

// viewUpdateMsg carries the next [tasks.TaskView] off the engine channel.
type viewUpdateMsg tasks.TaskView

// submittedMsg reports the outcome of a submission started from the TUI.
type submittedMsg struct {
	err error
}

// copiedMsg reports the outcome of a clipboard copy.
type copiedMsg struct {
	err error
}

// openedMsg reports the outcome of opening the video in the browser.
type openedMsg struct {
	err error
}

// flashClearMsg clears a transient status flash.
type flashClearMsg struct{}
