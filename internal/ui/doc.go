// Package ui implements the interactive watch surface using bubbletea's Elm architecture.
//
// The [Model] tracks a single video session: it consumes [tasks.TaskView]
// snapshots from the engine's update channel and renders label, status line,
// a spinner while the backend works, timing detail, and the transcript tail.
//
// Key bindings: s submits (or retries) the current video, c copies the
// finished transcript to the clipboard, o opens the video in the browser,
// q quits. Contextual help renders via charmbracelet/bubbles/help.
package ui
