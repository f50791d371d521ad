package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/yt2text/internal/shared"
	"github.com/desertthunder/yt2text/internal/tasks"
)

// tailLines caps how much transcript the watch view shows while streaming.
const tailLines = 12

// Model is the watch surface: one subject, one live view of its job.
type Model struct {
	ctx    context.Context
	engine *tasks.SyncEngine

	view    tasks.TaskView
	width   int
	height  int
	flash   string
	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates the watch model around an engine that already has its
// subject set.
func NewModel(ctx context.Context, engine *tasks.SyncEngine) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.ok

	return &Model{
		ctx:     ctx,
		engine:  engine,
		view:    engine.View(),
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init subscribes to engine updates and starts the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForUpdate(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case viewUpdateMsg:
		m.view = tasks.TaskView(msg)
		return m, m.waitForUpdate()

	case submittedMsg:
		if msg.err != nil {
			m.flash = styles.err.Render(fmt.Sprintf("submission failed: %v", msg.err))
			return m, m.clearFlashLater()
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.flash = styles.err.Render(fmt.Sprintf("copy failed: %v", msg.err))
		} else {
			m.flash = styles.ok.Render("transcript copied")
		}
		return m, m.clearFlashLater()

	case openedMsg:
		if msg.err != nil {
			m.flash = styles.err.Render(fmt.Sprintf("could not open browser: %v", msg.err))
			return m, m.clearFlashLater()
		}
		return m, nil

	case flashClearMsg:
		m.flash = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the session: title, status, timing, transcript tail, help.
func (m *Model) View() string {
	var b strings.Builder

	label := m.view.Label
	if label == "" {
		label = "no video selected"
	}
	b.WriteString(styles.title.Render(label))
	b.WriteString("\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	if m.view.Warning != "" {
		b.WriteString(styles.warn.Render(m.view.Warning))
		b.WriteString("\n")
	}

	if detail := m.renderTiming(); detail != "" {
		b.WriteString(styles.help.Render(detail))
		b.WriteString("\n")
	}

	if m.view.Content != "" {
		b.WriteString("\n")
		b.WriteString(m.renderTranscript())
		b.WriteString("\n")
	}

	if m.flash != "" {
		b.WriteString("\n")
		b.WriteString(m.flash)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.helpKeys()))
	return b.String()
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.engine.Close()
		return m, tea.Quit

	case "s":
		return m, m.submit()

	case "c":
		if m.view.Action != tasks.ActionCopy || m.view.Content == "" {
			return m, nil
		}
		content := m.view.Content
		return m, func() tea.Msg {
			return copiedMsg{err: clipboard.WriteAll(content)}
		}

	case "o":
		subject := m.engine.Subject()
		if subject == nil {
			return m, nil
		}
		url := subject.CanonicalURL
		return m, func() tea.Msg {
			return openedMsg{err: shared.OpenBrowser(url)}
		}
	}
	return m, nil
}

func (m *Model) submit() tea.Cmd {
	return func() tea.Msg {
		return submittedMsg{err: m.engine.Submit(m.ctx)}
	}
}

// waitForUpdate blocks on the engine channel and feeds the next view into
// the Elm loop.
func (m *Model) waitForUpdate() tea.Cmd {
	updates := m.engine.Updates()
	return func() tea.Msg {
		view, ok := <-updates
		if !ok {
			return nil
		}
		return viewUpdateMsg(view)
	}
}

func (m *Model) clearFlashLater() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return flashClearMsg{}
	})
}

func (m *Model) renderStatus() string {
	line := m.view.StatusLine
	if line == "" {
		line = "ready"
	}

	switch {
	case m.view.Failed:
		line = styles.err.Render(line)
	case m.view.Busy:
		line = fmt.Sprintf("%s %s", m.spinner.View(), line)
	default:
		line = styles.ok.Render(line)
	}

	if m.view.Elapsed > 0 && m.view.Busy {
		line = fmt.Sprintf("%s (%s)", line, shared.FormatElapsed(m.view.Elapsed))
	}
	return line
}

func (m *Model) renderTiming() string {
	t := m.view.Timing
	if t == nil || t.Total == 0 {
		return ""
	}

	parts := []string{}
	if t.Download > 0 {
		parts = append(parts, fmt.Sprintf("download %s", shared.FormatElapsed(t.Download)))
	}
	if t.Whisper > 0 {
		parts = append(parts, fmt.Sprintf("whisper %s", shared.FormatElapsed(t.Whisper)))
	}
	if t.AIFormat > 0 {
		parts = append(parts, fmt.Sprintf("format %s", shared.FormatElapsed(t.AIFormat)))
	}
	parts = append(parts, fmt.Sprintf("total %s", shared.FormatElapsed(t.Total)))
	return strings.Join(parts, " · ")
}

// renderTranscript shows the whole body once done, the tail while streaming.
func (m *Model) renderTranscript() string {
	lines := strings.Split(m.view.Content, "\n")
	if m.view.Busy && len(lines) > tailLines {
		lines = lines[len(lines)-tailLines:]
	}
	return strings.Join(lines, "\n")
}

func (m *Model) helpKeys() []key.Binding {
	keys := []key.Binding{}
	switch m.view.Action {
	case tasks.ActionRetry:
		keys = append(keys, m.keys.submit)
	case tasks.ActionCopy:
		keys = append(keys, m.keys.copy)
	default:
		if !m.view.Busy {
			keys = append(keys, m.keys.submit)
		}
	}
	keys = append(keys, m.keys.open, m.keys.quit)
	return keys
}
