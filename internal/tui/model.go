package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/koscakluka/ema-avatar/core"
	"github.com/koscakluka/ema-avatar/core/events"
	"github.com/muesli/reflow/wordwrap"
)

// Controller is the part of the orchestrator the terminal surface drives.
type Controller interface {
	Connect(ctx context.Context) error
	Send(ctx context.Context, text string) (orchestration.Turn, error)
	StartCapture(ctx context.Context) error
	StopCapture(ctx context.Context) (*orchestration.Turn, error)
	Snapshot() orchestration.Snapshot
}

type eventMsg struct{ event events.Event }

// actionDoneMsg reports the end of a blocking controller call. Failures are
// already in the orchestrator log, so the error is not shown again.
type actionDoneMsg struct{ err error }

type Model struct {
	ctx        context.Context
	controller Controller

	snapshot orchestration.Snapshot
	lines    []string
	input    textinput.Model
	log      viewport.Model

	width  int
	height int
}

func NewModel(ctx context.Context, controller Controller) Model {
	input := textinput.New()
	input.Placeholder = "Type a message and press enter"
	input.CharLimit = 2000
	input.Prompt = "> "
	input.Focus()

	m := Model{
		ctx:        ctx,
		controller: controller,
		snapshot:   controller.Snapshot(),
		input:      input,
		log:        viewport.New(80, 10),
		width:      80,
	}
	for _, entry := range m.snapshot.Log {
		m.lines = append(m.lines, entry.String())
	}
	m.refreshLog()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.connect())
}

func (m Model) connect() tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: m.controller.Connect(m.ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.send()
		case tea.KeyCtrlR:
			return m, m.toggleCapture()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		m.log.Width = max(msg.Width-4, 10)
		m.log.Height = max(msg.Height-8, 3)
		m.refreshLog()
		return m, nil

	case eventMsg:
		m.snapshot = m.controller.Snapshot()
		switch event := msg.event.(type) {
		case events.LogAppended:
			m.lines = append(m.lines, event.Entry.String())
			m.refreshLog()
		case events.CaptureTranscriptUpdated:
			m.input.SetValue(event.Transcript)
			m.input.CursorEnd()
		case events.CaptureStopped:
			m.input.SetValue("")
		}
		return m, nil

	case actionDoneMsg:
		m.snapshot = m.controller.Snapshot()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) send() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || !m.snapshot.CanSend() || m.snapshot.CaptureState == orchestration.CaptureStateRecording {
		return m, nil
	}

	m.input.SetValue("")
	return m, func() tea.Msg {
		_, err := m.controller.Send(m.ctx, text)
		return actionDoneMsg{err: err}
	}
}

func (m Model) toggleCapture() tea.Cmd {
	if !m.snapshot.CanToggleCapture() {
		return nil
	}

	if m.snapshot.CaptureState == orchestration.CaptureStateRecording {
		return func() tea.Msg {
			_, err := m.controller.StopCapture(m.ctx)
			return actionDoneMsg{err: err}
		}
	}
	return func() tea.Msg {
		return actionDoneMsg{err: m.controller.StartCapture(m.ctx)}
	}
}

func (m *Model) refreshLog() {
	width := max(m.log.Width-2, 10)
	wrapped := make([]string, 0, len(m.lines))
	for _, line := range m.lines {
		wrapped = append(wrapped, wordwrap.String(line, width))
	}
	m.log.SetContent(strings.Join(wrapped, "\n"))
	m.log.GotoBottom()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ema avatar"))
	b.WriteString("  ")
	b.WriteString(statusDot(m.snapshot.Status))
	if m.snapshot.CaptureState == orchestration.CaptureStateRecording {
		b.WriteString("  ")
		b.WriteString(recordStyle.Render("● REC"))
	}
	if !m.snapshot.ControlsEnabled {
		b.WriteString("  ")
		b.WriteString(mutedStyle.Render("thinking…"))
	}
	b.WriteString("\n")

	b.WriteString(logFrameStyle.Render(m.log.View()))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	help := "enter send · ctrl+c quit"
	if m.snapshot.CaptureAvailable {
		help = "enter send · ctrl+r talk · ctrl+c quit"
	}
	b.WriteString(mutedStyle.Render(help))

	return b.String()
}
