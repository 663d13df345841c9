// Package tui provides the interactive terminal interface for the upload wizard.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/model"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/wizard"
)

// Model holds the wizard TUI state.
type Model struct {
	ctx        context.Context
	session    *wizard.Session
	progressCh chan model.UploadJob
	lastErr    error
	result     *model.UploadJob
	lastJob    *model.UploadJob
	keymap     KeyMap
	input      textinput.Model
	spinner    spinner.Model
	cursor     int
	width      int
	height     int
	busy       bool
	mapping    bool
	quitting   bool
	finished   bool
}

// New creates a wizard TUI model driving the given session.
func New(ctx context.Context, session *wizard.Session) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Placeholder = "target field"
	ti.CharLimit = 32

	return Model{
		ctx:        ctx,
		session:    session,
		keymap:     DefaultKeyMap(),
		spinner:    sp,
		input:      ti,
		progressCh: make(chan model.UploadJob, 8),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Result returns the final upload job once the wizard has finished.
func (m Model) Result() *model.UploadJob { return m.result }

// Err returns the error that ended the wizard, if any.
func (m Model) Err() error { return m.lastErr }

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case advancedMsg:
		m.busy = false
		m.lastErr = msg.err
		m.cursor = 0
		if msg.err == nil && m.session.Step() == wizard.StepUpload {
			return m, tea.Batch(m.startUpload(), m.waitForProgress())
		}
		return m, nil

	case uploadProgressMsg:
		m.lastJob = &msg.job
		return m, m.waitForProgress()

	case uploadDoneMsg:
		m.busy = false
		m.finished = true
		m.result = msg.job
		m.lastErr = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mapping {
		return m.handleMappingInput(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Cancel):
		m.session.Cancel()
		m.quitting = true
		return m, tea.Quit
	}

	if m.busy || m.finished {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Next):
		m.busy = true
		m.lastErr = nil
		return m, m.advance()

	case key.Matches(msg, m.keymap.Back):
		m.lastErr = m.session.Back()
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.session.Headers())-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keymap.Map):
		if m.session.Step() == wizard.StepMapColumns && len(m.session.Headers()) > 0 {
			m.mapping = true
			m.input.SetValue("")
			m.input.Focus()
			return m, textinput.Blink
		}
		return m, nil

	case key.Matches(msg, m.keymap.Ignore):
		if m.session.Step() == wizard.StepMapColumns && len(m.session.Headers()) > 0 {
			m.session.IgnoreColumn(m.session.Headers()[m.cursor])
		}
		return m, nil

	case key.Matches(msg, m.keymap.SkipToggle):
		if m.session.Step() == wizard.StepValidate {
			m.session.SetSkipInvalid(!m.session.SkipInvalid())
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleMappingInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		target := m.input.Value()
		if target != "" {
			m.session.MapColumn(m.session.Headers()[m.cursor], target)
		}
		m.mapping = false
		m.input.Blur()
		return m, nil
	case "esc":
		m.mapping = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// advance runs the session step transition off the UI goroutine.
func (m Model) advance() tea.Cmd {
	return func() tea.Msg {
		return advancedMsg{err: m.session.Next(m.ctx)}
	}
}

// startUpload polls the backend job in the background, streaming snapshots
// through progressCh until the job reaches a terminal state.
func (m Model) startUpload() tea.Cmd {
	session, ch := m.session, m.progressCh
	ctx := m.ctx
	return func() tea.Msg {
		job, err := session.AwaitUpload(ctx, func(j model.UploadJob) {
			select {
			case ch <- j:
			default:
			}
		})
		close(ch)
		return uploadDoneMsg{job: job, err: err}
	}
}

// waitForProgress delivers the next job snapshot from the poller.
func (m Model) waitForProgress() tea.Cmd {
	ch := m.progressCh
	return func() tea.Msg {
		job, ok := <-ch
		if !ok {
			return nil
		}
		return uploadProgressMsg{job: job}
	}
}
