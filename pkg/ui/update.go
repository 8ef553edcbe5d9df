package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/skycast/pkg/events"
	"github.com/go-go-golems/skycast/pkg/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if err := m.updateRenderer(); err != nil {
			m.err = err
		}
		m.recomputeSize()
		return m, nil

	case turnAppendedMsg:
		m.applyTurn(msg.event)
		m.refreshViewport()
		return m, m.queue.Next()

	case requestDoneMsg:
		m.state = StateIdle
		m.recomputeSize()
		return m, m.textArea.Focus()

	case spinner.TickMsg:
		if m.state != StateAwaiting {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case exportedMsg:
		m.err = nil
		m.status = fmt.Sprintf("Transcript saved to %s", msg.path)
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	m.textArea, cmd = m.textArea.Update(msg)
	return m, cmd
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		// a pending request is left to finish on its own
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.ScrollUp):
		m.viewport.SetYOffset(m.viewport.YOffset - m.viewport.Height)
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollDown):
		m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height)
		return m, nil

	case key.Matches(msg, m.keyMap.Export):
		return m, exportTranscriptCmd(m.session.Log(), m.exportDir, m.now())

	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()
	}

	if m.state == StateAwaiting {
		return m, nil
	}

	var cmd tea.Cmd
	m.textArea, cmd = m.textArea.Update(msg)
	m.session.SetDraft(m.textArea.Value())

	// the input may have grown or shrunk a line
	m.recomputeSize()
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.state == StateAwaiting {
		return m, nil
	}

	m.session.SetDraft(m.textArea.Value())
	handle, err := m.session.SubmitDraft(context.Background())
	switch {
	case errors.Is(err, session.ErrEmptyPrompt), errors.Is(err, session.ErrSessionAlreadyActive):
		return m, nil
	case err != nil:
		m.err = err
		return m, nil
	}

	log.Debug().Str("request_id", handle.RequestID).Msg("submitted from chat UI")

	m.textArea.Reset()
	m.textArea.Blur()
	m.state = StateAwaiting
	m.status = ""
	m.err = nil
	m.recomputeSize()

	return m, tea.Batch(waitForRequestCmd(handle), m.spinner.Tick)
}

// applyTurn folds a turn event into the local mirror of the log. Events that
// skip ahead resync from a snapshot.
func (m *Model) applyTurn(e *events.TurnEvent) {
	if e == nil {
		return
	}
	switch {
	case e.Index == len(m.turns):
		m.turns = append(m.turns, e.Turn)
	case e.Index > len(m.turns):
		m.turns = m.session.Snapshot()
	}
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.messageView())
	m.viewport.GotoBottom()
}

func (m *Model) recomputeSize() {
	headerHeight := lipgloss.Height(m.headerView())
	statusHeight := lipgloss.Height(m.statusView())
	inputHeight := lipgloss.Height(m.inputView())
	hintHeight := lipgloss.Height(m.hintView())
	helpHeight := lipgloss.Height(m.help.View(m.keyMap))

	newHeight := m.height - headerHeight - statusHeight - inputHeight - hintHeight - helpHeight
	if newHeight < 0 {
		newHeight = 0
	}
	m.viewport.Width = m.width
	m.viewport.Height = newHeight

	w := m.style.FocusedInput.GetHorizontalFrameSize()
	m.textArea.SetWidth(m.width - w)
	m.help.Width = m.width

	m.refreshViewport()
}
