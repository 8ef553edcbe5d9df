package ui

import (
	"strings"

	"github.com/go-go-golems/skycast/pkg/conversation"
)

func (m Model) View() string {
	return strings.Join([]string{
		m.headerView(),
		m.viewport.View(),
		m.statusView(),
		m.inputView(),
		m.hintView(),
		m.help.View(m.keyMap),
	}, "\n")
}

func (m Model) headerView() string {
	return m.style.Header.Render(Title)
}

func (m Model) statusView() string {
	switch {
	case m.state == StateAwaiting:
		return m.spinner.View() + " " + m.style.Status.Render(PendingText)
	case m.err != nil:
		return m.style.Error.Render("✗ " + m.err.Error())
	case m.status != "":
		return m.style.Status.Render(m.status)
	}
	return ""
}

func (m Model) inputView() string {
	if m.textArea.Focused() {
		return m.style.FocusedInput.Render(m.textArea.View())
	}
	return m.style.BlurredInput.Render(m.textArea.View())
}

func (m Model) hintView() string {
	return m.style.Hint.Render(InputHint)
}

func (m Model) messageView() string {
	var b strings.Builder
	for _, turn := range m.turns {
		b.WriteString(m.turnView(turn))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) turnView(turn conversation.Turn) string {
	if turn.IsUser() {
		box := m.style.UserMessage.Width(m.contentWidth())
		return m.style.UserLabel.Render(UserLabel) + "\n" + box.Render(turn.Content)
	}

	content := turn.Content
	if m.renderer != nil {
		rendered, err := m.renderer.Render(turn.Content)
		if err == nil {
			content = strings.Trim(rendered, "\n")
		}
	}
	return m.style.AssistantLabel.Render(AssistantLabel) + "\n" + m.style.AssistantMessage.Render(content)
}
