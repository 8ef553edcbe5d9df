package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/skycast/pkg/conversation"
	"github.com/go-go-golems/skycast/pkg/events"
	"github.com/go-go-golems/skycast/pkg/session"
)

// TurnQueue buffers turn events between the event router and the program.
// Turns appended from within Update land here without blocking the program.
type TurnQueue struct {
	ch chan *events.TurnEvent
}

func NewTurnQueue(size int) *TurnQueue {
	if size <= 0 {
		size = 64
	}
	return &TurnQueue{ch: make(chan *events.TurnEvent, size)}
}

// Handler is registered on the event router for events.TopicTurns.
func (q *TurnQueue) Handler() events.TurnHandler {
	return func(ctx context.Context, e *events.TurnEvent) error {
		select {
		case q.ch <- e:
		case <-ctx.Done():
		}
		return nil
	}
}

// Next waits for the next queued turn.
func (q *TurnQueue) Next() tea.Cmd {
	return func() tea.Msg {
		return turnAppendedMsg{event: <-q.ch}
	}
}

func waitForRequestCmd(handle *session.ExecutionHandle) tea.Cmd {
	return func() tea.Msg {
		turn, err := handle.Wait()
		if err != nil {
			return errMsg{err: err}
		}
		return requestDoneMsg{turn: turn}
	}
}

func exportTranscriptCmd(log *conversation.Log, dir string, now time.Time) tea.Cmd {
	return func() tea.Msg {
		path := filepath.Join(dir, fmt.Sprintf("skycast-%s.json", now.Format("20060102-150405")))
		if err := log.SaveToFile(path); err != nil {
			return errMsg{err: err}
		}
		return exportedMsg{path: path}
	}
}
