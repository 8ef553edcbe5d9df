package ui

import (
	"github.com/go-go-golems/skycast/pkg/conversation"
	"github.com/go-go-golems/skycast/pkg/events"
)

// turnAppendedMsg carries a turn event from the event router into the program.
type turnAppendedMsg struct {
	event *events.TurnEvent
}

// requestDoneMsg is sent once the assistant turn for a submission is in the log.
type requestDoneMsg struct {
	turn conversation.Turn
}

type exportedMsg struct {
	path string
}

type errMsg struct {
	err error
}
