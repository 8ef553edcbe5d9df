// Package conversation holds the transcript of a chat: an ordered, append-only
// sequence of turns, seeded with a single assistant greeting.
//
// The Log is the single source of truth for what has been said. It is written by
// the session controller and observed by the presentation layer.
package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// WelcomeMessage is the content of the assistant turn every Log starts with.
const WelcomeMessage = "Hello! Ask me about the weather in any city. ✨"

// Turn is one message of the conversation. A Turn is a value: once appended to a
// Log it is never modified.
type Turn struct {
	ID      uuid.UUID `json:"id" yaml:"id"`
	Role    Role      `json:"role" yaml:"role"`
	Content string    `json:"content" yaml:"content"`
	Time    time.Time `json:"time" yaml:"time"`
}

type TurnOption func(*Turn)

func WithTime(t time.Time) TurnOption {
	return func(turn *Turn) {
		turn.Time = t
	}
}

func WithID(id uuid.UUID) TurnOption {
	return func(turn *Turn) {
		turn.ID = id
	}
}

func NewTurn(role Role, content string, options ...TurnOption) Turn {
	ret := Turn{
		ID:      uuid.New(),
		Role:    role,
		Content: content,
		Time:    time.Now(),
	}
	for _, option := range options {
		option(&ret)
	}
	return ret
}

func NewUserTurn(content string, options ...TurnOption) Turn {
	return NewTurn(RoleUser, content, options...)
}

func NewAssistantTurn(content string, options ...TurnOption) Turn {
	return NewTurn(RoleAssistant, content, options...)
}

func (t Turn) IsUser() bool {
	return t.Role == RoleUser
}

func (t Turn) IsAssistant() bool {
	return t.Role == RoleAssistant
}

func (t Turn) String() string {
	return fmt.Sprintf("[%s]: %s", t.Role, strings.TrimRight(t.Content, "\n"))
}
