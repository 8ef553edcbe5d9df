package session

import (
	"context"
	"strings"
	"sync"

	"github.com/go-go-golems/skycast/pkg/conversation"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrSessionNil           = errors.New("session is nil")
	ErrSessionAssistantNil  = errors.New("session has no assistant")
	ErrSessionAlreadyActive = errors.New("session already has a pending request")
	ErrEmptyPrompt          = errors.New("prompt is empty")
)

// ConnectionErrorMessage is the content of the assistant turn appended when the
// remote assistant could not produce a response.
const ConnectionErrorMessage = "⚠️ Connection error. Please ensure the backend is running on port 8000."

// Assistant is the remote service answering one user message at a time. Each call
// is independent: no conversation history is passed along.
type Assistant interface {
	Chat(ctx context.Context, message string) (string, error)
}

type AssistantFunc func(ctx context.Context, message string) (string, error)

func (f AssistantFunc) Chat(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}

// Session drives the request lifecycle of a single-user conversation.
//
// It owns:
// - the conversation log (seeded, append-only)
// - the draft the user is composing
// - the pending flag: at most one request is outstanding at a time
//
// A submission is either accepted or rejected, there is no queue. Requests are
// not cancelable and have no timeout of their own: a hanging assistant keeps the
// session pending until it returns.
type Session struct {
	SessionID string

	assistant Assistant
	log       *conversation.Log
	logger    zerolog.Logger

	mu     sync.Mutex
	draft  string
	active *ExecutionHandle
}

type Option func(*Session)

func WithLog(l *conversation.Log) Option {
	return func(s *Session) {
		s.log = l
	}
}

func WithSessionID(id string) Option {
	return func(s *Session) {
		s.SessionID = id
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession constructs an idle Session with a generated SessionID and a freshly
// seeded log, unless WithLog is given.
func NewSession(assistant Assistant, options ...Option) *Session {
	ret := &Session{
		SessionID: uuid.NewString(),
		assistant: assistant,
		logger:    log.Logger,
	}
	for _, option := range options {
		option(ret)
	}
	if ret.log == nil {
		ret.log = conversation.NewLog()
	}
	ret.logger = ret.logger.With().Str("session_id", ret.SessionID).Logger()
	return ret
}

// Log gives read access to the conversation. Only the Session appends to it.
func (s *Session) Log() *conversation.Log {
	return s.log
}

func (s *Session) Snapshot() []conversation.Turn {
	return s.log.Snapshot()
}

// IsPending reports whether a request is currently outstanding.
func (s *Session) IsPending() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	s.mu.Unlock()
}

// SubmitDraft submits the current draft.
func (s *Session) SubmitDraft(ctx context.Context) (*ExecutionHandle, error) {
	if s == nil {
		return nil, ErrSessionNil
	}
	return s.Submit(ctx, s.Draft())
}

// Submit accepts text as the next user turn and asks the assistant about it.
//
// The submission is rejected, without any side effect, if text is blank
// (ErrEmptyPrompt) or if a request is already pending (ErrSessionAlreadyActive).
//
// Once accepted, the user turn is appended right away and the draft is cleared.
// The assistant call runs in a goroutine; its outcome is appended as exactly one
// assistant turn, either the response verbatim or ConnectionErrorMessage. Errors
// from the assistant are never returned: they are recorded on the handle.
func (s *Session) Submit(ctx context.Context, text string) (*ExecutionHandle, error) {
	if s == nil {
		return nil, ErrSessionNil
	}
	if s.assistant == nil {
		return nil, ErrSessionAssistantNil
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyPrompt
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	if s.active != nil {
		s.mu.Unlock()
		s.logger.Debug().Msg("rejecting submission, request already pending")
		return nil, ErrSessionAlreadyActive
	}
	handle := newExecutionHandle(s.SessionID, uuid.NewString(), text)
	s.active = handle
	s.draft = ""
	s.mu.Unlock()

	// the user turn is shown before the assistant is even asked
	s.log.Append(conversation.NewUserTurn(text))

	logger := s.logger.With().Str("request_id", handle.RequestID).Logger()
	logger.Debug().Int("length", len(text)).Msg("submitted prompt")

	// requests run to completion: caller cancellation is not propagated
	runCtx := context.WithoutCancel(ctx)

	go func() {
		response, err := s.ask(runCtx, text)

		var turn conversation.Turn
		outcome := OutcomeSuccess
		if err != nil {
			outcome = OutcomeFailure
			logger.Warn().Err(err).Msg("assistant request failed")
			turn = conversation.NewAssistantTurn(ConnectionErrorMessage)
		} else {
			logger.Debug().Int("length", len(response)).Msg("assistant responded")
			turn = conversation.NewAssistantTurn(response)
		}
		s.log.Append(turn)

		s.mu.Lock()
		s.active = nil
		s.mu.Unlock()

		handle.setResult(turn, outcome, err)
	}()

	return handle, nil
}

// ask calls the assistant, turning a panic into an error.
func (s *Session) ask(ctx context.Context, text string) (response string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("assistant panicked: %v", r)
		}
	}()
	return s.assistant.Chat(ctx, text)
}
