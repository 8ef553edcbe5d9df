package session

import (
	"errors"
	"sync"

	"github.com/go-go-golems/skycast/pkg/conversation"
)

var ErrExecutionHandleNil = errors.New("execution handle is nil")

type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// ExecutionHandle represents the single in-flight request of a Session.
//
// It completes exactly once, after the resulting assistant turn has been appended
// and the session is idle again. It cannot be canceled.
type ExecutionHandle struct {
	SessionID string
	RequestID string
	Prompt    string

	done chan struct{}

	mu      sync.Mutex
	turn    conversation.Turn
	outcome Outcome
	cause   error
}

func newExecutionHandle(sessionID, requestID, prompt string) *ExecutionHandle {
	return &ExecutionHandle{
		SessionID: sessionID,
		RequestID: requestID,
		Prompt:    prompt,
		done:      make(chan struct{}),
		outcome:   OutcomePending,
	}
}

func (h *ExecutionHandle) setResult(turn conversation.Turn, outcome Outcome, cause error) {
	h.mu.Lock()
	h.turn = turn
	h.outcome = outcome
	h.cause = cause
	close(h.done)
	h.mu.Unlock()
}

// Wait blocks until the request completes and returns the assistant turn that was
// appended for it. The returned error is only ever ErrExecutionHandleNil.
func (h *ExecutionHandle) Wait() (conversation.Turn, error) {
	if h == nil {
		return conversation.Turn{}, ErrExecutionHandleNil
	}
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.turn, nil
}

// Done is closed once the request has completed.
func (h *ExecutionHandle) Done() <-chan struct{} {
	return h.done
}

// IsRunning reports whether the request is still outstanding.
func (h *ExecutionHandle) IsRunning() bool {
	if h == nil {
		return false
	}
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *ExecutionHandle) Outcome() Outcome {
	if h == nil {
		return OutcomePending
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.outcome
}

// Cause is the recovered error of a failed request, nil otherwise.
func (h *ExecutionHandle) Cause() error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cause
}
