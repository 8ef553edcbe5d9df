package events

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/skycast/pkg/conversation"
	"github.com/stretchr/testify/require"
)

func startRouter(t *testing.T, router *EventRouter) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = router.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		_ = router.Close()
		<-done
	})

	select {
	case <-router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}
}

func TestTurnPublisherDeliversInOrder(t *testing.T) {
	router, err := NewEventRouter()
	require.NoError(t, err)

	var mu sync.Mutex
	var received []*TurnEvent
	router.AddTurnHandler("collect", TopicTurns, func(ctx context.Context, e *TurnEvent) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, e)
		return nil
	})
	startRouter(t, router)

	manager := NewPublisherManager()
	manager.SubscribePublisher(TopicTurns, router.Publisher)

	pending := true
	log := conversation.NewLog(conversation.WithObserver(
		NewTurnPublisher(manager, "session-1", func() bool { return pending }),
	))

	log.Append(conversation.NewUserTurn("Weather in Paris?"))
	pending = false
	log.Append(conversation.NewAssistantTurn("Sunny."))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)

	require.Equal(t, EventTypeTurnAppended, received[0].Type)
	require.Equal(t, "session-1", received[0].Meta.SessionID)
	require.Equal(t, 1, received[0].Index)
	require.Equal(t, conversation.RoleUser, received[0].Turn.Role)
	require.Equal(t, "Weather in Paris?", received[0].Turn.Content)
	require.True(t, received[0].Pending)

	require.Equal(t, 2, received[1].Index)
	require.Equal(t, "Sunny.", received[1].Turn.Content)
	require.False(t, received[1].Pending)
}

func TestWaitRunning(t *testing.T) {
	router, err := NewEventRouter()
	require.NoError(t, err)
	t.Cleanup(func() { _ = router.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, router.WaitRunning(ctx), context.DeadlineExceeded)

	startRouter(t, router)
	require.NoError(t, router.WaitRunning(context.Background()))
}

func TestDumpRawEvents(t *testing.T) {
	var buf bytes.Buffer
	router, err := NewEventRouter(WithOutput(&buf))
	require.NoError(t, err)

	ev := NewTurnAppendedEvent("s", 1, conversation.NewUserTurn("hello"), true)
	b, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, router.DumpRawEvents(message.NewMessage(watermill.NewUUID(), b)))

	var dumped map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &dumped))
	require.Equal(t, ev.Meta.EventID.String(), dumped["id"])
	require.NotContains(t, dumped, "meta")
	require.Equal(t, true, dumped["pending"])

	require.Error(t, router.DumpRawEvents(message.NewMessage(watermill.NewUUID(), []byte("nope"))))
}

func TestNewTurnEventFromJson(t *testing.T) {
	ev := NewTurnAppendedEvent("s", 3, conversation.NewAssistantTurn("hi"), false)
	b, err := json.Marshal(ev)
	require.NoError(t, err)

	decoded, err := NewTurnEventFromJson(b)
	require.NoError(t, err)
	require.Equal(t, 3, decoded.Index)
	require.Equal(t, ev.Turn.ID, decoded.Turn.ID)

	_, err = NewTurnEventFromJson([]byte(`{"type":"other"}`))
	require.Error(t, err)
	_, err = NewTurnEventFromJson([]byte(`nope`))
	require.Error(t, err)
}
