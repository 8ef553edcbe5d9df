package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/skycast/pkg/conversation"
	"github.com/rs/zerolog/log"
)

// PublisherManager distributes payloads to a set of publishers, each subscribed
// on a topic. Every outgoing message carries a sequence number in the order
// Publish was called.
type PublisherManager struct {
	Publishers     map[string][]message.Publisher
	sequenceNumber uint64
	mutex          sync.Mutex
}

func NewPublisherManager() *PublisherManager {
	return &PublisherManager{
		Publishers: make(map[string][]message.Publisher),
	}
}

func (s *PublisherManager) SubscribePublisher(topic string, pub message.Publisher) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.Publishers[topic] = append(s.Publishers[topic], pub)
}

// Publish serializes payload to JSON and sends it to every publisher.
func (s *PublisherManager) Publish(payload interface{}) error {
	// held across the publish so sequence order is delivery order
	s.mutex.Lock()
	defer s.mutex.Unlock()

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	seq := fmt.Sprintf("%d", s.sequenceNumber)
	s.sequenceNumber++

	for topic, pubs := range s.Publishers {
		for _, pub := range pubs {
			msg := message.NewMessage(watermill.NewUUID(), b)
			msg.Metadata.Set("sequence_number", seq)
			if err := pub.Publish(topic, msg); err != nil {
				log.Warn().Err(err).Str("topic", topic).Msg("failed to publish")
			}
		}
	}

	return nil
}

func (s *PublisherManager) PublishBlind(payload interface{}) {
	if err := s.Publish(payload); err != nil {
		log.Warn().Err(err).Msg("failed to publish")
	}
}

// TurnPublisher is a conversation.Observer that publishes every appended turn
// as a TurnEvent.
type TurnPublisher struct {
	manager   *PublisherManager
	sessionID string
	pending   func() bool
}

var _ conversation.Observer = (*TurnPublisher)(nil)

// NewTurnPublisher creates an observer; pending reports whether a request is
// in flight and may be nil.
func NewTurnPublisher(manager *PublisherManager, sessionID string, pending func() bool) *TurnPublisher {
	return &TurnPublisher{
		manager:   manager,
		sessionID: sessionID,
		pending:   pending,
	}
}

func (t *TurnPublisher) TurnAppended(turn conversation.Turn, index int) {
	pending := false
	if t.pending != nil {
		pending = t.pending()
	}
	t.manager.PublishBlind(NewTurnAppendedEvent(t.sessionID, index, turn, pending))
}
