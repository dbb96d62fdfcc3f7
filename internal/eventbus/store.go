package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// AnalysisStream is the JetStream stream holding analysis lifecycle events
const AnalysisStream = "ANALYSES"

// EventStore is an append-only log of analysis events
type EventStore interface {
	Append(subject string, data interface{}) error
	Read(subject string) ([]Event, error)
}

// Event wraps an analysis event payload with metadata
type Event struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Data      []byte    `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// JetStreamStore persists analysis events in NATS JetStream
type JetStreamStore struct {
	js nats.JetStreamContext
}

// NewJetStreamStore creates the event store and ensures the stream exists
func NewJetStreamStore() (*JetStreamStore, error) {
	if JetStream == nil {
		return nil, fmt.Errorf("JetStream context not initialized")
	}

	// Idempotent: AddStream succeeds if the stream already exists with
	// the same configuration.
	_, err := JetStream.AddStream(&nats.StreamConfig{
		Name:     AnalysisStream,
		Subjects: []string{"analysis.>"},
	})
	if err != nil && err != nats.ErrStreamNameAlreadyInUse {
		return nil, fmt.Errorf("ensure stream %s: %w", AnalysisStream, err)
	}

	return &JetStreamStore{js: JetStream}, nil
}

// Append publishes an event to the analysis stream
func (s *JetStreamStore) Append(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = s.js.Publish(subject, payload)
	return err
}

// Read fetches the currently available events for a subject
func (s *JetStreamStore) Read(subject string) ([]Event, error) {
	sub, err := s.js.SubscribeSync(subject, nats.BindStream(AnalysisStream))
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	var events []Event
	for {
		msg, err := sub.NextMsg(100 * time.Millisecond)
		if err == nats.ErrTimeout {
			break
		}
		if err != nil {
			return events, err
		}

		events = append(events, Event{
			ID:        msg.Header.Get("Nats-Msg-Id"),
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	}

	return events, nil
}
