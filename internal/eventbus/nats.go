package eventbus

import (
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects published by the analysis pipeline
const (
	SubjectAnalysisCompleted = "analysis.completed"
	SubjectSeriesFetched     = "analysis.series_fetched"
)

var (
	NATSClient *nats.Conn
	JetStream  nats.JetStreamContext
)

// InitNATSClient connects to NATS and sets up the JetStream context.
// The service degrades gracefully when NATS is unavailable.
func InitNATSClient(natsURL string) (*nats.Conn, error) {
	nc, err := nats.Connect(natsURL,
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		log.Printf("Warning: Error connecting to nats: %v", err)
		return nil, err
	}

	NATSClient = nc

	js, err := nc.JetStream()
	if err != nil {
		log.Printf("Warning: Error creating JetStream context: %v", err)
		return nc, err
	}
	JetStream = js

	return nc, nil
}

func CloseNATSClient() {
	if NATSClient != nil {
		NATSClient.Close()
	}
}

// Publish sends an event on the core NATS connection
func Publish(subject string, data []byte) error {
	if NATSClient == nil {
		return nats.ErrConnectionClosed
	}
	return NATSClient.Publish(subject, data)
}

// Subscribe registers a handler for a subject
func Subscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error) {
	if NATSClient == nil {
		return nil, nats.ErrConnectionClosed
	}
	return NATSClient.Subscribe(subject, handler)
}
