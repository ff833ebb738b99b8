package domain

import (
	"context"
	"time"
)

// RawMessage is one delivery from the transport, consumed exactly once by the pipeline.
type RawMessage struct {
	Payload       []byte
	Binary        bool
	Destination   string
	CorrelationID string
	ReceivedAt    time.Time

	// Transport bookkeeping, used only for logging and acknowledgement.
	Source    string
	Partition int
	Offset    int64
	Commit    func(ctx context.Context) error
}

// Text returns the payload as a string.
func (m RawMessage) Text() string {
	return string(m.Payload)
}

// Record is a normalized tree addressed to a storage table.
type Record struct {
	Table   string
	Family  string
	Variant string
	Item    Tree
}
