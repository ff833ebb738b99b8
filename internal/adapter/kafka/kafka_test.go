package kafka

import (
	"testing"
	"time"

	"github.com/couchcryptid/swim-data-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestMapMessage(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("key-1"),
		Value:     []byte("METAR WSSS 240530Z"),
		Topic:     "met-report",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: HeaderDestination, Value: []byte("/topic/met-report/wsss")},
			{Key: HeaderMessageID, Value: []byte("ID:swim-1")},
		},
	}

	raw := mapMessage(msg)

	assert.Equal(t, []byte("METAR WSSS 240530Z"), raw.Payload)
	assert.False(t, raw.Binary)
	assert.Equal(t, "/topic/met-report/wsss", raw.Destination)
	assert.Equal(t, "ID:swim-1", raw.CorrelationID)
	assert.Equal(t, now, raw.ReceivedAt)
	assert.Equal(t, "met-report", raw.Source)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Nil(t, raw.Commit)
}

func TestMapMessage_Fallbacks(t *testing.T) {
	raw := mapMessage(kafkago.Message{Topic: "fixm.dep", Partition: 1, Offset: 7, Value: []byte("<a/>")})
	assert.Equal(t, "fixm.dep", raw.Destination, "topic is the destination when no header is set")
	assert.Equal(t, "fixm.dep/1/7", raw.CorrelationID)

	raw = mapMessage(kafkago.Message{
		Topic:   "iwxxm",
		Value:   []byte("{}"),
		Headers: []kafkago.Header{{Key: HeaderCorrelationID, Value: []byte("corr-9")}},
	})
	assert.Equal(t, "corr-9", raw.CorrelationID)
}

func TestIsBinary(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		payload     []byte
		want        bool
	}{
		{"plain text", "", []byte("METAR"), false},
		{"xml", "application/xml; charset=utf-8", []byte("<a/>"), false},
		{"fixm xml", "application/fixm+xml", []byte("<a/>"), false},
		{"json", "application/json", []byte("{}"), false},
		{"text", "text/plain", []byte("x"), false},
		{"octet stream", "application/octet-stream", []byte("x"), true},
		{"invalid utf8", "", []byte{0xff, 0xfe, 0x00}, true},
		{"unparseable content type", ";;", []byte("x"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isBinary(tc.contentType, tc.payload))
		})
	}
}

func TestDeadLetterMessage(t *testing.T) {
	failedAt := time.Date(2024, 5, 24, 6, 0, 0, 0, time.UTC)
	msg := domain.RawMessage{
		Payload:       []byte("<bad"),
		Destination:   "fixm.dep",
		CorrelationID: "m-1",
		Source:        "fixm",
		Partition:     3,
		Offset:        99,
	}

	out := deadLetterMessage(msg, "decode fixm/departure: parse error", failedAt)

	assert.Equal(t, []byte("m-1"), out.Key)
	assert.Equal(t, []byte("<bad"), out.Value)

	headers := map[string]string{}
	for _, h := range out.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, map[string]string{
		HeaderDestination:  "fixm.dep",
		HeaderMessageID:    "m-1",
		HeaderReason:       "decode fixm/departure: parse error",
		HeaderSourceTopic:  "fixm",
		HeaderSourceOffset: "3/99",
		HeaderFailedAt:     "2024-05-24T06:00:00Z",
	}, headers)
}
