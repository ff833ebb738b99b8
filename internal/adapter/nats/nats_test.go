package nats

import (
	"testing"
	"time"

	"github.com/couchcryptid/swim-data-etl/internal/domain"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMsg(t *testing.T) {
	now := time.Date(2024, 5, 24, 5, 31, 0, 0, time.UTC)
	msg := natsgo.NewMsg("swim.met-report.wsss")
	msg.Data = []byte("METAR WSSS 240530Z")
	msg.Header.Set(HeaderMessageID, "ID:swim-7")

	raw := mapMsg(msg, now)

	assert.Equal(t, "swim.met-report.wsss", raw.Destination)
	assert.Equal(t, "ID:swim-7", raw.CorrelationID)
	assert.Equal(t, now, raw.ReceivedAt)
	assert.Equal(t, "swim.met-report.wsss", raw.Source)
	assert.False(t, raw.Binary)
	assert.Nil(t, raw.Commit)
}

func TestMapMsg_HeaderDestinationAndGeneratedID(t *testing.T) {
	msg := &natsgo.Msg{Subject: "swim.inbox", Data: []byte("<a/>"), Header: natsgo.Header{}}
	msg.Header.Set(HeaderDestination, "fixm.fpl")

	raw := mapMsg(msg, time.Now())

	assert.Equal(t, "fixm.fpl", raw.Destination)
	_, err := uuid.Parse(raw.CorrelationID)
	require.NoError(t, err, "missing ids are replaced by a uuid")
}

func TestMapMsg_NoHeadersBinary(t *testing.T) {
	raw := mapMsg(&natsgo.Msg{Subject: "swim.iwxxm", Data: []byte{0xff, 0x00}}, time.Now())

	assert.True(t, raw.Binary)
	assert.Equal(t, "swim.iwxxm", raw.Destination)
	assert.NotEmpty(t, raw.CorrelationID)
}

func TestDeadLetterMsg(t *testing.T) {
	failedAt := time.Date(2024, 5, 24, 6, 0, 0, 0, time.UTC)
	out := deadLetterMsg("swim.dlq", domain.RawMessage{
		Payload:       []byte("<bad"),
		Destination:   "fixm.dep",
		CorrelationID: "m-1",
	}, "decode fixm/departure: parse error", failedAt)

	assert.Equal(t, "swim.dlq", out.Subject)
	assert.Equal(t, []byte("<bad"), out.Data)
	assert.Equal(t, "fixm.dep", out.Header.Get(HeaderDestination))
	assert.Equal(t, "m-1", out.Header.Get(HeaderMessageID))
	assert.Equal(t, "decode fixm/departure: parse error", out.Header.Get(HeaderReason))
	assert.Equal(t, "2024-05-24T06:00:00Z", out.Header.Get(HeaderFailedAt))
}
