package domain

import (
	"fmt"
	"strconv"
	"time"
)

// TimestampLayout renders ingest times with millisecond precision and a literal Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Reserved metadata keys merged into every record.
const (
	KeyLogTimestamp       = "logTimestamp"
	KeyMessageID          = "messageID"
	KeyMessageDestination = "messageDestination"
)

// Metadata is the per-message context the normalizer merges into a decoded tree.
type Metadata struct {
	ReceivedAt  time.Time
	MessageID   string
	Destination string
}

// MetadataFor extracts normalizer metadata from a transport message.
func MetadataFor(msg RawMessage) Metadata {
	return Metadata{
		ReceivedAt:  msg.ReceivedAt,
		MessageID:   msg.CorrelationID,
		Destination: msg.Destination,
	}
}

// IngestTime is ReceivedAt, or the current clock time when the transport left it unset.
func (m Metadata) IngestTime() time.Time {
	if m.ReceivedAt.IsZero() {
		return clock.Now()
	}
	return m.ReceivedAt
}

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Normalize merges the reserved metadata keys into root. Keys the decoder
// already set are left untouched, so applying Normalize twice with the same
// metadata yields the same tree.
func Normalize(root Tree, meta Metadata) (Tree, error) {
	if root.Kind() != KindObject {
		return Tree{}, fmt.Errorf("%w: record root is %s, want object", ErrSerialization, root.Kind())
	}

	b := NewObjectBuilderFrom(root)
	b.SetIfAbsent(KeyLogTimestamp, Scalar(FormatTimestamp(meta.IngestTime())))
	if meta.MessageID != "" {
		b.SetIfAbsent(KeyMessageID, Scalar(meta.MessageID))
	}
	if meta.Destination != "" {
		b.SetIfAbsent(KeyMessageDestination, Scalar(meta.Destination))
	}
	return b.Build(), nil
}

// NormalizeWithReportTime is Normalize for coded-text reports: the ingest
// timestamp is first reconciled against the report's own ddHHmm stamp found
// under stampKey.
func NormalizeWithReportTime(root Tree, meta Metadata, stampKey string) (Tree, error) {
	stamp, _ := root.Get(stampKey)
	meta.ReceivedAt = ReconcileReportTime(meta.IngestTime(), stamp.Text())
	return Normalize(root, meta)
}

// ReconcileReportTime combines a report's ddHHmm stamp (e.g. "241230Z") with
// the ingest time. A report day at or before the ingest day stays in the
// ingest month; a report day after it belongs to the previous month. Malformed
// or absent stamps, and days the previous month does not have, return received
// unchanged.
func ReconcileReportTime(received time.Time, stamp string) time.Time {
	day, hour, minute, ok := parseDayTime(stamp)
	if !ok {
		return received
	}

	ref := received.UTC()
	year, month := ref.Year(), ref.Month()
	if day > ref.Day() {
		prev := time.Date(year, month-1, 1, 0, 0, 0, 0, time.UTC)
		year, month = prev.Year(), prev.Month()
	}
	reconciled := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	if reconciled.Day() != day {
		return received
	}
	return reconciled
}

func parseDayTime(stamp string) (day, hour, minute int, ok bool) {
	if len(stamp) < 6 {
		return 0, 0, 0, false
	}
	digits := stamp[:6]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, 0, 0, false
		}
	}
	day, _ = strconv.Atoi(digits[0:2])
	hour, _ = strconv.Atoi(digits[2:4])
	minute, _ = strconv.Atoi(digits[4:6])
	if day < 1 || day > 31 || hour > 23 || minute > 59 {
		return 0, 0, 0, false
	}
	return day, hour, minute, true
}
