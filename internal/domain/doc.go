// Package domain holds the decoder-neutral model of the SWIM ingest service:
// the transport message, the generic tree every decoder produces, the error
// taxonomy, and the metadata normalizer.
//
// # Message Families
//
// Messages arrive on destinations (Kafka topics or NATS subjects) whose name
// identifies the family:
//
//	".../fixm/...dep"      FIXM 4.1 departure message (namespaced XML)
//	".../fixm/...fpl"      FIXM 4.1 filed flight plan (namespaced XML)
//	".../iwxxm/..."        IWXXM report, base64 XML inside a JSON envelope
//	".../met-report/..."   MET report coded text, optionally inside the same envelope
//
// The JSON envelope has the form:
//
//	{"id": "...", "properties": {"content": {"value": "..."}}}
//
// # Generic Tree
//
// [Tree] is a closed union of Scalar, Object and Array. Objects keep
// insertion order and unique keys. Arrays only appear when an XML element
// repeats under the same parent. Trees are built bottom-up through
// [ObjectBuilder] and never change afterwards.
//
// # Reserved Keys
//
// The normalizer adds logTimestamp, messageID and messageDestination without
// overwriting keys the decoder already produced. Timestamps use
// "2006-01-02T15:04:05.000Z" in UTC.
//
// MET reports carry their own observation stamp as ddHHmm followed by Z
// (e.g. "241230Z" is the 24th at 12:30 UTC). For those reports the ingest date
// is moved onto the report's day before formatting, see [ReconcileReportTime].
package domain
