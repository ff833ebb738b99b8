// Command genmock writes synthetic SWIM messages as JSON lines, one
// {destination, messageId, payload} object per line. With -decoded it also
// writes the records the service would store for them, produced by the real
// dispatcher under a fixed clock so the fixture is reproducible.
//
// Usage:
//
//	go run ./cmd/genmock -n 60 -out data/mock/swim_messages.jsonl \
//	  -decoded data/mock/swim_records.jsonl
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/swim-data-etl/internal/dispatch"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
	"github.com/couchcryptid/swim-data-etl/internal/mockdata"
	"github.com/jonboulle/clockwork"
)

var baseTime = time.Date(2024, time.May, 24, 6, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	n := flag.Int("n", 60, "number of messages to generate")
	seed := flag.Int64("seed", 42, "faker seed")
	out := flag.String("out", "", "output path for messages (default: stdout)")
	decodedOut := flag.String("decoded", "", "optional output path for decoded records")
	flag.Parse()

	if *n <= 0 {
		return fmt.Errorf("-n must be positive, got %d", *n)
	}

	messages := mockdata.New(*seed, baseTime).Mixed(*n)

	if err := withOutput(*out, func(w io.Writer) error { return writeLines(w, messages) }); err != nil {
		return fmt.Errorf("writing messages: %w", err)
	}
	log.Printf("wrote %d messages", len(messages))

	if *decodedOut == "" {
		return nil
	}

	domain.SetClock(clockwork.NewFakeClockAt(baseTime))
	defer domain.SetClock(nil)

	records, err := decodeAll(messages)
	if err != nil {
		return err
	}
	if err := withOutput(*decodedOut, func(w io.Writer) error { return writeLines(w, records) }); err != nil {
		return fmt.Errorf("writing decoded records: %w", err)
	}
	log.Printf("wrote decoded fixture: %s", *decodedOut)

	printStats(records)
	return nil
}

type decodedRecord struct {
	Table   string      `json:"table"`
	Family  string      `json:"family"`
	Variant string      `json:"variant"`
	Item    domain.Tree `json:"item"`
}

func decodeAll(messages []mockdata.Message) ([]decodedRecord, error) {
	d := dispatch.New(dispatch.DefaultTables())
	records := make([]decodedRecord, 0, len(messages))
	for _, m := range messages {
		rec, err := d.Transform(context.Background(), domain.RawMessage{
			Payload:       []byte(m.Payload),
			Destination:   m.Destination,
			CorrelationID: m.MessageID,
			ReceivedAt:    baseTime,
		})
		if err != nil {
			return nil, fmt.Errorf("decode %s (%s): %w", m.MessageID, m.Destination, err)
		}
		records = append(records, decodedRecord{Table: rec.Table, Family: rec.Family, Variant: rec.Variant, Item: rec.Item})
	}
	return records, nil
}

func withOutput(path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(os.Stdout)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeLines[T any](w io.Writer, items []T) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func printStats(records []decodedRecord) {
	counts := map[string]int{}
	for _, r := range records {
		counts[r.Family+"/"+r.Variant]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println("\n=== Decoded Records ===")
	for _, k := range keys {
		fmt.Printf("  %-24s %d\n", k, counts[k])
	}
	fmt.Printf("  %-24s %d\n", "total", len(records))
}
