// Package dispatch routes a transport message to its decoder by destination
// tag and returns a normalized record addressed to the family's table.
package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/couchcryptid/swim-data-etl/internal/decoder/fixm"
	"github.com/couchcryptid/swim-data-etl/internal/decoder/iwxxm"
	"github.com/couchcryptid/swim-data-etl/internal/decoder/metar"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
)

// Message families.
const (
	FamilyFIXM      = "fixm"
	FamilyIWXXM     = "iwxxm"
	FamilyMETReport = "met-report"
)

// Tables names the storage table of each family.
type Tables struct {
	FIXM      string
	IWXXM     string
	METReport string
}

// DefaultTables returns the production table names.
func DefaultTables() Tables {
	return Tables{
		FIXM:      "FIXM_FlightData",
		IWXXM:     "IWXXM_FlightData",
		METReport: "METReport_FlightData",
	}
}

type (
	decodeFunc    func(msg domain.RawMessage) (domain.Tree, error)
	normalizeFunc func(tree domain.Tree, meta domain.Metadata) (domain.Tree, error)
)

// variant is one decoder within a family, selected by tag suffix.
type variant struct {
	name      string
	suffix    string
	decode    decodeFunc
	normalize normalizeFunc
}

// route matches tags containing marker. Variants are tried in order; an
// empty suffix matches any tag. A family with no matching variant yields
// ErrUnrecognizedFormat.
type route struct {
	family   string
	marker   string
	table    string
	variants []variant
}

// Dispatcher holds the ordered route table. The first route whose marker
// occurs in the tag wins.
type Dispatcher struct {
	routes []route
}

// New builds the route table with the given table names.
func New(tables Tables) *Dispatcher {
	return &Dispatcher{routes: []route{
		{
			family: FamilyFIXM,
			marker: "fixm",
			table:  tables.FIXM,
			variants: []variant{
				{name: "departure", suffix: "dep", decode: payloadOnly(fixm.DecodeDeparture), normalize: domain.Normalize},
				{name: "flight-plan", suffix: "fpl", decode: payloadOnly(fixm.DecodeFlightPlan), normalize: domain.Normalize},
			},
		},
		{
			family: FamilyIWXXM,
			marker: "iwxxm",
			table:  tables.IWXXM,
			variants: []variant{
				{name: "iwxxm", decode: decodeIWXXM, normalize: domain.Normalize},
			},
		},
		{
			family: FamilyMETReport,
			marker: "met-report",
			table:  tables.METReport,
			variants: []variant{
				{name: "wsss", suffix: "wsss", decode: payloadOnly(metar.DecodeWSSS), normalize: domain.Normalize},
				{name: "wssl", suffix: "wssl", decode: payloadOnly(metar.DecodeWSSL), normalize: domain.Normalize},
				{name: "generic", decode: payloadOnly(metar.Decode), normalize: reportTimeNormalizer(metar.KeyDateTime)},
			},
		},
	}}
}

func payloadOnly(decode func([]byte) (domain.Tree, error)) decodeFunc {
	return func(msg domain.RawMessage) (domain.Tree, error) {
		return decode(msg.Payload)
	}
}

func decodeIWXXM(msg domain.RawMessage) (domain.Tree, error) {
	return iwxxm.Decode(msg.Payload, domain.MetadataFor(msg).IngestTime())
}

func reportTimeNormalizer(stampKey string) normalizeFunc {
	return func(tree domain.Tree, meta domain.Metadata) (domain.Tree, error) {
		return domain.NormalizeWithReportTime(tree, meta, stampKey)
	}
}

// Route resolves a destination tag to its family and variant name.
func (d *Dispatcher) Route(tag string) (family, variantName string, err error) {
	r, v, err := d.resolve(tag)
	if err != nil {
		return "", "", err
	}
	return r.family, v.name, nil
}

func (d *Dispatcher) resolve(tag string) (*route, *variant, error) {
	lower := strings.ToLower(tag)
	for i := range d.routes {
		r := &d.routes[i]
		if !strings.Contains(lower, r.marker) {
			continue
		}
		for j := range r.variants {
			v := &r.variants[j]
			if strings.HasSuffix(lower, v.suffix) {
				return r, v, nil
			}
		}
		return r, nil, fmt.Errorf("%w: %s tag %q has no known variant suffix", domain.ErrUnrecognizedFormat, r.family, tag)
	}
	return nil, nil, fmt.Errorf("%w: %q", domain.ErrNoRoute, tag)
}

// Transform decodes and normalizes one message. Skips are reported with
// domain.ErrNoRoute or domain.ErrBinaryPayload; decoder failures, including
// panics, come back as errors and never escape as panics.
func (d *Dispatcher) Transform(_ context.Context, msg domain.RawMessage) (rec domain.Record, err error) {
	if msg.Binary {
		return domain.Record{}, fmt.Errorf("%w: %d bytes on %q", domain.ErrBinaryPayload, len(msg.Payload), msg.Destination)
	}

	r, v, err := d.resolve(msg.Destination)
	if err != nil {
		if r != nil {
			return domain.Record{Table: r.table, Family: r.family}, err
		}
		return domain.Record{}, err
	}

	rec = domain.Record{Table: r.table, Family: r.family, Variant: v.name}
	defer func() {
		if p := recover(); p != nil {
			rec.Item = domain.Tree{}
			err = fmt.Errorf("%w: %s/%s decoder panic: %v", domain.ErrParse, r.family, v.name, p)
		}
	}()

	tree, err := v.decode(msg)
	if err != nil {
		return rec, fmt.Errorf("decode %s/%s: %w", r.family, v.name, err)
	}

	item, err := v.normalize(tree, domain.MetadataFor(msg))
	if err != nil {
		return rec, fmt.Errorf("normalize %s/%s: %w", r.family, v.name, err)
	}
	rec.Item = item
	return rec, nil
}
