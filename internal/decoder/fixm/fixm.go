// Package fixm extracts a curated set of fields from FIXM 4.1 departure and
// filed flight plan messages. Only the named fields are read; everything else
// in the document is ignored. Fields whose element or attribute is absent are
// left out of the result rather than stored as empty values.
package fixm

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/couchcryptid/swim-data-etl/internal/decoder/xmldom"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
)

// FIXM 4.1 namespaces.
const (
	NSFlight = "http://www.fixm.aero/flight/4.1"
	NSBase   = "http://www.fixm.aero/base/4.1"
)

func parse(payload []byte) (*xmldom.Element, error) {
	root, err := xmldom.Parse(bytes.NewReader(payload))
	if errors.Is(err, xmldom.ErrNoRoot) {
		return nil, fmt.Errorf("%w: fixm document has no root element", domain.ErrMissingField)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fixm: %v", domain.ErrParse, err)
	}
	return root, nil
}

// fx and fb find the first descendant in the flight and base namespaces.
func fx(e *xmldom.Element, local string) *xmldom.Element { return e.Find(NSFlight, local) }
func fb(e *xmldom.Element, local string) *xmldom.Element { return e.Find(NSBase, local) }

// attr copies attribute name of e into b under key, when both exist.
func attr(b *domain.ObjectBuilder, key string, e *xmldom.Element, name string) {
	if v, ok := e.Attr(name); ok {
		b.SetText(key, v)
	}
}

// text copies the text content of e into b under key, when e exists.
func text(b *domain.ObjectBuilder, key string, e *xmldom.Element) {
	if e != nil {
		b.SetText(key, e.Text())
	}
}

// measure renders a value+unit pair such as <fb:flightLevel uom="FL">350</fb:flightLevel>.
func measure(e *xmldom.Element) *domain.ObjectBuilder {
	if e == nil {
		return nil
	}
	b := domain.NewObjectBuilder()
	b.SetText("value", e.Text())
	attr(b, "uom", e, "uom")
	return b
}
