// Package iwxxm decodes IWXXM weather reports delivered as base64 XML inside
// a JSON envelope. Unlike FIXM there is no field allowlist: the whole document
// is converted into a generic tree.
package iwxxm

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/swim-data-etl/internal/decoder/envelope"
	"github.com/couchcryptid/swim-data-etl/internal/decoder/xmldom"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
)

// TextKey holds an element's trimmed character data.
const TextKey = "value"

// Decode unwraps the envelope and returns {id, logTimestamp, decodedData}.
func Decode(payload []byte, receivedAt time.Time) (domain.Tree, error) {
	env, err := envelope.Decode(payload)
	if err != nil {
		return domain.Tree{}, err
	}

	xmlDoc, err := decodeBase64(env.Content)
	if err != nil {
		return domain.Tree{}, fmt.Errorf("%w: iwxxm content base64: %v", domain.ErrParse, err)
	}

	root, err := xmldom.ParseRaw(bytes.NewReader(xmlDoc))
	if err != nil {
		return domain.Tree{}, fmt.Errorf("%w: iwxxm: %v", domain.ErrParse, err)
	}

	decoded, err := Convert(root)
	if err != nil {
		return domain.Tree{}, err
	}

	out := domain.NewObjectBuilder()
	out.SetText("id", env.ID)
	out.SetText(domain.KeyLogTimestamp, domain.FormatTimestamp(receivedAt))
	out.Set("decodedData", decoded)
	return out.Build(), nil
}

// decodeBase64 accepts standard base64 with or without line breaks.
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', ' ', '\t':
			return -1
		}
		return r
	}, s)
	return base64.StdEncoding.DecodeString(s)
}

// Convert maps an element to an object: attributes become scalar keys, child
// elements become nested objects keyed by qualified name, and non-blank text
// is stored under TextKey. A repeated child name is promoted to an array
// holding every occurrence in document order.
//
// Attributes, child elements and text share one key space. A name claimed by
// two of them cannot be represented without loss and fails with ErrParse.
func Convert(el *xmldom.Element) (domain.Tree, error) {
	b := domain.NewObjectBuilder()
	for _, a := range el.Attrs {
		b.SetText(xmldom.AttrQualifiedName(a), a.Value)
	}

	elements := make(map[string]bool, len(el.Children))
	for _, child := range el.Children {
		name := child.QualifiedName()
		if _, taken := b.Get(name); taken && !elements[name] {
			return domain.Tree{}, fmt.Errorf("%w: iwxxm: element <%s> collides with attribute %q", domain.ErrParse, el.QualifiedName(), name)
		}
		converted, err := Convert(child)
		if err != nil {
			return domain.Tree{}, err
		}
		appendChild(b, name, converted)
		elements[name] = true
	}

	text := false
	for _, run := range el.Texts {
		trimmed := strings.TrimSpace(run)
		if trimmed == "" {
			continue
		}
		if _, taken := b.Get(TextKey); taken && !text {
			return domain.Tree{}, fmt.Errorf("%w: iwxxm: text of <%s> collides with %q", domain.ErrParse, el.QualifiedName(), TextKey)
		}
		b.SetText(TextKey, trimmed)
		text = true
	}
	return b.Build(), nil
}

// appendChild adds an element under name. Only element keys reach here, so
// an existing value is either a single object or an already promoted array.
func appendChild(b *domain.ObjectBuilder, name string, child domain.Tree) {
	existing, ok := b.Get(name)
	switch {
	case !ok:
		b.Set(name, child)
	case existing.Kind() == domain.KindArray:
		b.Set(name, domain.Array(append(existing.Items(), child)...))
	default:
		b.Set(name, domain.Array(existing, child))
	}
}
