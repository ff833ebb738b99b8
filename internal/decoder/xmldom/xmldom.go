// Package xmldom builds a minimal in-memory element tree from an XML
// document. Two modes are offered: namespace-resolved (elements identified by
// namespace URI and local name) and raw (elements keep their source
// "prefix:local" spelling, attributes include xmlns declarations).
package xmldom

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Element is one XML element with its attributes, child elements and
// concatenated character data.
type Element struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Children []*Element
	// Texts holds each run of character data between child elements, in order.
	Texts []string
}

// QualifiedName returns "prefix:local" for raw documents and "local" when no
// prefix is present. For resolved documents Space holds the namespace URI, so
// callers should use Name directly.
func (e *Element) QualifiedName() string {
	return qualify(e.Name)
}

// AttrQualifiedName renders an attribute name the same way QualifiedName does.
func AttrQualifiedName(a xml.Attr) string {
	return qualify(a.Name)
}

func qualify(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// Attr returns the value of the attribute with the given local name.
func (e *Element) Attr(local string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, a := range e.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Text returns all descendant character data concatenated, like the DOM
// textContent property.
func (e *Element) Text() string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	e.writeText(&sb)
	return sb.String()
}

func (e *Element) writeText(sb *strings.Builder) {
	// Texts[i] precedes Children[i]; a trailing run follows the last child.
	for i := 0; i < len(e.Texts) || i < len(e.Children); i++ {
		if i < len(e.Texts) {
			sb.WriteString(e.Texts[i])
		}
		if i < len(e.Children) {
			e.Children[i].writeText(sb)
		}
	}
}

// Find returns the first descendant (document order, excluding e) whose
// namespace and local name match.
func (e *Element) Find(space, local string) *Element {
	if e == nil {
		return nil
	}
	for _, c := range e.Children {
		if c.Name.Space == space && c.Name.Local == local {
			return c
		}
		if found := c.Find(space, local); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every matching descendant in document order.
func (e *Element) FindAll(space, local string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for _, c := range e.Children {
		if c.Name.Space == space && c.Name.Local == local {
			out = append(out, c)
		}
		out = append(out, c.FindAll(space, local)...)
	}
	return out
}

// ErrNoRoot is returned for documents without a root element.
var ErrNoRoot = errors.New("xml document has no root element")

// Parse reads a namespace-resolved document: Name.Space holds the namespace URI.
func Parse(r io.Reader) (*Element, error) {
	d := xml.NewDecoder(r)
	return build(d.Token)
}

// ParseRaw reads a document without namespace translation: Name.Space holds
// the source prefix and xmlns declarations are kept as attributes.
func ParseRaw(r io.Reader) (*Element, error) {
	d := xml.NewDecoder(r)
	return build(d.RawToken)
}

func build(next func() (xml.Token, error)) (*Element, error) {
	var (
		root  *Element
		stack []*Element
		text  strings.Builder
	)

	flushText := func() {
		if len(stack) == 0 {
			text.Reset()
			return
		}
		top := stack[len(stack)-1]
		// Keep Texts aligned with Children: Texts[i] precedes Children[i].
		for len(top.Texts) < len(top.Children) {
			top.Texts = append(top.Texts, "")
		}
		top.Texts = append(top.Texts, text.String())
		text.Reset()
	}

	for {
		tok, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && root != nil {
				return nil, errors.New("decode xml: multiple root elements")
			}
			flushText()
			el := &Element{Name: t.Name, Attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("decode xml: unexpected end element </%s>", qualify(t.Name))
			}
			top := stack[len(stack)-1]
			if top.Name != t.Name {
				return nil, fmt.Errorf("decode xml: element <%s> closed by </%s>", qualify(top.Name), qualify(t.Name))
			}
			flushText()
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				text.Write(t)
			} else if strings.TrimSpace(string(t)) != "" {
				return nil, errors.New("decode xml: character data outside root element")
			}
		}
	}

	if len(stack) > 0 {
		return nil, fmt.Errorf("decode xml: unclosed element <%s>", qualify(stack[len(stack)-1].Name))
	}
	if root == nil {
		return nil, ErrNoRoot
	}
	return root, nil
}
