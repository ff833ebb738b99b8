package domain

import (
	"bytes"
	"encoding/json"
)

// Kind identifies which variant of the Tree union a value holds.
type Kind uint8

const (
	KindScalar Kind = iota
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "scalar"
	}
}

// Tree is the decoder-neutral intermediate value every decoder produces:
// a scalar text, an ordered object with unique keys, or an ordered array.
// Trees are immutable once built; all constructors copy their inputs.
type Tree struct {
	kind   Kind
	text   string
	fields []Field
	items  []Tree
}

// Field is one key/value pair of an object Tree.
type Field struct {
	Key   string
	Value Tree
}

// Scalar returns a text leaf.
func Scalar(s string) Tree {
	return Tree{kind: KindScalar, text: s}
}

// Array returns an array node holding copies of items in order.
func Array(items ...Tree) Tree {
	return Tree{kind: KindArray, items: append([]Tree(nil), items...)}
}

// EmptyObject returns an object with no keys.
func EmptyObject() Tree {
	return Tree{kind: KindObject}
}

func (t Tree) Kind() Kind { return t.kind }

// Text returns the scalar text. It is empty for objects and arrays.
func (t Tree) Text() string { return t.text }

// Len returns the number of keys of an object or elements of an array.
func (t Tree) Len() int {
	switch t.kind {
	case KindObject:
		return len(t.fields)
	case KindArray:
		return len(t.items)
	default:
		return 0
	}
}

// Fields returns a copy of the object's key/value pairs in insertion order.
func (t Tree) Fields() []Field {
	return append([]Field(nil), t.fields...)
}

// Keys returns the object's keys in insertion order.
func (t Tree) Keys() []string {
	keys := make([]string, len(t.fields))
	for i, f := range t.fields {
		keys[i] = f.Key
	}
	return keys
}

// Items returns a copy of the array's elements.
func (t Tree) Items() []Tree {
	return append([]Tree(nil), t.items...)
}

// Get looks up key on an object. It reports false for missing keys and for
// non-object trees.
func (t Tree) Get(key string) (Tree, bool) {
	for _, f := range t.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Tree{}, false
}

// Path follows a chain of object keys, e.g. Path("wind", "RWY 02L", "TDZ").
func (t Tree) Path(keys ...string) (Tree, bool) {
	cur := t
	for _, k := range keys {
		next, ok := cur.Get(k)
		if !ok {
			return Tree{}, false
		}
		cur = next
	}
	return cur, true
}

// MarshalJSON renders the tree with object keys in insertion order.
func (t Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t Tree) writeJSON(buf *bytes.Buffer) error {
	switch t.kind {
	case KindObject:
		buf.WriteByte('{')
		for i, f := range t.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := f.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindArray:
		buf.WriteByte('[')
		for i, item := range t.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		text, err := json.Marshal(t.text)
		if err != nil {
			return err
		}
		buf.Write(text)
	}
	return nil
}

// ObjectBuilder assembles an object Tree bottom-up. The builder is the only
// mutable piece; Build hands out an independent immutable snapshot.
type ObjectBuilder struct {
	fields []Field
	index  map[string]int
}

// NewObjectBuilder returns an empty builder.
func NewObjectBuilder() *ObjectBuilder {
	return &ObjectBuilder{index: make(map[string]int)}
}

// NewObjectBuilderFrom seeds a builder with the fields of an existing object.
// Non-object trees yield an empty builder.
func NewObjectBuilderFrom(t Tree) *ObjectBuilder {
	b := NewObjectBuilder()
	if t.kind != KindObject {
		return b
	}
	for _, f := range t.fields {
		b.Set(f.Key, f.Value)
	}
	return b
}

// Set stores value under key, replacing an existing value in place.
func (b *ObjectBuilder) Set(key string, value Tree) *ObjectBuilder {
	if i, ok := b.index[key]; ok {
		b.fields[i].Value = value
		return b
	}
	b.index[key] = len(b.fields)
	b.fields = append(b.fields, Field{Key: key, Value: value})
	return b
}

// SetText is shorthand for Set(key, Scalar(text)).
func (b *ObjectBuilder) SetText(key, text string) *ObjectBuilder {
	return b.Set(key, Scalar(text))
}

// SetIfAbsent stores value only when key is not yet present and reports
// whether it did.
func (b *ObjectBuilder) SetIfAbsent(key string, value Tree) bool {
	if _, ok := b.index[key]; ok {
		return false
	}
	b.Set(key, value)
	return true
}

// SetNonEmpty stores a scalar only when text is not empty.
func (b *ObjectBuilder) SetNonEmpty(key, text string) *ObjectBuilder {
	if text != "" {
		b.SetText(key, text)
	}
	return b
}

// SetObject stores a nested object only when it has at least one key.
func (b *ObjectBuilder) SetObject(key string, child *ObjectBuilder) *ObjectBuilder {
	if child != nil && child.Len() > 0 {
		b.Set(key, child.Build())
	}
	return b
}

// Get returns the current value under key.
func (b *ObjectBuilder) Get(key string) (Tree, bool) {
	i, ok := b.index[key]
	if !ok {
		return Tree{}, false
	}
	return b.fields[i].Value, true
}

func (b *ObjectBuilder) Len() int { return len(b.fields) }

// Build returns the assembled object.
func (b *ObjectBuilder) Build() Tree {
	return Tree{kind: KindObject, fields: append([]Field(nil), b.fields...)}
}
