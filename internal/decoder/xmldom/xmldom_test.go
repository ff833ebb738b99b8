package xmldom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nsDoc = `<?xml version="1.0"?>
<fx:Flight xmlns:fx="urn:flight" xmlns:fb="urn:base" flightType="SCHEDULED">
  <fx:gufi>abc-123</fx:gufi>
  <fx:leg><fb:level uom="FL">350</fb:level></fx:leg>
  <fx:leg><fb:level uom="FL">370</fb:level></fx:leg>
</fx:Flight>`

func TestParse_ResolvesNamespaces(t *testing.T) {
	root, err := Parse(strings.NewReader(nsDoc))
	require.NoError(t, err)

	assert.Equal(t, "urn:flight", root.Name.Space)
	assert.Equal(t, "Flight", root.Name.Local)

	v, ok := root.Attr("flightType")
	require.True(t, ok)
	assert.Equal(t, "SCHEDULED", v)

	assert.Equal(t, "abc-123", root.Find("urn:flight", "gufi").Text())
	assert.Nil(t, root.Find("urn:base", "gufi"))

	levels := root.FindAll("urn:base", "level")
	require.Len(t, levels, 2)
	assert.Equal(t, "350", levels[0].Text())
	uom, _ := levels[1].Attr("uom")
	assert.Equal(t, "FL", uom)
}

func TestParseRaw_KeepsPrefixes(t *testing.T) {
	root, err := ParseRaw(strings.NewReader(nsDoc))
	require.NoError(t, err)

	assert.Equal(t, "fx:Flight", root.QualifiedName())

	var names []string
	for _, a := range root.Attrs {
		names = append(names, AttrQualifiedName(a))
	}
	assert.Equal(t, []string{"xmlns:fx", "xmlns:fb", "flightType"}, names)
	assert.Equal(t, "fx:gufi", root.Children[0].QualifiedName())
}

func TestText_ConcatenatesDescendants(t *testing.T) {
	root, err := Parse(strings.NewReader(`<a>x<b>y</b>z</a>`))
	require.NoError(t, err)

	assert.Equal(t, "xyz", root.Text())
	assert.Equal(t, []string{"x", "z"}, root.Texts)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"whitespace": "   \n",
		"unclosed":   "<a><b></b>",
		"mismatch":   "<a></b>",
		"two roots":  "<a/><b/>",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRaw(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}

	_, err := Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoRoot)
}
