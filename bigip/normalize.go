package bigip

import (
	"strconv"
	"strings"

	"github.com/smnsjas/go-icontrol/soap"
)

// xsdIntegers is the set of xsd types normalized to Go int.
var xsdIntegers = map[string]bool{
	"long": true, "int": true, "short": true, "byte": true,
	"integer": true, "unsignedLong": true, "unsignedInt": true,
	"unsignedShort": true, "unsignedByte": true,
	"nonNegativeInteger": true, "positiveInteger": true,
	"negativeInteger": true, "nonPositiveInteger": true,
}

// xsdFloats is the set of xsd types normalized to Go float64.
var xsdFloats = map[string]bool{
	"float": true, "double": true, "decimal": true,
}

// normalize rebuilds a plain Go value from a decoded response node:
// encoded arrays become []any in element order, structures become
// map[string]any, and typed leaves become int, float64, bool, or string.
// Values the leaf type promises but the text cannot satisfy fall back to
// the raw string rather than failing the whole call.
func normalize(n *soap.Node) any {
	if n == nil || n.Nil {
		return nil
	}

	if n.IsArray() {
		items := make([]any, 0, len(n.Children))
		for _, c := range n.Children {
			items = append(items, normalize(c))
		}
		return items
	}

	if len(n.Children) > 0 {
		m := make(map[string]any, len(n.Children))
		for _, c := range n.Children {
			m[c.Name] = normalize(c)
		}
		return m
	}

	return normalizeLeaf(n)
}

func normalizeLeaf(n *soap.Node) any {
	text := n.Text
	switch {
	case xsdIntegers[n.Type]:
		if v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64); err == nil {
			return int(v)
		}
		return text
	case xsdFloats[n.Type]:
		if v, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return v
		}
		return text
	case n.Type == "boolean":
		if v, err := strconv.ParseBool(strings.TrimSpace(text)); err == nil {
			return v
		}
		return text
	case strings.Contains(n.Type, ".") && strings.TrimSpace(text) == "":
		// A childless element with an appliance type and no text is an
		// empty structure, not an empty string.
		return map[string]any{}
	default:
		return text
	}
}
