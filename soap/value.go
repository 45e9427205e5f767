package soap

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
)

// Kind discriminates the wire shape of a Value.
type Kind int

const (
	// Native is a leaf carried as character data, typed from its Go value.
	Native Kind = iota

	// Complex is a structure serialized as ordered child elements.
	Complex

	// Array is a SOAP section 5 encoded array of item elements.
	Array
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case Native:
		return "native"
	case Complex:
		return "complex"
	case Array:
		return "array"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a typed value ready for rpc/encoded serialization.
//
// Values are produced by the argument marshaller from plain Go data, but
// callers can also construct them directly to bypass schema processing for
// a single argument.
type Value struct {
	Kind Kind

	// Type is the schema type local name ("Common.AddressPort"). Empty for
	// untyped natives; the encoder then derives an xsd type from the Go
	// value.
	Type string

	// Native holds the leaf payload when Kind is Native.
	Native any

	// Fields holds child elements in schema order when Kind is Complex.
	Fields []Field

	// ElemType names the declared element type when Kind is Array. Empty
	// means anyType.
	ElemType string

	// Elems holds array members when Kind is Array.
	Elems []*Value
}

// Field is a named member of a Complex value.
type Field struct {
	Name  string
	Value *Value
}

// Param is a named method argument in declaration order.
type Param struct {
	Name  string
	Value *Value
}

// NewNative wraps a plain Go value as an untyped leaf.
func NewNative(v any) *Value {
	return &Value{Kind: Native, Native: v}
}

// NewTyped wraps a leaf that carries an explicit schema type, such as an
// enumeration member.
func NewTyped(typ string, v any) *Value {
	return &Value{Kind: Native, Type: typ, Native: v}
}

// NewComplex builds a structure value with fields in the given order.
func NewComplex(typ string, fields ...Field) *Value {
	return &Value{Kind: Complex, Type: typ, Fields: fields}
}

// NewArray builds an encoded array value.
func NewArray(typ, elemType string, elems ...*Value) *Value {
	return &Value{Kind: Array, Type: typ, ElemType: elemType, Elems: elems}
}

// EncodeCall serializes a method call body: a single method element in the
// namespace's urn with each parameter as a child, in declaration order.
func EncodeCall(namespace, method string, params []Param) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<%s:%s xmlns:%s=%q>", prefixMethod, method, prefixMethod, RPCNamespace(namespace))
	for _, p := range params {
		if err := p.Value.encode(&b, p.Name); err != nil {
			return nil, fmt.Errorf("encode %s: %w", p.Name, err)
		}
	}
	fmt.Fprintf(&b, "</%s:%s>", prefixMethod, method)
	return b.Bytes(), nil
}

// qualifyType renders a schema type reference for an xsi:type or arrayType
// attribute. Dotted names live in the iControl namespace; bare names are
// xsd primitives.
func qualifyType(typ string) string {
	if containsDot(typ) {
		return prefixIControl + ":" + typ
	}
	return prefixXsd + ":" + typ
}

func containsDot(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return true
		}
	}
	return false
}

func (v *Value) encode(b *bytes.Buffer, name string) error {
	if v == nil || (v.Kind == Native && v.Native == nil) {
		fmt.Fprintf(b, `<%s %s:nil="true"/>`, name, prefixXsi)
		return nil
	}
	switch v.Kind {
	case Complex:
		return v.encodeComplex(b, name)
	case Array:
		return v.encodeArray(b, name)
	default:
		return v.encodeNative(b, name)
	}
}

func (v *Value) encodeComplex(b *bytes.Buffer, name string) error {
	b.WriteByte('<')
	b.WriteString(name)
	if v.Type != "" {
		fmt.Fprintf(b, ` %s:type=%q`, prefixXsi, qualifyType(v.Type))
	}
	b.WriteByte('>')
	for _, f := range v.Fields {
		if err := f.Value.encode(b, f.Name); err != nil {
			return err
		}
	}
	closeElement(b, name)
	return nil
}

func (v *Value) encodeArray(b *bytes.Buffer, name string) error {
	b.WriteByte('<')
	b.WriteString(name)
	if v.Type != "" {
		fmt.Fprintf(b, ` %s:type=%q`, prefixXsi, qualifyType(v.Type))
	} else {
		fmt.Fprintf(b, ` %s:type="%s:Array"`, prefixXsi, prefixEncoding)
	}
	elem := v.ElemType
	if elem == "" {
		elem = "anyType"
	}
	fmt.Fprintf(b, ` %s:arrayType="%s[%d]">`, prefixEncoding, qualifyType(elem), len(v.Elems))
	for _, e := range v.Elems {
		if err := e.encode(b, "item"); err != nil {
			return err
		}
	}
	closeElement(b, name)
	return nil
}

// encodeNative writes a leaf, deriving the xsd type from the Go value when
// the Value carries no schema type of its own.
func (v *Value) encodeNative(b *bytes.Buffer, name string) error {
	switch n := v.Native.(type) {
	case *Value:
		return n.encode(b, name)
	case string:
		return v.writeLeaf(b, name, "string", n)
	case bool:
		return v.writeLeaf(b, name, "boolean", strconv.FormatBool(n))
	case int, int8, int16, int32, int64:
		return v.writeLeaf(b, name, "long", fmt.Sprintf("%d", n))
	case uint, uint8, uint16, uint32, uint64:
		return v.writeLeaf(b, name, "long", fmt.Sprintf("%d", n))
	case float32, float64:
		return v.writeLeaf(b, name, "double", fmt.Sprintf("%v", n))
	case []byte:
		return v.writeLeaf(b, name, "base64Binary", base64.StdEncoding.EncodeToString(n))
	case []any:
		return v.encodeNativeSlice(b, name, n)
	case []string:
		elems := make([]any, len(n))
		for i, s := range n {
			elems[i] = s
		}
		return v.encodeNativeSlice(b, name, elems)
	case map[string]any:
		return v.encodeNativeMap(b, name, n)
	default:
		// Opaque leaf; render the way the value prints.
		return v.writeLeaf(b, name, "string", fmt.Sprint(n))
	}
}

// encodeNativeSlice handles slices reaching the encoder without schema
// backing. Items are untyped natives under an anonymous encoded array.
func (v *Value) encodeNativeSlice(b *bytes.Buffer, name string, elems []any) error {
	arr := &Value{Kind: Array, Type: v.Type, ElemType: nativeElemType(elems)}
	for _, e := range elems {
		arr.Elems = append(arr.Elems, NewNative(e))
	}
	return arr.encode(b, name)
}

// encodeNativeMap handles maps reaching the encoder without schema backing.
// Keys are sorted so output is deterministic.
func (v *Value) encodeNativeMap(b *bytes.Buffer, name string, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cv := &Value{Kind: Complex, Type: v.Type}
	for _, k := range keys {
		cv.Fields = append(cv.Fields, Field{Name: k, Value: NewNative(m[k])})
	}
	return cv.encode(b, name)
}

func nativeElemType(elems []any) string {
	if len(elems) == 0 {
		return "anyType"
	}
	for _, e := range elems {
		if _, ok := e.(string); !ok {
			return "anyType"
		}
	}
	return "string"
}

func (v *Value) writeLeaf(b *bytes.Buffer, name, xsdType, text string) error {
	typ := qualifyType(xsdType)
	if v.Type != "" && containsDot(v.Type) {
		typ = qualifyType(v.Type)
	}
	fmt.Fprintf(b, `<%s %s:type=%q>`, name, prefixXsi, typ)
	if err := xml.EscapeText(b, []byte(text)); err != nil {
		return err
	}
	closeElement(b, name)
	return nil
}

func closeElement(b *bytes.Buffer, name string) {
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
}
