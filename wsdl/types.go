package wsdl

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a schema type for argument marshalling.
type Kind int

const (
	// Primitive is an xsd built-in carried as character data.
	Primitive Kind = iota

	// Complex is a structure with named, ordered fields.
	Complex

	// Array is a SOAP encoded array with a declared element type.
	Array

	// Enum is a string restriction with a fixed member list.
	Enum

	// Opaque is a named type the schema declares nothing useful about.
	// Values pass through marshalling untouched.
	Opaque
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case Complex:
		return "complex"
	case Array:
		return "array"
	case Enum:
		return "enum"
	case Opaque:
		return "opaque"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Type is one named schema type from a namespace's WSDL.
type Type struct {
	// Name is the local type name ("Common.AddressPort").
	Name string

	// Kind selects which of the remaining fields carry data.
	Kind Kind

	// Fields holds members in schema order when Kind is Complex.
	Fields []Field

	// Elem is the element type local name when Kind is Array.
	Elem string

	// Values holds members when Kind is Enum.
	Values []string
}

// Field is a named member of a Complex type.
type Field struct {
	Name string
	Type string
}

// Field returns the member with the given name.
func (t *Type) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the member names in schema order.
func (t *Type) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// HasValue reports whether the enum declares the given member.
func (t *Type) HasValue(v string) bool {
	for _, m := range t.Values {
		if m == v {
			return true
		}
	}
	return false
}

// SortedValues returns enum members sorted for stable error messages.
func (t *Type) SortedValues() []string {
	vs := make([]string, len(t.Values))
	copy(vs, t.Values)
	sort.Strings(vs)
	return vs
}

// localName strips a namespace prefix from a qualified reference.
func localName(ref string) string {
	if i := strings.IndexByte(ref, ':'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// elemName strips the array suffix from a wsdl:arrayType value
// ("xsd:string[]" becomes "string").
func elemName(arrayType string) string {
	name := localName(arrayType)
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}
