// Package wsdl parses the per-namespace WSDL documents the iControl portal
// serves, extracting what a dynamic caller needs: operations with their
// ordered parameters, and a type index for argument marshalling.
//
// These documents are rpc/encoded WSDL 1.1 with a single schema, portType,
// binding, and service each. The parser tolerates prefix variations by
// matching local names and reads nothing it does not need.
package wsdl

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Param is one declared method parameter.
type Param struct {
	// Name is the message part name ("pool_names").
	Name string

	// Type is the local schema type name ("Common.StringSequence").
	Type string
}

// Operation is one method the namespace exposes.
type Operation struct {
	// Name is the method name ("get_list").
	Name string

	// Params holds declared parameters in message order.
	Params []Param

	// Returns is the output part type. Empty for void methods.
	Returns string

	// Doc is the operation documentation from the WSDL, when present.
	Doc string

	// SOAPAction is the action the binding advertises for this operation.
	SOAPAction string
}

// Signature renders the declared shape, "create_v2(Common.StringSequence
// pool_names, ...)", for error messages and interface listings.
func (op *Operation) Signature() string {
	var b strings.Builder
	b.WriteString(op.Name)
	b.WriteByte('(')
	for i, p := range op.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Type)
		b.WriteByte(' ')
		b.WriteString(p.Name)
	}
	b.WriteByte(')')
	return b.String()
}

// HasParam reports whether the operation declares the named parameter.
func (op *Operation) HasParam(name string) bool {
	for _, p := range op.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Document is a parsed namespace WSDL.
type Document struct {
	// Name is the service name ("LocalLB.Pool").
	Name string

	ops     map[string]*Operation
	opOrder []string
	types   map[string]*Type
}

// Operation returns the named operation.
func (d *Document) Operation(name string) (*Operation, bool) {
	op, ok := d.ops[name]
	return op, ok
}

// Operations returns every operation in document order.
func (d *Document) Operations() []*Operation {
	ops := make([]*Operation, 0, len(d.opOrder))
	for _, name := range d.opOrder {
		ops = append(ops, d.ops[name])
	}
	return ops
}

// Type returns the named schema type.
func (d *Document) Type(name string) (*Type, bool) {
	t, ok := d.types[name]
	return t, ok
}

// Parse reads a WSDL document into its operation and type indexes.
func Parse(data []byte) (*Document, error) {
	var defs xmlDefinitions
	if err := xml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("wsdl: parse: %w", err)
	}
	if len(defs.PortTypes) == 0 {
		return nil, fmt.Errorf("wsdl: document has no portType")
	}

	doc := &Document{
		Name:  defs.Name,
		ops:   make(map[string]*Operation),
		types: make(map[string]*Type),
	}
	if len(defs.Services) > 0 && defs.Services[0].Name != "" {
		doc.Name = defs.Services[0].Name
	}

	for _, schema := range defs.Types.Schemas {
		indexSchema(doc, schema)
	}

	messages := make(map[string][]Param, len(defs.Messages))
	returns := make(map[string]string, len(defs.Messages))
	for _, m := range defs.Messages {
		params := make([]Param, 0, len(m.Parts))
		for _, p := range m.Parts {
			typ := p.Type
			if typ == "" {
				typ = p.Element
			}
			params = append(params, Param{Name: p.Name, Type: localName(typ)})
		}
		messages[m.Name] = params
		if len(params) > 0 {
			returns[m.Name] = params[0].Type
		}
	}

	bindingDocs, actions := indexBindings(defs.Bindings)

	for _, pt := range defs.PortTypes {
		for _, o := range pt.Operations {
			op := &Operation{
				Name:       o.Name,
				Params:     messages[localName(o.Input.Message)],
				Returns:    returns[localName(o.Output.Message)],
				Doc:        strings.TrimSpace(o.Doc),
				SOAPAction: actions[o.Name],
			}
			if op.Doc == "" {
				op.Doc = bindingDocs[o.Name]
			}
			if _, dup := doc.ops[op.Name]; dup {
				continue
			}
			doc.ops[op.Name] = op
			doc.opOrder = append(doc.opOrder, op.Name)
		}
	}

	return doc, nil
}

func indexBindings(bindings []xmlBinding) (docs, actions map[string]string) {
	docs = make(map[string]string)
	actions = make(map[string]string)
	for _, b := range bindings {
		for _, o := range b.Operations {
			if d := strings.TrimSpace(o.Doc); d != "" {
				docs[o.Name] = d
			}
			if o.SoapOperation.SOAPAction != "" {
				actions[o.Name] = o.SoapOperation.SOAPAction
			}
		}
	}
	return docs, actions
}

// indexSchema classifies each schema type. Array detection keys on the
// arrayType attribute entry; a complexType carrying neither that nor any
// members is opaque and marshals as a passthrough.
func indexSchema(doc *Document, schema xmlSchema) {
	for _, ct := range schema.ComplexTypes {
		t := &Type{Name: ct.Name}
		switch {
		case ct.arrayType() != "":
			t.Kind = Array
			t.Elem = elemName(ct.arrayType())
		case len(ct.Sequence.Elements) > 0:
			t.Kind = Complex
			for _, e := range ct.Sequence.Elements {
				t.Fields = append(t.Fields, Field{Name: e.Name, Type: localName(e.Type)})
			}
		default:
			t.Kind = Opaque
		}
		doc.types[t.Name] = t
	}
	for _, st := range schema.SimpleTypes {
		t := &Type{Name: st.Name, Kind: Opaque}
		if len(st.Restriction.Enumerations) > 0 {
			t.Kind = Enum
			for _, e := range st.Restriction.Enumerations {
				t.Values = append(t.Values, e.Value)
			}
		}
		doc.types[t.Name] = t
	}
}

// XML shapes. Tags match local names only; portal WSDLs vary prefixes
// between versions.

type xmlDefinitions struct {
	XMLName xml.Name `xml:"definitions"`
	Name    string   `xml:"name,attr"`
	Types   struct {
		Schemas []xmlSchema `xml:"schema"`
	} `xml:"types"`
	Messages  []xmlMessage  `xml:"message"`
	PortTypes []xmlPortType `xml:"portType"`
	Bindings  []xmlBinding  `xml:"binding"`
	Services  []struct {
		Name string `xml:"name,attr"`
	} `xml:"service"`
}

type xmlSchema struct {
	ComplexTypes []xmlComplexType `xml:"complexType"`
	SimpleTypes  []xmlSimpleType  `xml:"simpleType"`
}

type xmlComplexType struct {
	Name     string `xml:"name,attr"`
	Sequence struct {
		Elements []xmlElement `xml:"element"`
	} `xml:"sequence"`
	ComplexContent struct {
		Restriction struct {
			Base       string `xml:"base,attr"`
			Attributes []struct {
				Ref       string `xml:"ref,attr"`
				ArrayType string `xml:"arrayType,attr"`
			} `xml:"attribute"`
		} `xml:"restriction"`
	} `xml:"complexContent"`
}

// arrayType returns the wsdl:arrayType value of the encoded-array attribute
// declaration, or "" when the type is not an array.
func (ct *xmlComplexType) arrayType() string {
	for _, a := range ct.ComplexContent.Restriction.Attributes {
		if strings.HasSuffix(localName(a.Ref), "arrayType") {
			if a.ArrayType != "" {
				return a.ArrayType
			}
			return "anyType[]"
		}
	}
	return ""
}

type xmlElement struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type xmlSimpleType struct {
	Name        string `xml:"name,attr"`
	Restriction struct {
		Base         string `xml:"base,attr"`
		Enumerations []struct {
			Value string `xml:"value,attr"`
		} `xml:"enumeration"`
	} `xml:"restriction"`
}

type xmlMessage struct {
	Name  string `xml:"name,attr"`
	Parts []struct {
		Name    string `xml:"name,attr"`
		Type    string `xml:"type,attr"`
		Element string `xml:"element,attr"`
	} `xml:"part"`
}

type xmlPortType struct {
	Name       string `xml:"name,attr"`
	Operations []struct {
		Name  string `xml:"name,attr"`
		Doc   string `xml:"documentation"`
		Input struct {
			Message string `xml:"message,attr"`
		} `xml:"input"`
		Output struct {
			Message string `xml:"message,attr"`
		} `xml:"output"`
	} `xml:"operation"`
}

type xmlBinding struct {
	Name       string `xml:"name,attr"`
	Operations []struct {
		Name          string `xml:"name,attr"`
		Doc           string `xml:"documentation"`
		SoapOperation struct {
			SOAPAction string `xml:"soapAction,attr"`
		} `xml:"operation"`
	} `xml:"operation"`
}
