package soap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Node is one element of a decoded rpc/encoded response. The portal types
// every leaf with xsi:type and every sequence with SOAP-ENC:arrayType, so a
// generic tree is enough to rebuild native values without compiled schema
// bindings.
type Node struct {
	// Name is the element local name, prefix stripped.
	Name string

	// Type is the xsi:type local part ("long", "Common.AddressPort",
	// "Array"). Empty when the element is untyped.
	Type string

	// ArrayOf is the raw SOAP-ENC:arrayType value ("xsd:string[2]").
	// Empty when absent.
	ArrayOf string

	// Nil reports xsi:nil.
	Nil bool

	// Text is the accumulated character data. Meaningful for leaves only.
	Text string

	// Children holds child elements in document order.
	Children []*Node
}

// IsArray reports whether the node was encoded as a SOAP section 5 array.
func (n *Node) IsArray() bool {
	return n.ArrayOf != "" || n.Type == "Array"
}

// Child returns the first child with the given local name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ErrNoBody reports a response without a SOAP body.
var ErrNoBody = errors.New("soap: response has no body")

// DecodeResponse parses a portal reply and returns the node holding the
// method's return value. Void methods produce a response element with no
// children; those decode to nil with no error.
//
// Fault detection is the caller's concern; run CheckFault before decoding.
func DecodeResponse(data []byte) (*Node, error) {
	root, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}
	body := root.Child("Body")
	if body == nil {
		return nil, ErrNoBody
	}
	if len(body.Children) == 0 {
		return nil, nil
	}
	resp := body.Children[0]
	if len(resp.Children) == 0 {
		return nil, nil
	}
	return resp.Children[0], nil
}

// decodeDocument walks the token stream into a Node tree. A streaming walk
// keeps the decoder independent of any response shape; iControl responses
// vary per method and per appliance version.
func decodeDocument(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var root *Node
	var stack []*Node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := newNode(t)
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("decode response: no XML content")
	}
	return root, nil
}

func newNode(t xml.StartElement) *Node {
	n := &Node{Name: t.Name.Local}
	for _, a := range t.Attr {
		switch {
		case a.Name.Local == "type" && (a.Name.Space == NsXsi || a.Name.Space == ""):
			n.Type = localName(a.Value)
		case a.Name.Local == "arrayType":
			n.ArrayOf = a.Value
		case a.Name.Local == "nil" && (a.Name.Space == NsXsi || a.Name.Space == ""):
			n.Nil = a.Value == "true" || a.Value == "1"
		}
	}
	return n
}

// localName strips a namespace prefix from a qualified reference.
func localName(ref string) string {
	if i := strings.IndexByte(ref, ':'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
