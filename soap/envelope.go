package soap

import (
	"encoding/xml"
)

// Envelope represents a SOAP 1.1 envelope for iControl method calls.
//
// iControl carries no SOAP headers: the session identifier and credentials
// ride as HTTP headers, so the envelope is namespace declarations plus a
// body holding a single rpc/encoded method element.
type Envelope struct {
	XMLName xml.Name `xml:"SOAP-ENV:Envelope"`

	// Namespace declarations
	NsEnv string `xml:"xmlns:SOAP-ENV,attr"`
	NsEnc string `xml:"xmlns:SOAP-ENC,attr"`
	NsXsd string `xml:"xmlns:xsd,attr"`
	NsXsi string `xml:"xmlns:xsi,attr"`
	NsIC  string `xml:"xmlns:ic,attr"`

	// EncodingStyle declares SOAP section 5 encoding for the whole message,
	// matching what the portal itself emits.
	EncodingStyle string `xml:"SOAP-ENV:encodingStyle,attr"`

	Body *Body `xml:"SOAP-ENV:Body"`
}

// Body represents the SOAP body.
type Body struct {
	Content []byte `xml:",innerxml"`
}

// NewEnvelope creates a new SOAP envelope with required namespace declarations.
func NewEnvelope() *Envelope {
	return &Envelope{
		NsEnv:         NsEnvelope,
		NsEnc:         NsEncoding,
		NsXsd:         NsXsd,
		NsXsi:         NsXsi,
		NsIC:          NsIControl,
		EncodingStyle: NsEncoding,
		Body:          &Body{},
	}
}

// WithBody sets the SOAP body content.
func (e *Envelope) WithBody(content []byte) *Envelope {
	e.Body.Content = content
	return e
}

// WithCall encodes an rpc method element into the body. Params are written
// in the order given; the portal matches them to message parts by position.
func (e *Envelope) WithCall(namespace, method string, params []Param) (*Envelope, error) {
	body, err := EncodeCall(namespace, method, params)
	if err != nil {
		return nil, err
	}
	return e.WithBody(body), nil
}

// Marshal serializes the envelope to XML with the standard declaration
// prepended, which is what the portal's own stack emits.
func (e *Envelope) Marshal() ([]byte, error) {
	data, err := xml.Marshal(e)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}

// MarshalIndent serializes the envelope to indented XML. Useful for debug
// logging; the wire format uses Marshal.
func (e *Envelope) MarshalIndent(prefix, indent string) ([]byte, error) {
	return xml.MarshalIndent(e, prefix, indent)
}
