// Package soap implements the SOAP 1.1 rpc/encoded message layer used by
// the iControl portal on F5 BIG-IP appliances.
//
// These constants define the XML namespaces used in SOAP envelopes for
// iControl method calls and the portal paths the appliance serves them on.
package soap

import "strings"

// XML Namespace URIs for SOAP 1.1 rpc/encoded messages.
const (
	// NsEnvelope is the SOAP 1.1 envelope namespace.
	NsEnvelope = "http://schemas.xmlsoap.org/soap/envelope/"

	// NsEncoding is the SOAP 1.1 section 5 encoding namespace.
	NsEncoding = "http://schemas.xmlsoap.org/soap/encoding/"

	// NsXsd is the XML Schema datatypes namespace.
	NsXsd = "http://www.w3.org/2001/XMLSchema"

	// NsXsi is the XML Schema Instance namespace.
	NsXsi = "http://www.w3.org/2001/XMLSchema-instance"

	// NsIControl is the schema namespace iControl declares its types under.
	NsIControl = "urn:iControl"
)

// Portal paths on the appliance.
const (
	// PortalPath is the CGI endpoint that accepts every iControl method call.
	// The endpoint advertised inside each WSDL is ignored; appliances behind
	// NAT or a management route publish unreachable self-addresses there.
	PortalPath = "/iControl/iControlPortal.cgi"

	// WSDLQuery is the query parameter that selects a namespace's WSDL.
	WSDLQuery = "WSDL"
)

// Prefixes used when serializing typed values. Kept stable so recorded
// exchanges diff cleanly.
const (
	prefixEnvelope = "SOAP-ENV"
	prefixEncoding = "SOAP-ENC"
	prefixXsd      = "xsd"
	prefixXsi      = "xsi"
	prefixIControl = "ic"
	prefixMethod   = "ns1"
)

// RPCNamespace returns the urn the portal expects a method element of the
// named namespace to be qualified with. Namespace names are dotted
// ("LocalLB.Pool"); the urn uses slashes ("urn:iControl:LocalLB/Pool").
func RPCNamespace(namespace string) string {
	return NsIControl + ":" + strings.ReplaceAll(namespace, ".", "/")
}

// DefaultSOAPAction returns the action header value used when a WSDL binding
// does not advertise one.
func DefaultSOAPAction(namespace string) string {
	return RPCNamespace(namespace)
}
