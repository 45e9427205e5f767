package bigip

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

// Stub WSDLs covering the schema shapes the portal serves: encoded arrays,
// structures, enumerations, primitives, and void methods.

const poolWSDL = `<?xml version="1.0"?>
<definitions name="LocalLB.Pool" targetNamespace="urn:iControl"
    xmlns:tns="urn:iControl"
    xmlns:xsd="http://www.w3.org/2001/XMLSchema"
    xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/"
    xmlns:soapenc="http://schemas.xmlsoap.org/soap/encoding/"
    xmlns:wsdl="http://schemas.xmlsoap.org/wsdl/"
    xmlns="http://schemas.xmlsoap.org/wsdl/">
  <types>
    <xsd:schema targetNamespace="urn:iControl">
      <xsd:complexType name="Common.StringSequence">
        <xsd:complexContent>
          <xsd:restriction base="soapenc:Array">
            <xsd:attribute ref="soapenc:arrayType" wsdl:arrayType="xsd:string[]"/>
          </xsd:restriction>
        </xsd:complexContent>
      </xsd:complexType>
      <xsd:complexType name="Common.AddressPort">
        <xsd:sequence>
          <xsd:element name="address" type="xsd:string"/>
          <xsd:element name="port" type="xsd:long"/>
        </xsd:sequence>
      </xsd:complexType>
      <xsd:complexType name="Common.AddressPortSequence">
        <xsd:complexContent>
          <xsd:restriction base="soapenc:Array">
            <xsd:attribute ref="soapenc:arrayType" wsdl:arrayType="tns:Common.AddressPort[]"/>
          </xsd:restriction>
        </xsd:complexContent>
      </xsd:complexType>
      <xsd:simpleType name="LocalLB.LBMethod">
        <xsd:restriction base="xsd:string">
          <xsd:enumeration value="LB_METHOD_ROUND_ROBIN"/>
          <xsd:enumeration value="LB_METHOD_RATIO_MEMBER"/>
          <xsd:enumeration value="LB_METHOD_LEAST_CONNECTION_MEMBER"/>
        </xsd:restriction>
      </xsd:simpleType>
      <xsd:simpleType name="Common.TimeZone">
        <xsd:restriction base="xsd:string"/>
      </xsd:simpleType>
    </xsd:schema>
  </types>
  <message name="LocalLB.Pool.get_listRequest"/>
  <message name="LocalLB.Pool.get_listResponse">
    <part name="return" type="tns:Common.StringSequence"/>
  </message>
  <message name="LocalLB.Pool.get_memberRequest">
    <part name="pool_name" type="xsd:string"/>
    <part name="member" type="tns:Common.AddressPort"/>
  </message>
  <message name="LocalLB.Pool.get_memberResponse">
    <part name="return" type="tns:Common.AddressPort"/>
  </message>
  <message name="LocalLB.Pool.add_memberRequest">
    <part name="pool_names" type="tns:Common.StringSequence"/>
    <part name="members" type="tns:Common.AddressPortSequence"/>
  </message>
  <message name="LocalLB.Pool.add_memberResponse"/>
  <message name="LocalLB.Pool.set_lb_methodRequest">
    <part name="pool_names" type="tns:Common.StringSequence"/>
    <part name="lb_method" type="tns:LocalLB.LBMethod"/>
  </message>
  <message name="LocalLB.Pool.set_lb_methodResponse"/>
  <message name="LocalLB.Pool.set_descriptionRequest">
    <part name="pool_name" type="xsd:string"/>
    <part name="description" type="xsd:string"/>
  </message>
  <message name="LocalLB.Pool.set_descriptionResponse"/>
  <message name="LocalLB.Pool.set_profileRequest">
    <part name="profiles" type="tns:Common.ProfileSequence"/>
  </message>
  <message name="LocalLB.Pool.set_profileResponse"/>
  <portType name="LocalLB.PoolPortType">
    <operation name="get_list">
      <input message="tns:LocalLB.Pool.get_listRequest"/>
      <output message="tns:LocalLB.Pool.get_listResponse"/>
    </operation>
    <operation name="get_member">
      <input message="tns:LocalLB.Pool.get_memberRequest"/>
      <output message="tns:LocalLB.Pool.get_memberResponse"/>
    </operation>
    <operation name="add_member">
      <input message="tns:LocalLB.Pool.add_memberRequest"/>
      <output message="tns:LocalLB.Pool.add_memberResponse"/>
    </operation>
    <operation name="set_lb_method">
      <input message="tns:LocalLB.Pool.set_lb_methodRequest"/>
      <output message="tns:LocalLB.Pool.set_lb_methodResponse"/>
    </operation>
    <operation name="set_description">
      <input message="tns:LocalLB.Pool.set_descriptionRequest"/>
      <output message="tns:LocalLB.Pool.set_descriptionResponse"/>
    </operation>
    <operation name="set_profile">
      <input message="tns:LocalLB.Pool.set_profileRequest"/>
      <output message="tns:LocalLB.Pool.set_profileResponse"/>
    </operation>
  </portType>
  <binding name="LocalLB.PoolBinding" type="tns:LocalLB.PoolPortType">
    <soap:binding style="rpc" transport="http://schemas.xmlsoap.org/soap/http"/>
    <operation name="get_list">
      <soap:operation soapAction="urn:iControl:LocalLB/Pool"/>
      <documentation>Gets the list of all pools.</documentation>
      <input><soap:body use="encoded" namespace="urn:iControl:LocalLB/Pool"/></input>
      <output><soap:body use="encoded" namespace="urn:iControl:LocalLB/Pool"/></output>
    </operation>
    <operation name="get_member">
      <soap:operation soapAction="urn:iControl:LocalLB/Pool"/>
      <input><soap:body use="encoded" namespace="urn:iControl:LocalLB/Pool"/></input>
      <output><soap:body use="encoded" namespace="urn:iControl:LocalLB/Pool"/></output>
    </operation>
    <operation name="add_member">
      <soap:operation soapAction="urn:iControl:LocalLB/Pool"/>
      <documentation>Adds members to the specified pools.</documentation>
      <input><soap:body use="encoded" namespace="urn:iControl:LocalLB/Pool"/></input>
      <output><soap:body use="encoded" namespace="urn:iControl:LocalLB/Pool"/></output>
    </operation>
    <operation name="set_lb_method">
      <soap:operation soapAction="urn:iControl:LocalLB/Pool"/>
      <input><soap:body use="encoded" namespace="urn:iControl:LocalLB/Pool"/></input>
      <output><soap:body use="encoded" namespace="urn:iControl:LocalLB/Pool"/></output>
    </operation>
    <operation name="set_description">
      <soap:operation soapAction="urn:iControl:LocalLB/Pool"/>
      <input><soap:body use="encoded" namespace="urn:iControl:LocalLB/Pool"/></input>
      <output><soap:body use="encoded" namespace="urn:iControl:LocalLB/Pool"/></output>
    </operation>
    <operation name="set_profile">
      <soap:operation soapAction="urn:iControl:LocalLB/Pool"/>
      <input><soap:body use="encoded" namespace="urn:iControl:LocalLB/Pool"/></input>
      <output><soap:body use="encoded" namespace="urn:iControl:LocalLB/Pool"/></output>
    </operation>
  </binding>
  <service name="LocalLB.Pool">
    <port name="LocalLB.PoolPort" binding="tns:LocalLB.PoolBinding">
      <soap:address location="https://192.168.1.245:443/iControl/iControlPortal.cgi"/>
    </port>
  </service>
</definitions>`

const systemInfoWSDL = `<?xml version="1.0"?>
<definitions name="System.SystemInfo" targetNamespace="urn:iControl"
    xmlns:tns="urn:iControl"
    xmlns:xsd="http://www.w3.org/2001/XMLSchema"
    xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/"
    xmlns="http://schemas.xmlsoap.org/wsdl/">
  <types/>
  <message name="System.SystemInfo.get_uptimeRequest"/>
  <message name="System.SystemInfo.get_uptimeResponse">
    <part name="return" type="xsd:long"/>
  </message>
  <message name="System.SystemInfo.get_versionRequest"/>
  <message name="System.SystemInfo.get_versionResponse">
    <part name="return" type="xsd:string"/>
  </message>
  <portType name="System.SystemInfoPortType">
    <operation name="get_uptime">
      <input message="tns:System.SystemInfo.get_uptimeRequest"/>
      <output message="tns:System.SystemInfo.get_uptimeResponse"/>
    </operation>
    <operation name="get_version">
      <input message="tns:System.SystemInfo.get_versionRequest"/>
      <output message="tns:System.SystemInfo.get_versionResponse"/>
    </operation>
  </portType>
  <binding name="System.SystemInfoBinding" type="tns:System.SystemInfoPortType">
    <soap:binding style="rpc" transport="http://schemas.xmlsoap.org/soap/http"/>
    <operation name="get_uptime">
      <soap:operation soapAction="urn:iControl:System/SystemInfo"/>
      <input><soap:body use="encoded" namespace="urn:iControl:System/SystemInfo"/></input>
      <output><soap:body use="encoded" namespace="urn:iControl:System/SystemInfo"/></output>
    </operation>
    <operation name="get_version">
      <soap:operation soapAction="urn:iControl:System/SystemInfo"/>
      <input><soap:body use="encoded" namespace="urn:iControl:System/SystemInfo"/></input>
      <output><soap:body use="encoded" namespace="urn:iControl:System/SystemInfo"/></output>
    </operation>
  </binding>
  <service name="System.SystemInfo">
    <port name="System.SystemInfoPort" binding="tns:System.SystemInfoBinding">
      <soap:address location="https://192.168.1.245:443/iControl/iControlPortal.cgi"/>
    </port>
  </service>
</definitions>`

const sessionWSDL = `<?xml version="1.0"?>
<definitions name="System.Session" targetNamespace="urn:iControl"
    xmlns:tns="urn:iControl"
    xmlns:xsd="http://www.w3.org/2001/XMLSchema"
    xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/"
    xmlns="http://schemas.xmlsoap.org/wsdl/">
  <types/>
  <message name="System.Session.get_session_identifierRequest"/>
  <message name="System.Session.get_session_identifierResponse">
    <part name="return" type="xsd:long"/>
  </message>
  <message name="System.Session.start_transactionRequest"/>
  <message name="System.Session.start_transactionResponse"/>
  <message name="System.Session.submit_transactionRequest"/>
  <message name="System.Session.submit_transactionResponse"/>
  <message name="System.Session.rollback_transactionRequest"/>
  <message name="System.Session.rollback_transactionResponse"/>
  <portType name="System.SessionPortType">
    <operation name="get_session_identifier">
      <input message="tns:System.Session.get_session_identifierRequest"/>
      <output message="tns:System.Session.get_session_identifierResponse"/>
    </operation>
    <operation name="start_transaction">
      <input message="tns:System.Session.start_transactionRequest"/>
      <output message="tns:System.Session.start_transactionResponse"/>
    </operation>
    <operation name="submit_transaction">
      <input message="tns:System.Session.submit_transactionRequest"/>
      <output message="tns:System.Session.submit_transactionResponse"/>
    </operation>
    <operation name="rollback_transaction">
      <input message="tns:System.Session.rollback_transactionRequest"/>
      <output message="tns:System.Session.rollback_transactionResponse"/>
    </operation>
  </portType>
  <binding name="System.SessionBinding" type="tns:System.SessionPortType">
    <soap:binding style="rpc" transport="http://schemas.xmlsoap.org/soap/http"/>
    <operation name="get_session_identifier">
      <soap:operation soapAction="urn:iControl:System/Session"/>
      <input><soap:body use="encoded" namespace="urn:iControl:System/Session"/></input>
      <output><soap:body use="encoded" namespace="urn:iControl:System/Session"/></output>
    </operation>
    <operation name="start_transaction">
      <soap:operation soapAction="urn:iControl:System/Session"/>
      <input><soap:body use="encoded" namespace="urn:iControl:System/Session"/></input>
      <output><soap:body use="encoded" namespace="urn:iControl:System/Session"/></output>
    </operation>
    <operation name="submit_transaction">
      <soap:operation soapAction="urn:iControl:System/Session"/>
      <input><soap:body use="encoded" namespace="urn:iControl:System/Session"/></input>
      <output><soap:body use="encoded" namespace="urn:iControl:System/Session"/></output>
    </operation>
    <operation name="rollback_transaction">
      <soap:operation soapAction="urn:iControl:System/Session"/>
      <input><soap:body use="encoded" namespace="urn:iControl:System/Session"/></input>
      <output><soap:body use="encoded" namespace="urn:iControl:System/Session"/></output>
    </operation>
  </binding>
  <service name="System.Session">
    <port name="System.SessionPort" binding="tns:System.SessionBinding">
      <soap:address location="https://192.168.1.245:443/iControl/iControlPortal.cgi"/>
    </port>
  </service>
</definitions>`

// legacySessionWSDL models an appliance predating session support: the
// namespace exists but declares no get_session_identifier.
const legacySessionWSDL = `<?xml version="1.0"?>
<definitions name="System.Session" targetNamespace="urn:iControl"
    xmlns:tns="urn:iControl"
    xmlns:xsd="http://www.w3.org/2001/XMLSchema"
    xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/"
    xmlns="http://schemas.xmlsoap.org/wsdl/">
  <types/>
  <message name="System.Session.set_session_timeoutRequest">
    <part name="timeout" type="xsd:long"/>
  </message>
  <message name="System.Session.set_session_timeoutResponse"/>
  <portType name="System.SessionPortType">
    <operation name="set_session_timeout">
      <input message="tns:System.Session.set_session_timeoutRequest"/>
      <output message="tns:System.Session.set_session_timeoutResponse"/>
    </operation>
  </portType>
  <binding name="System.SessionBinding" type="tns:System.SessionPortType">
    <soap:binding style="rpc" transport="http://schemas.xmlsoap.org/soap/http"/>
    <operation name="set_session_timeout">
      <soap:operation soapAction="urn:iControl:System/Session"/>
      <input><soap:body use="encoded" namespace="urn:iControl:System/Session"/></input>
      <output><soap:body use="encoded" namespace="urn:iControl:System/Session"/></output>
    </operation>
  </binding>
  <service name="System.Session">
    <port name="System.SessionPort" binding="tns:System.SessionBinding">
      <soap:address location="https://192.168.1.245:443/iControl/iControlPortal.cgi"/>
    </port>
  </service>
</definitions>`

// poolFault is the portal's reply when a named pool does not exist. The
// portal sends faults with HTTP status 500.
const poolFault = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/"
    xmlns:SOAP-ENC="http://schemas.xmlsoap.org/soap/encoding/"
    xmlns:xsd="http://www.w3.org/2001/XMLSchema"
    xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
<SOAP-ENV:Body>
<SOAP-ENV:Fault>
<faultcode>SOAP-ENV:Server</faultcode>
<faultstring>Exception caught in LocalLB::urn:iControl:LocalLB/Pool::get_member()
Exception: Common::OperationFailed
	primary_error_code   : 16908342 (0x01020036)
	secondary_error_code : 0
	error_string         : 01020036:3: The requested pool (/Common/nosuchpool) was not found.</faultstring>
<faultactor></faultactor>
<detail><errorcode xsi:type="xsd:int">16908342</errorcode></detail>
</SOAP-ENV:Fault>
</SOAP-ENV:Body>
</SOAP-ENV:Envelope>`

// stubWSDLs returns the namespace set a default test appliance publishes.
func stubWSDLs() map[string]string {
	return map[string]string{
		"LocalLB.Pool":      poolWSDL,
		"System.SystemInfo": systemInfoWSDL,
		"System.Session":    sessionWSDL,
	}
}

// soapResponse wraps a single result element in a portal reply envelope.
func soapResponse(inner string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/"` +
		` xmlns:SOAP-ENC="http://schemas.xmlsoap.org/soap/encoding/"` +
		` xmlns:xsd="http://www.w3.org/2001/XMLSchema"` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<SOAP-ENV:Body><m:response xmlns:m="urn:iControl:stub">` + inner +
		`</m:response></SOAP-ENV:Body></SOAP-ENV:Envelope>`
}

// voidResponse is a reply from a method that returns nothing.
func voidResponse() string {
	return soapResponse("")
}

// portalIndex renders the portal's HTML index listing WSDL links.
func portalIndex(names ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>iControl Portal</title></head><body><table>")
	for _, n := range names {
		fmt.Fprintf(&b, `<tr><td><a href="/iControl/iControlPortal.cgi?WSDL=%s">%s</a></td></tr>`, n, n)
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

var methodRE = regexp.MustCompile(`<ns1:([A-Za-z0-9_]+)`)

// calledMethod extracts the invoked method name from a request body.
func calledMethod(body []byte) string {
	m := methodRE.FindSubmatch(body)
	if m == nil {
		return ""
	}
	return string(m[1])
}

// servePortal builds a handler answering WSDL and index GETs from wsdls
// and delegating method POSTs to call.
func servePortal(t *testing.T, wsdls map[string]string, call http.HandlerFunc) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			ns := r.URL.Query().Get("WSDL")
			if ns == "" {
				names := make([]string, 0, len(wsdls))
				for n := range wsdls {
					names = append(names, n)
				}
				io.WriteString(w, portalIndex(names...))
				return
			}
			doc, ok := wsdls[ns]
			if !ok {
				// The portal answers unknown namespaces with an HTML
				// error page, not an HTTP error.
				fmt.Fprintf(w, "<html><body>WSDL for program %s not found</body></html>", ns)
				return
			}
			io.WriteString(w, doc)
			return
		}
		if call == nil {
			t.Errorf("unexpected %s %s", r.Method, r.URL)
			http.Error(w, "unexpected call", http.StatusInternalServerError)
			return
		}
		call(w, r)
	}
}

// stubHostPort extracts the host and port of a stub portal server.
func stubHostPort(t *testing.T, srv *httptest.Server) (string, int) {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split server host: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

// newTestClient builds a client against a stub portal server.
func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	host, port := stubHostPort(t, srv)

	cfg := DefaultConfig()
	cfg.Port = port
	c, err := New(context.Background(), host, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

// resolveStub resolves a namespace against a stub, failing the test on
// error.
func resolveStub(t *testing.T, c *Client, path string) *Service {
	t.Helper()
	svc, err := c.Resolve(context.Background(), path)
	if err != nil {
		t.Fatalf("Resolve(%s) failed: %v", path, err)
	}
	return svc
}
