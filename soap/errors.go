package soap

import (
	"encoding/xml"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Fault represents a SOAP 1.1 fault returned by the iControl portal.
type Fault struct {
	// Code is the fault code (e.g., "SOAP-ENV:Server", "SOAP-ENV:Client").
	Code string

	// String is the human-readable fault string. The portal packs the
	// server-side exception dump in here, including the exception class
	// and numeric error codes.
	String string

	// Actor is the fault actor, when the portal reports one.
	Actor string

	// Detail is the raw inner XML of the detail element.
	Detail string
}

// Error implements the error interface.
func (f *Fault) Error() string {
	var parts []string
	if f.Code != "" {
		parts = append(parts, f.Code)
	}
	if f.String != "" {
		parts = append(parts, f.String)
	}
	return "soap fault: " + strings.Join(parts, ": ")
}

var (
	exceptionRe = regexp.MustCompile(`Exception: *([A-Za-z0-9_]+::[A-Za-z0-9_]+)`)
	primaryRe   = regexp.MustCompile(`primary_error_code *: *(\d+)`)
)

// ExceptionName extracts the server exception class from the fault text
// (e.g., "Common::OperationFailed"). Returns "" when no class is present.
func (f *Fault) ExceptionName() string {
	m := exceptionRe.FindStringSubmatch(f.String + "\n" + f.Detail)
	if m == nil {
		return ""
	}
	return m[1]
}

// PrimaryErrorCode extracts the numeric primary_error_code the appliance
// embeds in fault text. The second return is false when none is present.
func (f *Fault) PrimaryErrorCode() (int64, bool) {
	m := primaryRe.FindStringSubmatch(f.String + "\n" + f.Detail)
	if m == nil {
		return 0, false
	}
	code, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return code, true
}

// IsOperationFailed returns true if the fault reports the generic
// Common::OperationFailed exception.
func (f *Fault) IsOperationFailed() bool {
	return strings.HasSuffix(f.ExceptionName(), "::OperationFailed")
}

// IsFault returns true if the error is a SOAP Fault.
func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}

// ParseFault parses a portal response and returns a Fault if present.
// Returns nil if the response does not contain a fault.
func ParseFault(data []byte) (*Fault, error) {
	// Quick check if this might be a fault
	if !strings.Contains(string(data), ":Fault") &&
		!strings.Contains(string(data), "<Fault") {
		return nil, nil
	}

	var env faultEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse fault: %w", err)
	}

	// Check if fault is present
	if env.Body.Fault.Code == "" && env.Body.Fault.String == "" {
		return nil, nil
	}

	return &Fault{
		Code:   env.Body.Fault.Code,
		String: env.Body.Fault.String,
		Actor:  env.Body.Fault.Actor,
		Detail: strings.TrimSpace(env.Body.Fault.Detail.Inner),
	}, nil
}

// CheckFault parses a response and returns an error if it contains a fault.
func CheckFault(data []byte) error {
	fault, err := ParseFault(data)
	if err != nil {
		return err
	}
	if fault != nil {
		return fault
	}
	return nil
}

// faultEnvelope is the XML structure for parsing SOAP 1.1 faults. The fault
// children are unqualified per the SOAP 1.1 spec.
type faultEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Fault struct {
			Code   string `xml:"faultcode"`
			String string `xml:"faultstring"`
			Actor  string `xml:"faultactor"`
			Detail struct {
				Inner string `xml:",innerxml"`
			} `xml:"detail"`
		} `xml:"Fault"`
	} `xml:"Body"`
}
