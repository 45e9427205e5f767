package bigip

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/smnsjas/go-icontrol/soap"
	"github.com/smnsjas/go-icontrol/soap/transport"
	"github.com/smnsjas/go-icontrol/wsdl"
)

// Method is a handle for one declared operation of a resolved namespace.
// Invoking it marshals arguments against the WSDL schema, performs the
// portal round trip, and returns the normalized result.
type Method struct {
	service *Service
	op      *wsdl.Operation
}

// Name returns the operation name.
func (m *Method) Name() string {
	return m.op.Name
}

// Signature renders the operation's declared parameter list.
func (m *Method) Signature() string {
	return m.op.Signature()
}

// Returns reports the declared result type. Empty for void methods.
func (m *Method) Returns() string {
	return m.op.Returns
}

// Usage renders the signature plus the WSDL's documentation text, when the
// appliance ships any.
func (m *Method) Usage() string {
	if m.op.Doc == "" {
		return m.op.Signature()
	}
	return m.op.Signature() + "\n" + m.op.Doc
}

// Invoke calls the method with positional arguments matched to the
// declared parameters in order.
func (m *Method) Invoke(ctx context.Context, args ...any) (any, error) {
	return m.InvokeArgs(ctx, args, nil)
}

// InvokeNamed calls the method with arguments matched to the declared
// parameters by name.
func (m *Method) InvokeNamed(ctx context.Context, named map[string]any) (any, error) {
	return m.InvokeArgs(ctx, nil, named)
}

// InvokeArgs calls the method with positional and named arguments
// combined. Positional arguments bind to the leading parameters; a
// parameter supplied both ways is rejected before anything is sent.
//
// Every failure path returns an *Error: argument mismatches and unknown
// methods are rejected locally with no network traffic, transport and
// authentication failures come back as connection errors, appliance
// faults as server errors, and unparseable bodies as parse errors. No
// failure is retried.
func (m *Method) InvokeArgs(ctx context.Context, args []any, named map[string]any) (any, error) {
	svc := m.service
	c := svc.client

	mr := &marshaler{doc: svc.doc, path: svc.name, logger: c.logger}
	params, err := mr.marshalArgs(m.op, args, named)
	if err != nil {
		return nil, err
	}

	callID := uuid.NewString()
	c.logger.Debug("executing iControl method",
		"call_id", callID,
		"namespace", svc.name,
		"method", m.op.Name,
		"args", args,
		"named", named)

	env, err := soap.NewEnvelope().WithCall(svc.name, m.op.Name, params)
	if err != nil {
		return nil, opError(KindArgument, svc.name, m.op.Name, "failed to encode arguments", err)
	}
	body, err := env.Marshal()
	if err != nil {
		return nil, opError(KindArgument, svc.name, m.op.Name, "failed to encode request", err)
	}

	action := m.op.SOAPAction
	if action == "" {
		action = soap.DefaultSOAPAction(svc.name)
	}

	resp, err := c.portal.Post(ctx, c.endpoint, action, body, c.callHeaders())
	if err != nil {
		if errors.Is(err, transport.ErrUnauthorized) {
			return nil, opError(KindConnection, svc.name, m.op.Name,
				"iControl call failed, possibly invalid credentials", err)
		}
		return nil, opError(KindConnection, svc.name, m.op.Name, "", err)
	}

	fault, ferr := soap.ParseFault(resp.Body)
	if fault != nil {
		c.logger.Debug("iControl method faulted",
			"call_id", callID,
			"method", m.op.Name,
			"fault", fault.String)
		return nil, serverError(svc.name, m.op.Name, fault)
	}
	if ferr != nil {
		return nil, opError(KindParse, svc.name, m.op.Name,
			"failed to parse the appliance's fault response", ferr)
	}

	node, err := soap.DecodeResponse(resp.Body)
	if err != nil {
		return nil, opError(KindParse, svc.name, m.op.Name,
			"failed to parse the appliance's response; this is likely caused by a 500 error page", err)
	}

	return normalize(node), nil
}
