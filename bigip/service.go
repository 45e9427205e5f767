package bigip

import (
	"context"
	"fmt"
	"strings"

	"github.com/smnsjas/go-icontrol/wsdl"
)

// Service is the schema client for one fully resolved namespace, such as
// "LocalLB.Pool". It owns the parsed WSDL and hands out method handles
// validated against it.
type Service struct {
	client  *Client
	name    string
	doc     *wsdl.Document
	methods map[string]*Method
}

// Name returns the service's full dotted namespace path.
func (s *Service) Name() string {
	return s.name
}

// Method returns a handle for the named operation. Unknown names fail with
// a method-not-found error rather than reaching the appliance. Handles are
// cached, so repeated lookups return the identical value.
func (s *Service) Method(name string) (*Method, error) {
	if m, ok := s.methods[name]; ok {
		return m, nil
	}
	op, ok := s.doc.Operation(name)
	if !ok {
		return nil, opError(KindMethodNotFound, s.name, name,
			fmt.Sprintf("method %q is not declared by %s", name, s.name), nil)
	}
	m := &Method{service: s, op: op}
	s.methods[name] = m
	return m, nil
}

// Methods returns the operation names the service declares, in WSDL order.
func (s *Service) Methods() []string {
	ops := s.doc.Operations()
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.Name
	}
	return out
}

// Call invokes a method with positional arguments. It is shorthand for
// Method followed by Invoke.
func (s *Service) Call(ctx context.Context, method string, args ...any) (any, error) {
	m, err := s.Method(method)
	if err != nil {
		return nil, err
	}
	return m.Invoke(ctx, args...)
}

// CallNamed invokes a method with named arguments.
func (s *Service) CallNamed(ctx context.Context, method string, named map[string]any) (any, error) {
	m, err := s.Method(method)
	if err != nil {
		return nil, err
	}
	return m.InvokeNamed(ctx, named)
}

// Describe renders a human-readable summary of every operation the
// service declares, with signatures and any documentation the WSDL
// carries.
func (s *Service) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.name)
	for _, op := range s.doc.Operations() {
		fmt.Fprintf(&b, "\n    %s\n", op.Signature())
		if op.Doc != "" {
			for _, line := range strings.Split(strings.TrimSpace(op.Doc), "\n") {
				fmt.Fprintf(&b, "        %s\n", strings.TrimSpace(line))
			}
		}
	}
	return b.String()
}
