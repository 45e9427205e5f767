package bigip

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"

	"github.com/smnsjas/go-icontrol/soap"
	"github.com/smnsjas/go-icontrol/wsdl"
)

// marshaler converts plain Go arguments into typed wire values using a
// namespace's parsed schema. Conversion is recursive over the declared
// type structure, so nested sequences and structures come out fully
// annotated without callers touching SOAP types.
type marshaler struct {
	doc    *wsdl.Document
	path   string
	logger *slog.Logger
}

// marshalArgs binds positional and named arguments to an operation's
// declared parameters and converts each bound value. Binding problems are
// argument errors raised before any traffic is sent.
func (mr *marshaler) marshalArgs(op *wsdl.Operation, args []any, named map[string]any) ([]soap.Param, error) {
	if len(args) > len(op.Params) {
		return nil, mr.argErr(op.Name, "too many arguments passed to method: %s", op.Signature())
	}

	unused := make(map[string]bool, len(named))
	for k := range named {
		unused[k] = true
	}

	params := make([]soap.Param, 0, len(op.Params))
	for i, p := range op.Params {
		var raw any
		bound := false
		if i < len(args) {
			raw = args[i]
			bound = true
		}
		if v, ok := named[p.Name]; ok {
			if bound {
				return nil, mr.argErr(op.Name,
					"got multiple values for argument %q in method: %s", p.Name, op.Signature())
			}
			raw = v
			bound = true
			delete(unused, p.Name)
		}
		if !bound {
			continue
		}
		val, err := mr.marshalValue(op.Name, p.Type, raw)
		if err != nil {
			return nil, err
		}
		params = append(params, soap.Param{Name: p.Name, Value: val})
	}

	if len(unused) > 0 {
		keys := make([]string, 0, len(unused))
		for k := range unused {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, mr.argErr(op.Name,
			"invalid keyword argument %q passed to method: %s",
			strings.Join(keys, ", "), op.Signature())
	}

	return params, nil
}

// marshalValue converts one argument for its declared schema type.
func (mr *marshaler) marshalValue(method, typeName string, raw any) (*soap.Value, error) {
	// Prebuilt values bypass schema processing entirely.
	if v, ok := raw.(*soap.Value); ok {
		return v, nil
	}

	// Undotted names are xsd primitives; the encoder derives the wire
	// type from the Go value.
	if !strings.Contains(typeName, ".") {
		return soap.NewNative(raw), nil
	}

	t, ok := mr.doc.Type(typeName)
	if !ok {
		// The schema references a type it never declares. Pass the raw
		// value through and let the appliance judge it, the same way the
		// portal's own clients behave.
		mr.logger.Error("failed to create type, passing argument through",
			"namespace", mr.path,
			"method", method,
			"type", typeName)
		return soap.NewNative(raw), nil
	}

	switch t.Kind {
	case wsdl.Array:
		return mr.marshalArray(method, t, raw)
	case wsdl.Complex:
		return mr.marshalComplex(method, t, raw)
	case wsdl.Enum:
		return mr.marshalEnum(method, t, raw)
	default:
		// Opaque or primitive alias; keep the declared name on the wire.
		return soap.NewTyped(t.Name, raw), nil
	}
}

// marshalArray converts a Go slice or array into an encoded array of the
// declared element type. Strings are iterable in some client languages,
// which makes passing one where a sequence is expected a classic mistake;
// it is rejected explicitly.
func (mr *marshaler) marshalArray(method string, t *wsdl.Type, raw any) (*soap.Value, error) {
	if s, ok := raw.(string); ok {
		return nil, mr.argErr(method,
			"%s needs an iterable, but was specified as a string: %q", t.Name, s)
	}

	rv := reflect.ValueOf(raw)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, mr.argErr(method,
			"%s needs an iterable, but got %T", t.Name, raw)
	}

	elems := make([]*soap.Value, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		ev, err := mr.marshalValue(method, t.Elem, rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		elems[i] = ev
	}
	return soap.NewArray(t.Name, t.Elem, elems...), nil
}

// marshalComplex converts a string-keyed map into a structure with fields
// emitted in schema order. Keys the type does not declare are rejected
// with the declared member list, so typos surface locally instead of as
// opaque appliance faults.
func (mr *marshaler) marshalComplex(method string, t *wsdl.Type, raw any) (*soap.Value, error) {
	m, err := mr.stringKeyed(method, t, raw)
	if err != nil {
		return nil, err
	}

	for k := range m {
		if _, ok := t.Field(k); !ok {
			return nil, mr.argErr(method,
				"%q is not a valid attribute for %s, expecting: %s",
				k, t.Name, strings.Join(t.FieldNames(), ", "))
		}
	}

	fields := make([]soap.Field, 0, len(m))
	for _, f := range t.Fields {
		raw, ok := m[f.Name]
		if !ok {
			continue
		}
		fv, err := mr.marshalValue(method, f.Type, raw)
		if err != nil {
			return nil, err
		}
		fields = append(fields, soap.Field{Name: f.Name, Value: fv})
	}
	return soap.NewComplex(t.Name, fields...), nil
}

// stringKeyed coerces a structure argument into map[string]any, accepting
// any map with string keys.
func (mr *marshaler) stringKeyed(method string, t *wsdl.Type, raw any) (map[string]any, error) {
	if m, ok := raw.(map[string]any); ok {
		return m, nil
	}
	rv := reflect.ValueOf(raw)
	if rv.IsValid() && rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		m := make(map[string]any, rv.Len())
		for _, k := range rv.MapKeys() {
			m[k.String()] = rv.MapIndex(k).Interface()
		}
		return m, nil
	}
	return nil, mr.argErr(method,
		"%v is not a valid value for %s, expecting a map with fields: %s",
		raw, t.Name, strings.Join(t.FieldNames(), ", "))
}

// marshalEnum validates a member name against the declared value list and
// stamps the enum's type name on the wire value.
func (mr *marshaler) marshalEnum(method string, t *wsdl.Type, raw any) (*soap.Value, error) {
	s, ok := raw.(string)
	if !ok {
		s = fmt.Sprint(raw)
	}
	if !t.HasValue(s) {
		return nil, mr.argErr(method,
			"%q is not a valid value for %s, expecting: %s",
			s, t.Name, strings.Join(t.SortedValues(), ", "))
	}
	return soap.NewTyped(t.Name, s), nil
}

func (mr *marshaler) argErr(method, format string, a ...any) *Error {
	return opError(KindArgument, mr.path, method, fmt.Sprintf(format, a...), nil)
}
