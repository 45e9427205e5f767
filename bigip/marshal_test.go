package bigip

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/smnsjas/go-icontrol/soap"
	"github.com/smnsjas/go-icontrol/wsdl"
)

func testMarshaler(t *testing.T) *marshaler {
	t.Helper()
	doc, err := wsdl.Parse([]byte(poolWSDL))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return &marshaler{
		doc:    doc,
		path:   "LocalLB.Pool",
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func fixtureOp(t *testing.T, mr *marshaler, name string) *wsdl.Operation {
	t.Helper()
	op, ok := mr.doc.Operation(name)
	if !ok {
		t.Fatalf("fixture operation %q missing", name)
	}
	return op
}

// TestMarshalArgs_Positional verifies positional binding in declaration
// order.
func TestMarshalArgs_Positional(t *testing.T) {
	mr := testMarshaler(t)
	op := fixtureOp(t, mr, "add_member")

	params, err := mr.marshalArgs(op, []any{
		[]string{"web_pool"},
		[]any{map[string]any{"address": "10.1.1.1", "port": 80}},
	}, nil)
	if err != nil {
		t.Fatalf("marshalArgs failed: %v", err)
	}

	if len(params) != 2 {
		t.Fatalf("got %d params, want 2", len(params))
	}
	if params[0].Name != "pool_names" || params[1].Name != "members" {
		t.Errorf("param names = %q, %q", params[0].Name, params[1].Name)
	}

	pools := params[0].Value
	if pools.Kind != soap.Array || pools.Type != "Common.StringSequence" || pools.ElemType != "string" {
		t.Errorf("pool_names value = %+v", pools)
	}
	if len(pools.Elems) != 1 || pools.Elems[0].Native != "web_pool" {
		t.Errorf("pool_names elems = %+v", pools.Elems)
	}

	members := params[1].Value
	if members.Kind != soap.Array || members.ElemType != "Common.AddressPort" {
		t.Errorf("members value = %+v", members)
	}
	m := members.Elems[0]
	if m.Kind != soap.Complex || m.Type != "Common.AddressPort" {
		t.Fatalf("member = %+v", m)
	}
	// Fields come out in schema order regardless of map ordering.
	if m.Fields[0].Name != "address" || m.Fields[1].Name != "port" {
		t.Errorf("field order = %q, %q", m.Fields[0].Name, m.Fields[1].Name)
	}
}

// TestMarshalArgs_Named verifies keyword binding.
func TestMarshalArgs_Named(t *testing.T) {
	mr := testMarshaler(t)
	op := fixtureOp(t, mr, "set_description")

	params, err := mr.marshalArgs(op, nil, map[string]any{
		"description": "app tier",
		"pool_name":   "web_pool",
	})
	if err != nil {
		t.Fatalf("marshalArgs failed: %v", err)
	}
	if len(params) != 2 {
		t.Fatalf("got %d params, want 2", len(params))
	}
	// Declaration order wins over map order.
	if params[0].Name != "pool_name" || params[1].Name != "description" {
		t.Errorf("param order = %q, %q", params[0].Name, params[1].Name)
	}
}

// TestMarshalArgs_Mixed verifies positional and named arguments combine.
func TestMarshalArgs_Mixed(t *testing.T) {
	mr := testMarshaler(t)
	op := fixtureOp(t, mr, "get_member")

	params, err := mr.marshalArgs(op, []any{"web_pool"},
		map[string]any{"member": map[string]any{"address": "10.1.1.1", "port": 80}})
	if err != nil {
		t.Fatalf("marshalArgs failed: %v", err)
	}
	if len(params) != 2 {
		t.Fatalf("got %d params, want 2", len(params))
	}
}

// TestMarshalArgs_TooMany verifies the positional overflow rejection.
func TestMarshalArgs_TooMany(t *testing.T) {
	mr := testMarshaler(t)
	op := fixtureOp(t, mr, "get_list")

	_, err := mr.marshalArgs(op, []any{"surplus"}, nil)
	if !errors.Is(err, ErrArgument) {
		t.Fatalf("err = %v, want argument error", err)
	}
	if !strings.Contains(err.Error(), "too many arguments passed to method") ||
		!strings.Contains(err.Error(), "get_list()") {
		t.Errorf("error = %v", err)
	}
}

// TestMarshalArgs_DuplicateBinding verifies a parameter supplied both
// positionally and by name is rejected.
func TestMarshalArgs_DuplicateBinding(t *testing.T) {
	mr := testMarshaler(t)
	op := fixtureOp(t, mr, "get_member")

	_, err := mr.marshalArgs(op, []any{"web_pool"}, map[string]any{"pool_name": "other"})
	if !errors.Is(err, ErrArgument) {
		t.Fatalf("err = %v, want argument error", err)
	}
	if !strings.Contains(err.Error(), "multiple values") ||
		!strings.Contains(err.Error(), "pool_name") {
		t.Errorf("error = %v", err)
	}
}

// TestMarshalArgs_UnknownKeyword verifies undeclared keyword names are
// rejected with the method signature.
func TestMarshalArgs_UnknownKeyword(t *testing.T) {
	mr := testMarshaler(t)
	op := fixtureOp(t, mr, "get_member")

	_, err := mr.marshalArgs(op, nil, map[string]any{"pool": "web_pool"})
	if !errors.Is(err, ErrArgument) {
		t.Fatalf("err = %v, want argument error", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "invalid keyword argument") ||
		!strings.Contains(msg, `"pool"`) ||
		!strings.Contains(msg, "get_member(") {
		t.Errorf("error = %v", err)
	}
}

// TestMarshalArgs_OmittedTrailing verifies unsupplied parameters are
// omitted rather than sent empty.
func TestMarshalArgs_OmittedTrailing(t *testing.T) {
	mr := testMarshaler(t)
	op := fixtureOp(t, mr, "set_description")

	params, err := mr.marshalArgs(op, []any{"web_pool"}, nil)
	if err != nil {
		t.Fatalf("marshalArgs failed: %v", err)
	}
	if len(params) != 1 || params[0].Name != "pool_name" {
		t.Errorf("params = %+v", params)
	}
}

// TestMarshalValue_StringForArray verifies a bare string never satisfies
// a sequence parameter.
func TestMarshalValue_StringForArray(t *testing.T) {
	mr := testMarshaler(t)
	op := fixtureOp(t, mr, "add_member")

	_, err := mr.marshalArgs(op, []any{"web_pool"}, nil)
	if !errors.Is(err, ErrArgument) {
		t.Fatalf("err = %v, want argument error", err)
	}
	if !strings.Contains(err.Error(), "needs an iterable") ||
		!strings.Contains(err.Error(), `"web_pool"`) {
		t.Errorf("error = %v", err)
	}
}

// TestMarshalValue_NonSliceForArray verifies scalars are rejected for
// sequence parameters.
func TestMarshalValue_NonSliceForArray(t *testing.T) {
	mr := testMarshaler(t)

	_, err := mr.marshalValue("add_member", "Common.StringSequence", 7)
	if !errors.Is(err, ErrArgument) {
		t.Fatalf("err = %v, want argument error", err)
	}
	if !strings.Contains(err.Error(), "needs an iterable") {
		t.Errorf("error = %v", err)
	}
}

// TestMarshalValue_ComplexUnknownKey verifies unknown structure members
// are rejected with the declared member list.
func TestMarshalValue_ComplexUnknownKey(t *testing.T) {
	mr := testMarshaler(t)

	_, err := mr.marshalValue("get_member", "Common.AddressPort",
		map[string]any{"address": "10.1.1.1", "vlan": 3})
	if !errors.Is(err, ErrArgument) {
		t.Fatalf("err = %v, want argument error", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, `"vlan" is not a valid attribute for Common.AddressPort`) ||
		!strings.Contains(msg, "address, port") {
		t.Errorf("error = %v", err)
	}
}

// TestMarshalValue_ComplexNotAMap verifies non-mapping values are
// rejected for structure parameters.
func TestMarshalValue_ComplexNotAMap(t *testing.T) {
	mr := testMarshaler(t)

	_, err := mr.marshalValue("get_member", "Common.AddressPort", 5)
	if !errors.Is(err, ErrArgument) {
		t.Fatalf("err = %v, want argument error", err)
	}
	if !strings.Contains(err.Error(), "Common.AddressPort") {
		t.Errorf("error = %v", err)
	}
}

// TestMarshalValue_TypedMap verifies maps with concrete value types pass
// through the reflective fallback.
func TestMarshalValue_TypedMap(t *testing.T) {
	mr := testMarshaler(t)

	v, err := mr.marshalValue("get_member", "Common.AddressPort",
		map[string]string{"address": "10.1.1.1"})
	if err != nil {
		t.Fatalf("marshalValue failed: %v", err)
	}
	if v.Kind != soap.Complex || len(v.Fields) != 1 || v.Fields[0].Name != "address" {
		t.Errorf("value = %+v", v)
	}
}

// TestMarshalValue_Enum verifies enumeration members validate against the
// declared list.
func TestMarshalValue_Enum(t *testing.T) {
	mr := testMarshaler(t)

	v, err := mr.marshalValue("set_lb_method", "LocalLB.LBMethod", "LB_METHOD_ROUND_ROBIN")
	if err != nil {
		t.Fatalf("marshalValue failed: %v", err)
	}
	if v.Kind != soap.Native || v.Type != "LocalLB.LBMethod" || v.Native != "LB_METHOD_ROUND_ROBIN" {
		t.Errorf("value = %+v", v)
	}

	_, err = mr.marshalValue("set_lb_method", "LocalLB.LBMethod", "LB_METHOD_BOGUS")
	if !errors.Is(err, ErrArgument) {
		t.Fatalf("err = %v, want argument error", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, `"LB_METHOD_BOGUS" is not a valid value for LocalLB.LBMethod`) {
		t.Errorf("error = %v", err)
	}
	// Valid members are listed sorted.
	if !strings.Contains(msg,
		"LB_METHOD_LEAST_CONNECTION_MEMBER, LB_METHOD_RATIO_MEMBER, LB_METHOD_ROUND_ROBIN") {
		t.Errorf("error should list members, got: %v", err)
	}
}

// TestMarshalValue_Opaque verifies declarationless types pass values
// through with the type name stamped on.
func TestMarshalValue_Opaque(t *testing.T) {
	mr := testMarshaler(t)

	v, err := mr.marshalValue("set_time_zone", "Common.TimeZone", "EST")
	if err != nil {
		t.Fatalf("marshalValue failed: %v", err)
	}
	if v.Kind != soap.Native || v.Type != "Common.TimeZone" || v.Native != "EST" {
		t.Errorf("value = %+v", v)
	}
}

// TestMarshalValue_UnknownType verifies schema gaps degrade to
// passthrough instead of failing the call.
func TestMarshalValue_UnknownType(t *testing.T) {
	mr := testMarshaler(t)
	op := fixtureOp(t, mr, "set_profile")

	raw := []any{"tcp", "http"}
	params, err := mr.marshalArgs(op, []any{raw}, nil)
	if err != nil {
		t.Fatalf("marshalArgs failed: %v", err)
	}
	v := params[0].Value
	if v.Kind != soap.Native || v.Type != "" {
		t.Errorf("value = %+v, want untyped passthrough", v)
	}
}

// TestMarshalValue_Prebuilt verifies caller-built values bypass schema
// processing untouched.
func TestMarshalValue_Prebuilt(t *testing.T) {
	mr := testMarshaler(t)

	built := soap.NewTyped("LocalLB.LBMethod", "LB_METHOD_RATIO_MEMBER")
	v, err := mr.marshalValue("set_lb_method", "LocalLB.LBMethod", built)
	if err != nil {
		t.Fatalf("marshalValue failed: %v", err)
	}
	if v != built {
		t.Error("prebuilt value was rebuilt")
	}
}

// TestMarshalValue_Primitive verifies undotted types skip schema
// processing.
func TestMarshalValue_Primitive(t *testing.T) {
	mr := testMarshaler(t)

	v, err := mr.marshalValue("set_description", "string", "web_pool")
	if err != nil {
		t.Fatalf("marshalValue failed: %v", err)
	}
	if v.Kind != soap.Native || v.Type != "" || v.Native != "web_pool" {
		t.Errorf("value = %+v", v)
	}
}
