package binding

import (
	"testing"

	"github.com/apiweld/sdkgen/internal/ir"
)

func sampleService() *ir.Service {
	return &ir.Service{
		Name: "widget-store",
		Paths: []ir.HTTPPath{
			{
				Template: "/widgets/{id}",
				Operations: []ir.OperationRef{
					{Verb: ir.GET, Method: "GetWidget"},
					{Verb: ir.DELETE, Method: "DeleteWidget"},
				},
			},
			{
				Template: "/widgets",
				Operations: []ir.OperationRef{
					{Verb: ir.POST, Method: "CreateWidget"},
					// Duplicate binding for GetWidget; the first one wins.
					{Verb: ir.GET, Method: "GetWidget"},
				},
			},
		},
		Params: []ir.HTTPParameter{
			{Method: "GetWidget", Parameter: "id", In: ir.InPath, WireName: "id"},
			{Method: "GetWidget", Parameter: "expand", In: ir.InQuery, WireName: "expand_refs"},
			{Method: "CreateWidget", Parameter: "widget", In: ir.InBody, WireName: "widget"},
			{Method: "GetWidget", Parameter: "expand", In: ir.InHeader, WireName: "other"},
		},
	}
}

func TestResolverOperation(t *testing.T) {
	t.Parallel()
	res := NewResolver(sampleService())

	op, ok := res.Operation("GetWidget")
	if !ok {
		t.Fatalf("expected binding for GetWidget")
	}
	if op.Verb != ir.GET || op.Path != "/widgets/{id}" {
		t.Errorf("unexpected binding: %+v", op)
	}

	// Lookup is case-insensitive on the method name.
	if _, ok := res.Operation("getwidget"); !ok {
		t.Errorf("expected case-insensitive lookup to succeed")
	}

	if _, ok := res.Operation("ListWidgets"); ok {
		t.Errorf("expected no binding for undeclared method")
	}
}

func TestResolverParameter(t *testing.T) {
	t.Parallel()
	res := NewResolver(sampleService())

	p, ok := res.Parameter("GetWidget", "expand")
	if !ok {
		t.Fatalf("expected binding for expand")
	}
	// First declaration wins over the later header binding.
	if p.Location != ir.InQuery || p.WireName != "expand_refs" {
		t.Errorf("unexpected binding: %+v", p)
	}

	if _, ok := res.Parameter("GetWidget", "missing"); ok {
		t.Errorf("expected no binding for undeclared parameter")
	}
	if _, ok := res.Parameter("OtherMethod", "expand"); ok {
		t.Errorf("parameter bindings must be scoped per method")
	}
}

func TestResolverPathParameter(t *testing.T) {
	t.Parallel()
	res := NewResolver(sampleService())

	m := &ir.Method{
		Name: "GetWidget",
		Parameters: []ir.Parameter{
			{Name: "id", Shape: ir.PrimitiveShape(ir.PrimString), Required: true},
			{Name: "expand", Shape: ir.PrimitiveShape(ir.PrimBoolean)},
		},
	}
	name, ok := res.PathParameter(m, "id")
	if !ok || name != "id" {
		t.Fatalf("PathParameter = %q, %v", name, ok)
	}
	if _, ok := res.PathParameter(m, "slug"); ok {
		t.Errorf("expected no path parameter for unknown wire name")
	}
}

func TestResolverNilService(t *testing.T) {
	t.Parallel()
	res := NewResolver(nil)
	if _, ok := res.Operation("anything"); ok {
		t.Errorf("empty resolver must not resolve operations")
	}
}
