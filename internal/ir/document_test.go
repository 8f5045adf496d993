package ir

import (
	"context"
	"testing"
)

const widgetStoreYAML = `
service:
  name: widget-store
  version: 2

interfaces:
  - name: WidgetService
    description: Widget catalog operations
    methods:
      - name: GetWidget
        parameters:
          - name: id
            type: string
            validation: [required]
          - name: count
            type: integer
        returns: Widget
        security:
          - [apiKeyAuth]
      - name: CreateWidget
        parameters:
          - name: widget
            type: Widget
            validation: [required]

types:
  - name: Widget
    description: A widget in the catalog
    properties:
      - name: id
        type: string
      - name: createdAt
        type: datetime
      - name: color
        type: Color
      - name: tags
        type: string
        isArray: true

enums:
  - name: Color
    members:
      - name: RED
        value: red
      - name: GREEN
        value: green

security:
  - name: apiKeyAuth
    kind: apiKey
    parameter: X-Api-Key
    in: header

http:
  paths:
    - template: /widgets/{id}
      operations:
        - verb: get
          method: GetWidget
    - template: /widgets
      operations:
        - verb: post
          method: CreateWidget
  parameters:
    - method: GetWidget
      parameter: id
      in: path
    - method: GetWidget
      parameter: count
      in: query
      wire: max_count
    - method: CreateWidget
      parameter: widget
      in: body
`

func TestParseNativeDocument(t *testing.T) {
	t.Parallel()

	svc, err := Parse(context.Background(), []byte(widgetStoreYAML), "inline")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if svc.Name != "widget-store" {
		t.Errorf("name = %q", svc.Name)
	}
	if svc.MajorVersion != 2 {
		t.Errorf("major version = %d", svc.MajorVersion)
	}
	if len(svc.Interfaces) != 1 || len(svc.Interfaces[0].Methods) != 2 {
		t.Fatalf("unexpected interface layout: %+v", svc.Interfaces)
	}

	get := svc.Interfaces[0].Methods[0]
	if get.Name != "GetWidget" || get.Returns != "Widget" {
		t.Errorf("method mismatch: %+v", get)
	}
	if len(get.Parameters) != 2 {
		t.Fatalf("parameters: %+v", get.Parameters)
	}
	if !get.Parameters[0].Required {
		t.Errorf("id should be required via validation rule")
	}
	if get.Parameters[1].Required {
		t.Errorf("count should be optional")
	}
	if len(get.Security) != 1 || len(get.Security[0]) != 1 || get.Security[0][0] != "apiKeyAuth" {
		t.Errorf("security mismatch: %+v", get.Security)
	}
}

func TestParseNativeShapes(t *testing.T) {
	t.Parallel()

	svc, err := Parse(context.Background(), []byte(widgetStoreYAML), "inline")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	widget := svc.FindType("Widget")
	if widget == nil {
		t.Fatalf("missing Widget type")
	}
	byName := map[string]Shape{}
	for _, p := range widget.Properties {
		byName[p.Name] = p.Shape
	}

	if s := byName["createdAt"]; s.Kind != KindPrimitive || s.Primitive != PrimDateTime {
		t.Errorf("createdAt shape = %+v", s)
	}
	// A property naming a declared enum resolves to the enum variant, not a
	// plain type reference.
	if s := byName["color"]; s.Kind != KindEnum || s.Ref != "Color" {
		t.Errorf("color shape = %+v", s)
	}
	if s := byName["tags"]; s.Kind != KindArray || s.Elem == nil || s.Elem.Primitive != PrimString {
		t.Errorf("tags shape = %+v", s)
	}

	// The create method's parameter is a plain type reference.
	create := svc.Interfaces[0].Methods[1]
	if s := create.Parameters[0].Shape; s.Kind != KindReference || s.Ref != "Widget" {
		t.Errorf("widget param shape = %+v", s)
	}
}

func TestParseNativeBindings(t *testing.T) {
	t.Parallel()

	svc, err := Parse(context.Background(), []byte(widgetStoreYAML), "inline")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(svc.Paths) != 2 {
		t.Fatalf("paths: %+v", svc.Paths)
	}
	if svc.Paths[0].Template != "/widgets/{id}" || svc.Paths[0].Operations[0].Verb != GET {
		t.Errorf("path binding mismatch: %+v", svc.Paths[0])
	}

	// Wire name defaults to the parameter name when omitted.
	var id, count *HTTPParameter
	for i := range svc.Params {
		switch svc.Params[i].Parameter {
		case "id":
			id = &svc.Params[i]
		case "count":
			count = &svc.Params[i]
		}
	}
	if id == nil || id.WireName != "id" || id.In != InPath {
		t.Errorf("id binding = %+v", id)
	}
	if count == nil || count.WireName != "max_count" || count.In != InQuery {
		t.Errorf("count binding = %+v", count)
	}
}

func TestParseNativeMissingServiceName(t *testing.T) {
	t.Parallel()

	_, err := Parse(context.Background(), []byte("service:\n  version: 1\n"), "inline")
	if err == nil {
		t.Fatalf("expected error for missing service name")
	}
}

func TestParseNativeVersionDefault(t *testing.T) {
	t.Parallel()

	svc, err := Parse(context.Background(), []byte("service:\n  name: bare\n"), "inline")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if svc.MajorVersion != 1 {
		t.Errorf("major version should default to 1, got %d", svc.MajorVersion)
	}
}
