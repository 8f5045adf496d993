package tsemitter

import (
	"strings"
	"testing"

	"github.com/apiweld/sdkgen/internal/ir"
)

func widgetService() *ir.Service {
	return &ir.Service{
		Name:         "widget-store",
		MajorVersion: 1,
		Interfaces: []ir.Interface{
			{
				Name:        "WidgetService",
				Description: "Widget catalog operations",
				Methods: []ir.Method{
					{
						Name: "GetWidget",
						Parameters: []ir.Parameter{
							{Name: "id", Shape: ir.PrimitiveShape(ir.PrimString), Required: true},
							{Name: "count", Shape: ir.PrimitiveShape(ir.PrimInteger)},
						},
						Returns:  "Widget",
						Security: [][]string{{"apiKeyAuth"}},
					},
					{
						Name: "CreateWidget",
						Parameters: []ir.Parameter{
							{Name: "widget", Shape: ir.ReferenceShape("Widget"), Required: true},
						},
						Returns: "Widget",
					},
					{
						// No operation binding; the client omits it.
						Name: "ListAll",
					},
				},
			},
		},
		Types: []ir.Type{
			{
				Name: "Widget",
				Properties: []ir.Property{
					{Name: "id", Shape: ir.PrimitiveShape(ir.PrimString)},
					{Name: "createdAt", Shape: ir.PrimitiveShape(ir.PrimDateTime)},
					{Name: "color", Shape: ir.EnumShape("Color")},
					{Name: "counts", Shape: ir.ArrayShape(ir.PrimitiveShape(ir.PrimInteger))},
					{Name: "tags", Shape: ir.ArrayShape(ir.PrimitiveShape(ir.PrimString))},
				},
			},
		},
		Enums: []ir.Enum{
			{
				Name: "Color",
				Members: []ir.EnumMember{
					{Name: "RED", Value: "red"},
					{Name: "GREEN", Value: "green"},
				},
			},
		},
		Schemes: []ir.SecurityScheme{
			{Name: "apiKeyAuth", Kind: ir.SchemeAPIKey, ParamName: "X-Api-Key", In: ir.InHeader},
		},
		Paths: []ir.HTTPPath{
			{Template: "/widgets/{id}", Operations: []ir.OperationRef{{Verb: ir.GET, Method: "GetWidget"}}},
			{Template: "/widgets", Operations: []ir.OperationRef{{Verb: ir.POST, Method: "CreateWidget"}}},
		},
		Params: []ir.HTTPParameter{
			{Method: "GetWidget", Parameter: "id", In: ir.InPath, WireName: "id"},
			{Method: "GetWidget", Parameter: "count", In: ir.InQuery, WireName: "max_count"},
			{Method: "CreateWidget", Parameter: "widget", In: ir.InBody, WireName: "widget"},
		},
	}
}

func mustContain(t *testing.T, src, want string) {
	t.Helper()
	if !strings.Contains(src, want) {
		t.Fatalf("missing %q in output:\n%s", want, src)
	}
}

func mustNotContain(t *testing.T, src, want string) {
	t.Helper()
	if strings.Contains(src, want) {
		t.Fatalf("unexpected %q in output:\n%s", want, src)
	}
}

func TestMapperDeclarations(t *testing.T) {
	t.Parallel()
	out := renderMapperModule(widgetService(), Options{})

	mustContain(t, out, "// Generated by sdkgen. DO NOT EDIT.")
	mustContain(t, out, "export interface Widget {")
	mustContain(t, out, "  id?: string;")
	mustContain(t, out, "  createdAt?: Date;")
	mustContain(t, out, "  color?: Color;")
	mustContain(t, out, "  tags?: string[];")
	mustContain(t, out, "export type Color = 'red' | 'green';")
	mustContain(t, out, "const colorMembers: any[] = ['red', 'green'];")
}

func TestMapperConversions(t *testing.T) {
	t.Parallel()
	out := renderMapperModule(widgetService(), Options{})

	mustContain(t, out, "export function wireToWidget(value: any): any {")
	mustContain(t, out, "export function widgetToWire(value: any): any {")
	// Non-object inputs pass through instead of throwing.
	mustContain(t, out, "if (value === null || value === undefined || typeof value !== 'object') {")
	mustContain(t, out, "out['createdAt'] = toDateTime(value['createdAt']);")
	mustContain(t, out, "out['createdAt'] = formatDateTime(value['createdAt']);")
	mustContain(t, out, "out['color'] = wireToColor(value['color']);")
	mustContain(t, out, "out['color'] = colorToWire(value['color']);")
	// The outbound direction always compacts absent fields.
	mustContain(t, out, "return compact(out);")
}

func TestMapperArrayProperties(t *testing.T) {
	t.Parallel()
	out := renderMapperModule(widgetService(), Options{})

	// Absent arrays stay absent instead of becoming empty values.
	mustContain(t, out, "if (value['tags'] !== undefined) {")
	// Casting elements stays inside an Array.isArray check.
	mustContain(t, out, "Array.isArray(value['counts']) ? value['counts'].map((item: any) => toInteger(item)) : value['counts']")
	// Plain string arrays need no per-element cast.
	mustContain(t, out, "out['tags'] = value['tags'];")
	mustNotContain(t, out, "value['tags'].map")
}

func TestMapperHelpersOnlyWhenUsed(t *testing.T) {
	t.Parallel()
	out := renderMapperModule(widgetService(), Options{})

	mustContain(t, out, "export function toDateTime(")
	mustContain(t, out, "export function toInteger(")
	mustContain(t, out, "export function compact(")
	// No boolean or date-only fields exist, so their helpers stay out.
	mustNotContain(t, out, "export function toBoolean(")
	mustNotContain(t, out, "export function toDate(value")
	mustNotContain(t, out, "export function formatDate(value")
}

func TestMapperEnumFallback(t *testing.T) {
	t.Parallel()
	out := renderMapperModule(widgetService(), Options{})

	mustContain(t, out, "export function wireToColor(value: any): any {")
	mustContain(t, out, "for (const member of colorMembers) {")
	// Unknown wire values fall back to the original input.
	mustContain(t, out, "  return value;\n}")
	mustContain(t, out, "export function colorToWire(value: any): any {")
}

func TestMapperCustomCasters(t *testing.T) {
	t.Parallel()
	out := renderMapperModule(widgetService(), Options{
		Casters: map[string]string{"datetime": "parseStamp"},
	})

	mustContain(t, out, "out['createdAt'] = parseStamp(value['createdAt']);")
	// The default helpers are replaced in both directions and never emitted.
	mustNotContain(t, out, "toDateTime(")
	mustNotContain(t, out, "formatDateTime(")
}

func TestMapperMagicComments(t *testing.T) {
	t.Parallel()
	out := renderMapperModule(widgetService(), Options{
		MagicComments: []string{"/* eslint-disable */", "// @ts-nocheck"},
	})

	if !strings.HasPrefix(out, "/* eslint-disable */\n// @ts-nocheck\n// Generated by sdkgen. DO NOT EDIT.\n") {
		t.Fatalf("header mismatch:\n%s", out[:120])
	}
}
