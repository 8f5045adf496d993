package tsemitter

import (
	"fmt"
	"strings"

	"github.com/apiweld/sdkgen/internal/ir"
	"github.com/apiweld/sdkgen/internal/naming"
)

// The mapper module declares the domain types and enums plus one pair of
// conversion functions per type and per enum: wire→domain and domain→wire.
// Shared primitive-cast helpers are emitted once and reused by every type.

func wireToName(typeName string) string {
	return "wireTo" + naming.UpperCamel(typeName)
}

func toWireName(typeName string) string {
	return naming.LowerCamel(typeName) + "ToWire"
}

func enumMembersVar(enumName string) string {
	return naming.LowerCamel(enumName) + "Members"
}

// tsType maps a shape to the TypeScript type used in declarations.
func tsType(shape ir.Shape) string {
	switch shape.Kind {
	case ir.KindPrimitive:
		switch shape.Primitive {
		case ir.PrimBoolean:
			return "boolean"
		case ir.PrimDate, ir.PrimDateTime:
			return "Date"
		case ir.PrimDouble, ir.PrimFloat, ir.PrimNumber, ir.PrimInteger, ir.PrimLong:
			return "number"
		case ir.PrimString:
			return "string"
		default:
			return "any"
		}
	case ir.KindReference, ir.KindEnum:
		return naming.UpperCamel(shape.Ref)
	case ir.KindArray:
		return tsType(*shape.Elem) + "[]"
	default:
		return "any"
	}
}

// renderMapperModule renders the single mapper artifact for a service.
func renderMapperModule(svc *ir.Service, opts Options) string {
	var b strings.Builder
	writeHeader(&b, opts)

	// Type and enum declarations first so the conversion functions below can
	// reference them.
	for _, t := range svc.Types {
		writeInterfaceDecl(&b, t)
	}
	for _, e := range svc.Enums {
		writeEnumDecl(&b, e)
	}

	// Render conversion bodies into a scratch buffer first: the set of shared
	// helpers they need decides what gets emitted above them.
	used := newOrderedSet()
	var fns strings.Builder
	for _, t := range svc.Types {
		writeWireToType(&fns, t, opts.Casters, used)
		writeTypeToWire(&fns, t, opts.Casters, used)
	}
	for _, e := range svc.Enums {
		writeEnumConversions(&fns, e)
	}

	for _, helper := range helperOrder {
		if used.has(helper) {
			b.WriteString(helperSources[helper])
			b.WriteString("\n\n")
		}
	}
	b.WriteString(fns.String())

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeInterfaceDecl(b *strings.Builder, t ir.Type) {
	if t.Description != "" {
		fmt.Fprintf(b, "// %s\n", t.Description)
	}
	fmt.Fprintf(b, "export interface %s {\n", naming.UpperCamel(t.Name))
	for _, p := range t.Properties {
		fmt.Fprintf(b, "  %s?: %s;\n", p.Name, tsType(p.Shape))
	}
	b.WriteString("}\n\n")
}

func writeEnumDecl(b *strings.Builder, e ir.Enum) {
	values := make([]string, 0, len(e.Members))
	for _, m := range e.Members {
		values = append(values, tsQuote(m.Value))
	}
	union := strings.Join(values, " | ")
	if union == "" {
		union = "string"
	}
	fmt.Fprintf(b, "export type %s = %s;\n\n", naming.UpperCamel(e.Name), union)
	fmt.Fprintf(b, "const %s: any[] = [%s];\n\n", enumMembersVar(e.Name), strings.Join(values, ", "))
}

func writeWireToType(b *strings.Builder, t ir.Type, casters map[string]string, used *orderedSet) {
	fmt.Fprintf(b, "export function %s(value: any): any {\n", wireToName(t.Name))
	b.WriteString("  if (value === null || value === undefined || typeof value !== 'object') {\n")
	b.WriteString("    return value;\n")
	b.WriteString("  }\n")
	b.WriteString("  const out: any = {};\n")
	for _, p := range t.Properties {
		writePropertyAssign(b, p, wireToDomain, casters, used)
	}
	b.WriteString("  return out;\n")
	b.WriteString("}\n\n")
}

func writeTypeToWire(b *strings.Builder, t ir.Type, casters map[string]string, used *orderedSet) {
	used.add("compact")
	fmt.Fprintf(b, "export function %s(value: any): any {\n", toWireName(t.Name))
	b.WriteString("  if (value === null || value === undefined || typeof value !== 'object') {\n")
	b.WriteString("    return value;\n")
	b.WriteString("  }\n")
	b.WriteString("  const out: any = {};\n")
	for _, p := range t.Properties {
		writePropertyAssign(b, p, domainToWire, casters, used)
	}
	b.WriteString("  return compact(out);\n")
	b.WriteString("}\n\n")
}

// writePropertyAssign emits one property mapping. Array properties get an
// absence guard so a fully absent array field stays absent instead of
// becoming an empty sequence.
func writePropertyAssign(b *strings.Builder, p ir.Property, dir castDirection, casters map[string]string, used *orderedSet) {
	src := fmt.Sprintf("value[%s]", tsQuote(p.Name))
	expr := castExpr(dir, p.Shape, src, casters, used, 0)
	if p.Shape.Kind == ir.KindArray {
		fmt.Fprintf(b, "  if (%s !== undefined) {\n", src)
		fmt.Fprintf(b, "    out[%s] = %s;\n", tsQuote(p.Name), expr)
		b.WriteString("  }\n")
		return
	}
	fmt.Fprintf(b, "  out[%s] = %s;\n", tsQuote(p.Name), expr)
}

// writeEnumConversions emits the enum pair: wire→domain looks the value up
// among the declared members and falls back to the original wire value;
// domain→wire passes absence through unchanged.
func writeEnumConversions(b *strings.Builder, e ir.Enum) {
	fmt.Fprintf(b, "export function %s(value: any): any {\n", wireToName(e.Name))
	fmt.Fprintf(b, "  for (const member of %s) {\n", enumMembersVar(e.Name))
	b.WriteString("    if (member === value) {\n")
	b.WriteString("      return member;\n")
	b.WriteString("    }\n")
	b.WriteString("  }\n")
	b.WriteString("  return value;\n")
	b.WriteString("}\n\n")

	fmt.Fprintf(b, "export function %s(value: any): any {\n", toWireName(e.Name))
	b.WriteString("  if (value === null || value === undefined) {\n")
	b.WriteString("    return value;\n")
	b.WriteString("  }\n")
	b.WriteString("  return value;\n")
	b.WriteString("}\n\n")
}

func tsQuote(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "'", `\'`)
	return "'" + escaped + "'"
}

// writeHeader prepends the configured magic comments and the generated-file
// marker shared by every artifact.
func writeHeader(b *strings.Builder, opts Options) {
	for _, line := range opts.MagicComments {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("// Generated by sdkgen. DO NOT EDIT.\n\n")
}
