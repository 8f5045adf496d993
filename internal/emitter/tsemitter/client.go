package tsemitter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/apiweld/sdkgen/internal/binding"
	"github.com/apiweld/sdkgen/internal/ir"
	"github.com/apiweld/sdkgen/internal/naming"
)

// One client artifact per interface: a class holding the base root address
// plus one credential field per distinct security scheme referenced by its
// methods, and one async operation per method with a resolvable binding.
// Methods without an operation binding are silently omitted.

const queryStringHelper = `function queryString(params: Record<string, any>): string {
  const parts: string[] = [];
  for (const key of Object.keys(params)) {
    parts.push(encodeURIComponent(key) + '=' + encodeURIComponent(String(params[key])));
  }
  return parts.length === 0 ? '' : '?' + parts.join('&');
}`

func clientClassName(ifaceName string) string {
	return naming.UpperCamel(ifaceName) + "Client"
}

func renderClientModule(svc *ir.Service, iface ir.Interface, res *binding.Resolver, opts Options, mapperImport string) string {
	// Lexicographic method order keeps output independent of declaration
	// order in the IR.
	methods := make([]ir.Method, len(iface.Methods))
	copy(methods, iface.Methods)
	sort.Slice(methods, func(i, j int) bool { return methods[i].Name < methods[j].Name })

	creds := newOrderedSet()
	for _, m := range methods {
		if _, ok := res.Operation(m.Name); !ok {
			continue
		}
		for _, alt := range m.Security {
			for _, name := range alt {
				creds.add(name)
			}
		}
	}

	imports := newOrderedSet()
	needsQuery := false
	var body strings.Builder
	for _, m := range methods {
		op, ok := res.Operation(m.Name)
		if !ok {
			continue
		}
		renderOperation(&body, svc, &m, op, res, imports, &needsQuery)
	}

	var b strings.Builder
	writeHeader(&b, opts)
	for _, include := range opts.FileIncludes {
		fmt.Fprintf(&b, "import %s;\n", tsQuote(include))
	}
	if !imports.empty() {
		fmt.Fprintf(&b, "import { %s } from %s;\n", strings.Join(imports.list(), ", "), tsQuote(mapperImport))
	}
	if len(opts.FileIncludes) > 0 || !imports.empty() {
		b.WriteString("\n")
	}

	if iface.Description != "" {
		fmt.Fprintf(&b, "// %s\n", iface.Description)
	}
	fmt.Fprintf(&b, "export class %s {\n", clientClassName(iface.Name))
	b.WriteString("  private readonly root: string;\n")
	for _, name := range creds.list() {
		fmt.Fprintf(&b, "  private readonly %s: string;\n", naming.LowerCamel(name))
	}
	b.WriteString("\n")
	ctorParams := []string{"root: string"}
	for _, name := range creds.list() {
		ctorParams = append(ctorParams, naming.LowerCamel(name)+": string")
	}
	fmt.Fprintf(&b, "  constructor(%s) {\n", strings.Join(ctorParams, ", "))
	b.WriteString("    this.root = root;\n")
	for _, name := range creds.list() {
		field := naming.LowerCamel(name)
		fmt.Fprintf(&b, "    this.%s = %s;\n", field, field)
	}
	b.WriteString("  }\n")
	b.WriteString(body.String())
	b.WriteString("}\n")

	if needsQuery {
		b.WriteString("\n")
		b.WriteString(queryStringHelper)
		b.WriteString("\n")
	}

	return b.String()
}

func renderOperation(b *strings.Builder, svc *ir.Service, m *ir.Method, op binding.Operation, res *binding.Resolver, imports *orderedSet, needsQuery *bool) {
	// Split the parameter list by transport location. A parameter without a
	// resolvable binding is dropped from request assembly; path parameters
	// surface through the template substitution below.
	var queryParams, headerParams []ir.Parameter
	var bodyParam *ir.Parameter
	queryBindings := make(map[string]binding.Param)
	headerBindings := make(map[string]binding.Param)
	for i, p := range m.Parameters {
		pb, ok := res.Parameter(m.Name, p.Name)
		if !ok {
			continue
		}
		switch pb.Location {
		case ir.InQuery:
			queryParams = append(queryParams, p)
			queryBindings[p.Name] = pb
		case ir.InHeader:
			headerParams = append(headerParams, p)
			headerBindings[p.Name] = pb
		case ir.InBody:
			if bodyParam == nil {
				bodyParam = &m.Parameters[i]
			}
		}
	}

	collectSignatureImports(m, imports)

	b.WriteString("\n")
	if m.Description != "" {
		fmt.Fprintf(b, "  // %s\n", m.Description)
	}
	fmt.Fprintf(b, "  async %s(%s): %s {\n", naming.LowerCamel(m.Name), signature(m), returnType(m))

	fmt.Fprintf(b, "    const uri = %s;\n", uriExpr(svc, m, op.Path, res))

	if len(queryParams) > 0 {
		*needsQuery = true
		b.WriteString("    const query: Record<string, any> = {};\n")
		for _, p := range queryParams {
			wire := queryBindings[p.Name].WireName
			v := paramVar(p.Name)
			if p.Required {
				fmt.Fprintf(b, "    query[%s] = %s;\n", tsQuote(wire), v)
			} else {
				fmt.Fprintf(b, "    if (%s !== null && %s !== undefined) {\n", v, v)
				fmt.Fprintf(b, "      query[%s] = %s;\n", tsQuote(wire), v)
				b.WriteString("    }\n")
			}
		}
	}

	headerLines := renderHeaders(svc, m, headerParams, headerBindings)
	if len(headerLines) > 0 {
		b.WriteString("    const headers: Record<string, string> = {};\n")
		for _, line := range headerLines {
			b.WriteString(line)
		}
	}

	if bodyParam != nil {
		expr := bodyWireExpr(*bodyParam, imports)
		if bodyParam.Required {
			fmt.Fprintf(b, "    const body = JSON.stringify(%s);\n", expr)
		} else {
			v := paramVar(bodyParam.Name)
			b.WriteString("    let body: string | undefined = undefined;\n")
			fmt.Fprintf(b, "    if (%s !== null && %s !== undefined) {\n", v, v)
			fmt.Fprintf(b, "      body = JSON.stringify(%s);\n", expr)
			b.WriteString("    }\n")
		}
	}

	target := "uri"
	if len(queryParams) > 0 {
		target = "uri + queryString(query)"
	}
	await := "await fetch"
	if m.Returns != "" {
		await = "const response = await fetch"
	}
	fmt.Fprintf(b, "    %s(%s, {\n", await, target)
	fmt.Fprintf(b, "      method: %s,\n", tsQuote(strings.ToUpper(string(op.Verb))))
	if len(headerLines) > 0 {
		b.WriteString("      headers: headers,\n")
	}
	if bodyParam != nil {
		b.WriteString("      body: body,\n")
	}
	b.WriteString("    });\n")

	if m.Returns != "" {
		conv := wireToName(m.Returns)
		imports.add(naming.UpperCamel(m.Returns))
		imports.add(conv)
		b.WriteString("    const text = await response.text();\n")
		fmt.Fprintf(b, "    return %s(JSON.parse(text));\n", conv)
	}
	b.WriteString("  }\n")
}

// renderHeaders emits API-key security injection first, then header-bound
// parameters. Scheme kinds other than a header-bound API key produce no
// code.
func renderHeaders(svc *ir.Service, m *ir.Method, headerParams []ir.Parameter, bindings map[string]binding.Param) []string {
	var lines []string
	injected := newOrderedSet()
	for _, alt := range m.Security {
		for _, name := range alt {
			scheme := svc.FindScheme(name)
			if scheme == nil || scheme.Kind != ir.SchemeAPIKey || scheme.In != ir.InHeader {
				continue
			}
			if injected.has(scheme.ParamName) {
				continue
			}
			injected.add(scheme.ParamName)
			lines = append(lines, fmt.Sprintf("    headers[%s] = this.%s;\n", tsQuote(scheme.ParamName), naming.LowerCamel(scheme.Name)))
		}
	}
	for _, p := range headerParams {
		wire := bindings[p.Name].WireName
		v := paramVar(p.Name)
		if p.Required {
			lines = append(lines, fmt.Sprintf("    headers[%s] = String(%s);\n", tsQuote(wire), v))
		} else {
			lines = append(lines, fmt.Sprintf("    if (%s !== null && %s !== undefined) {\n      headers[%s] = String(%s);\n    }\n", v, v, tsQuote(wire), v))
		}
	}
	return lines
}

// signature orders required parameters before optional ones, each group in
// declaration order. Optional parameter types are wrapped as nullable.
func signature(m *ir.Method) string {
	var parts []string
	for _, p := range m.Parameters {
		if p.Required {
			parts = append(parts, fmt.Sprintf("%s: %s", paramVar(p.Name), tsType(p.Shape)))
		}
	}
	for _, p := range m.Parameters {
		if !p.Required {
			parts = append(parts, fmt.Sprintf("%s?: %s | null", paramVar(p.Name), tsType(p.Shape)))
		}
	}
	return strings.Join(parts, ", ")
}

func returnType(m *ir.Method) string {
	if m.Returns == "" {
		return "Promise<void>"
	}
	return fmt.Sprintf("Promise<%s>", naming.UpperCamel(m.Returns))
}

// uriExpr builds the request URI expression: base root, the major-version
// segment, then the path template with each placeholder that resolves to a
// path-bound parameter substituted. Placeholders that do not resolve stay as
// literal template text.
func uriExpr(svc *ir.Service, m *ir.Method, template string, res *binding.Resolver) string {
	parts := []string{"this.root", tsQuote(fmt.Sprintf("/v%d", svc.MajorVersion))}
	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			parts = append(parts, tsQuote(literal.String()))
			literal.Reset()
		}
	}
	for _, seg := range strings.Split(strings.TrimPrefix(template, "/"), "/") {
		name, isPlaceholder := placeholderName(seg)
		if isPlaceholder {
			if paramName, ok := res.PathParameter(m, name); ok {
				literal.WriteString("/")
				flush()
				parts = append(parts, fmt.Sprintf("encodeURIComponent(String(%s))", paramVar(paramName)))
				continue
			}
		}
		literal.WriteString("/")
		literal.WriteString(seg)
	}
	flush()
	return strings.Join(parts, " + ")
}

func placeholderName(segment string) (string, bool) {
	if strings.HasPrefix(segment, ":") && len(segment) > 1 {
		return segment[1:], true
	}
	if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") && len(segment) > 2 {
		return segment[1 : len(segment)-1], true
	}
	return "", false
}

// bodyWireExpr converts the body parameter to its wire representation via
// the generated domain→wire mapper when its shape references a declared type
// or enum; primitives and arrays serialize as-is.
func bodyWireExpr(p ir.Parameter, imports *orderedSet) string {
	v := paramVar(p.Name)
	switch p.Shape.Kind {
	case ir.KindReference, ir.KindEnum:
		conv := toWireName(p.Shape.Ref)
		imports.add(conv)
		return fmt.Sprintf("%s(%s)", conv, v)
	default:
		return v
	}
}

// collectSignatureImports gathers the declared type and enum names a method
// signature mentions so the client can import them from the mapper module.
func collectSignatureImports(m *ir.Method, imports *orderedSet) {
	var visit func(s ir.Shape)
	visit = func(s ir.Shape) {
		switch s.Kind {
		case ir.KindReference, ir.KindEnum:
			imports.add(naming.UpperCamel(s.Ref))
		case ir.KindArray:
			visit(*s.Elem)
		}
	}
	for _, p := range m.Parameters {
		visit(p.Shape)
	}
}

func paramVar(name string) string {
	return naming.LowerCamel(name)
}
