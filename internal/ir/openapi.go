package ir

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// FromOpenAPI converts an OpenAPI v3 document into the Service IR: interfaces
// from operation tags, methods from operationIds, bindings from parameter
// locations, types and enums from component schemas, and API-key security
// schemes from the components security section.
func FromOpenAPI(ctx context.Context, doc *openapi3.T) (*Service, error) {
	_ = ctx
	if doc == nil {
		return nil, fmt.Errorf("ir: nil openapi document")
	}

	var title, version string
	if doc.Info != nil {
		title = safeStr(doc.Info.Title)
		version = safeStr(doc.Info.Version)
	}
	svc := &Service{
		Name:         deriveServiceName(title),
		MajorVersion: majorVersionOf(version),
	}
	if svc.Name == "" {
		svc.Name = "service"
	}

	enumNames := importSchemas(doc, svc)
	importSecuritySchemes(doc, svc)
	importOperations(doc, svc, enumNames)

	return svc, nil
}

// importSchemas fills svc.Types and svc.Enums and returns the set of enum
// names so operation shapes can resolve against it.
func importSchemas(doc *openapi3.T, svc *Service) map[string]struct{} {
	enumNames := make(map[string]struct{})
	if doc.Components == nil || doc.Components.Schemas == nil {
		return enumNames
	}

	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	// Two passes: enum names must be known before property shapes resolve.
	for _, name := range names {
		ref := doc.Components.Schemas[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		if len(ref.Value.Enum) > 0 {
			enumNames[name] = struct{}{}
		}
	}

	for _, name := range names {
		ref := doc.Components.Schemas[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		s := ref.Value
		if len(s.Enum) > 0 {
			en := Enum{Name: name}
			for _, v := range s.Enum {
				val := fmt.Sprintf("%v", v)
				en.Members = append(en.Members, EnumMember{Name: enumMemberName(val), Value: val})
			}
			svc.Enums = append(svc.Enums, en)
			continue
		}
		if s.Type != "object" && len(s.Properties) == 0 {
			continue
		}
		ty := Type{Name: name, Description: safeStr(s.Description)}
		propNames := make([]string, 0, len(s.Properties))
		for pn := range s.Properties {
			propNames = append(propNames, pn)
		}
		sort.Strings(propNames)
		for _, pn := range propNames {
			ty.Properties = append(ty.Properties, Property{
				Name:  pn,
				Shape: shapeOf(s.Properties[pn], enumNames),
			})
		}
		svc.Types = append(svc.Types, ty)
	}
	return enumNames
}

func importSecuritySchemes(doc *openapi3.T, svc *Service) {
	if doc.Components == nil || doc.Components.SecuritySchemes == nil {
		return
	}
	names := make([]string, 0, len(doc.Components.SecuritySchemes))
	for name := range doc.Components.SecuritySchemes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ref := doc.Components.SecuritySchemes[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		s := ref.Value
		scheme := SecurityScheme{Name: name, Kind: SchemeKind(safeStr(s.Type))}
		if scheme.Kind == SchemeAPIKey {
			scheme.ParamName = safeStr(s.Name)
			scheme.In = Location(safeStr(s.In))
		}
		svc.Schemes = append(svc.Schemes, scheme)
	}
}

func importOperations(doc *openapi3.T, svc *Service, enumNames map[string]struct{}) {
	if doc.Paths == nil {
		return
	}
	pathKeys := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	// Interfaces keyed by first tag, in first-seen order.
	ifaceIndex := make(map[string]int)

	for _, p := range pathKeys {
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		hp := HTTPPath{Template: p}

		ops := []struct {
			v Verb
			o *openapi3.Operation
		}{
			{GET, item.Get},
			{POST, item.Post},
			{PUT, item.Put},
			{DELETE, item.Delete},
			{PATCH, item.Patch},
			{HEAD, item.Head},
			{OPTIONS, item.Options},
		}

		for _, pair := range ops {
			if pair.o == nil {
				continue
			}
			methodName := safeStr(pair.o.OperationID)
			if methodName == "" {
				methodName = deriveMethodName(string(pair.v), p)
			}
			hp.Operations = append(hp.Operations, OperationRef{Verb: pair.v, Method: methodName})

			method := Method{
				Name:        methodName,
				Description: safeStr(pair.o.Description),
			}

			// Path-level parameters first, operation-level after.
			merged := append([]*openapi3.ParameterRef(nil), item.Parameters...)
			merged = append(merged, pair.o.Parameters...)
			for _, pref := range merged {
				if pref == nil || pref.Value == nil {
					continue
				}
				pv := pref.Value
				method.Parameters = append(method.Parameters, Parameter{
					Name:     pv.Name,
					Shape:    shapeOf(pv.Schema, enumNames),
					Required: pv.Required,
				})
				svc.Params = append(svc.Params, HTTPParameter{
					Method:    methodName,
					Parameter: pv.Name,
					In:        Location(safeStr(pv.In)),
					WireName:  pv.Name,
				})
			}

			if pair.o.RequestBody != nil && pair.o.RequestBody.Value != nil {
				if shape, ok := bodyShape(pair.o.RequestBody.Value, enumNames); ok {
					method.Parameters = append(method.Parameters, Parameter{
						Name:     "body",
						Shape:    shape,
						Required: pair.o.RequestBody.Value.Required,
					})
					svc.Params = append(svc.Params, HTTPParameter{
						Method:    methodName,
						Parameter: "body",
						In:        InBody,
						WireName:  "body",
					})
				}
			}

			method.Returns = returnTypeOf(pair.o, enumNames)

			if pair.o.Security != nil {
				for _, req := range *pair.o.Security {
					keys := make([]string, 0, len(req))
					for name := range req {
						keys = append(keys, name)
					}
					sort.Strings(keys)
					if len(keys) > 0 {
						method.Security = append(method.Security, keys)
					}
				}
			}

			tag := "Service"
			if len(pair.o.Tags) > 0 && safeStr(pair.o.Tags[0]) != "" {
				tag = safeStr(pair.o.Tags[0])
			}
			idx, ok := ifaceIndex[tag]
			if !ok {
				svc.Interfaces = append(svc.Interfaces, Interface{Name: interfaceNameFromTag(tag)})
				idx = len(svc.Interfaces) - 1
				ifaceIndex[tag] = idx
			}
			svc.Interfaces[idx].Methods = append(svc.Interfaces[idx].Methods, method)
		}

		if len(hp.Operations) > 0 {
			svc.Paths = append(svc.Paths, hp)
		}
	}
}

// shapeOf maps an OpenAPI schema reference to the closed Shape variant.
func shapeOf(ref *openapi3.SchemaRef, enumNames map[string]struct{}) Shape {
	if ref == nil {
		return PrimitiveShape(PrimUntyped)
	}
	if ref.Ref != "" {
		name := refName(ref.Ref)
		if _, ok := enumNames[name]; ok {
			return EnumShape(name)
		}
		return ReferenceShape(name)
	}
	if ref.Value == nil {
		return PrimitiveShape(PrimUntyped)
	}
	s := ref.Value
	switch s.Type {
	case "array":
		return ArrayShape(shapeOf(s.Items, enumNames))
	case "string":
		switch s.Format {
		case "date":
			return PrimitiveShape(PrimDate)
		case "date-time":
			return PrimitiveShape(PrimDateTime)
		default:
			return PrimitiveShape(PrimString)
		}
	case "integer":
		if s.Format == "int64" {
			return PrimitiveShape(PrimLong)
		}
		return PrimitiveShape(PrimInteger)
	case "number":
		switch s.Format {
		case "float":
			return PrimitiveShape(PrimFloat)
		case "double":
			return PrimitiveShape(PrimDouble)
		default:
			return PrimitiveShape(PrimNumber)
		}
	case "boolean":
		return PrimitiveShape(PrimBoolean)
	default:
		return PrimitiveShape(PrimUntyped)
	}
}

// bodyShape picks the JSON media schema of a request body, if any.
func bodyShape(rb *openapi3.RequestBody, enumNames map[string]struct{}) (Shape, bool) {
	if rb.Content == nil {
		return Shape{}, false
	}
	mt := rb.Content.Get("application/json")
	if mt == nil || mt.Schema == nil {
		return Shape{}, false
	}
	return shapeOf(mt.Schema, enumNames), true
}

// returnTypeOf resolves the first 2xx JSON response to a referenced type
// name. Inline and primitive responses produce no typed return.
func returnTypeOf(op *openapi3.Operation, enumNames map[string]struct{}) string {
	if op.Responses == nil {
		return ""
	}
	codes := make([]string, 0, len(op.Responses))
	for code := range op.Responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if !strings.HasPrefix(code, "2") {
			continue
		}
		rref := op.Responses[code]
		if rref == nil || rref.Value == nil || rref.Value.Content == nil {
			continue
		}
		mt := rref.Value.Content.Get("application/json")
		if mt == nil || mt.Schema == nil {
			continue
		}
		shape := shapeOf(mt.Schema, enumNames)
		if shape.Kind == KindReference || shape.Kind == KindEnum {
			return shape.Ref
		}
	}
	return ""
}

func refName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func majorVersionOf(version string) int {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	digits := version
	if i := strings.IndexFunc(version, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
		digits = version[:i]
	}
	if n, err := strconv.Atoi(digits); err == nil && n > 0 {
		return n
	}
	return 1
}

func deriveServiceName(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return ""
	}
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ", "-", " ")
	parts := strings.Fields(repl.Replace(t))
	return strings.Join(parts, "-")
}

func deriveMethodName(verb, path string) string {
	segs := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	name := verb
	for _, seg := range segs {
		seg = strings.Trim(seg, "{}:")
		name += "_" + seg
	}
	return name
}

func interfaceNameFromTag(tag string) string {
	parts := strings.FieldsFunc(tag, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '.'
	})
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	b.WriteString("Service")
	return b.String()
}

func enumMemberName(value string) string {
	repl := strings.NewReplacer("-", "_", " ", "_", ".", "_")
	return strings.ToUpper(repl.Replace(value))
}

func safeStr(s string) string { return strings.TrimSpace(s) }
