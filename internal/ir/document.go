package ir

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Native sdkgen service document. The document is the serialized form of the
// IR; parsing resolves the textual type names and structural flags into the
// closed Shape variant and derives required/optional from validation rules.

type document struct {
	Service    serviceDoc     `yaml:"service"`
	Interfaces []interfaceDoc `yaml:"interfaces"`
	Types      []typeDoc      `yaml:"types"`
	Enums      []enumDoc      `yaml:"enums"`
	Security   []schemeDoc    `yaml:"security"`
	HTTP       httpDoc        `yaml:"http"`
}

type serviceDoc struct {
	Name    string `yaml:"name"`
	Version int    `yaml:"version"`
}

type interfaceDoc struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Methods     []methodDoc `yaml:"methods"`
}

type methodDoc struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Parameters  []paramDoc `yaml:"parameters"`
	Returns     string     `yaml:"returns"`
	// Security is an OR of ANDs of scheme names.
	Security [][]string `yaml:"security"`
}

type paramDoc struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	IsArray bool   `yaml:"isArray"`
	// Validation carries rule names; "required" is the only rule the
	// generator interprets.
	Validation []string `yaml:"validation"`
}

type typeDoc struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Properties  []propDoc `yaml:"properties"`
}

type propDoc struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	IsArray bool   `yaml:"isArray"`
}

type enumDoc struct {
	Name    string      `yaml:"name"`
	Members []memberDoc `yaml:"members"`
}

type memberDoc struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type schemeDoc struct {
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"`
	Parameter string `yaml:"parameter"`
	In        string `yaml:"in"`
}

type httpDoc struct {
	Paths      []pathDoc      `yaml:"paths"`
	Parameters []httpParamDoc `yaml:"parameters"`
}

type pathDoc struct {
	Template   string  `yaml:"template"`
	Operations []opDoc `yaml:"operations"`
}

type opDoc struct {
	Verb   string `yaml:"verb"`
	Method string `yaml:"method"`
}

type httpParamDoc struct {
	Method    string `yaml:"method"`
	Parameter string `yaml:"parameter"`
	In        string `yaml:"in"`
	Wire      string `yaml:"wire"`
}

func parseNative(raw []byte) (*Service, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Service.Name) == "" {
		return nil, fmt.Errorf("service.name is required")
	}

	svc := &Service{
		Name:         strings.TrimSpace(doc.Service.Name),
		MajorVersion: doc.Service.Version,
	}
	if svc.MajorVersion <= 0 {
		svc.MajorVersion = 1
	}

	// Enum names must be known before shapes resolve, so enums go first.
	for _, e := range doc.Enums {
		en := Enum{Name: strings.TrimSpace(e.Name)}
		for _, m := range e.Members {
			en.Members = append(en.Members, EnumMember{Name: m.Name, Value: m.Value})
		}
		svc.Enums = append(svc.Enums, en)
	}
	enumNames := make(map[string]struct{}, len(svc.Enums))
	for _, e := range svc.Enums {
		enumNames[e.Name] = struct{}{}
	}

	for _, t := range doc.Types {
		ty := Type{Name: strings.TrimSpace(t.Name), Description: strings.TrimSpace(t.Description)}
		for _, p := range t.Properties {
			ty.Properties = append(ty.Properties, Property{
				Name:  p.Name,
				Shape: resolveShape(p.Type, p.IsArray, enumNames),
			})
		}
		svc.Types = append(svc.Types, ty)
	}

	for _, i := range doc.Interfaces {
		iface := Interface{Name: strings.TrimSpace(i.Name), Description: strings.TrimSpace(i.Description)}
		for _, m := range i.Methods {
			method := Method{
				Name:        strings.TrimSpace(m.Name),
				Description: strings.TrimSpace(m.Description),
				Returns:     strings.TrimSpace(m.Returns),
			}
			for _, p := range m.Parameters {
				method.Parameters = append(method.Parameters, Parameter{
					Name:     p.Name,
					Shape:    resolveShape(p.Type, p.IsArray, enumNames),
					Required: hasRule(p.Validation, "required"),
				})
			}
			for _, alt := range m.Security {
				method.Security = append(method.Security, append([]string(nil), alt...))
			}
			iface.Methods = append(iface.Methods, method)
		}
		svc.Interfaces = append(svc.Interfaces, iface)
	}

	for _, s := range doc.Security {
		svc.Schemes = append(svc.Schemes, SecurityScheme{
			Name:      strings.TrimSpace(s.Name),
			Kind:      SchemeKind(strings.TrimSpace(s.Kind)),
			ParamName: strings.TrimSpace(s.Parameter),
			In:        Location(strings.TrimSpace(s.In)),
		})
	}

	for _, p := range doc.HTTP.Paths {
		hp := HTTPPath{Template: strings.TrimSpace(p.Template)}
		for _, op := range p.Operations {
			hp.Operations = append(hp.Operations, OperationRef{
				Verb:   Verb(strings.ToLower(strings.TrimSpace(op.Verb))),
				Method: strings.TrimSpace(op.Method),
			})
		}
		svc.Paths = append(svc.Paths, hp)
	}
	for _, p := range doc.HTTP.Parameters {
		wire := strings.TrimSpace(p.Wire)
		if wire == "" {
			wire = strings.TrimSpace(p.Parameter)
		}
		svc.Params = append(svc.Params, HTTPParameter{
			Method:    strings.TrimSpace(p.Method),
			Parameter: strings.TrimSpace(p.Parameter),
			In:        Location(strings.TrimSpace(p.In)),
			WireName:  wire,
		})
	}

	return svc, nil
}

// resolveShape folds the document's textual type plus isArray flag into the
// closed Shape variant. Unknown names that match a declared enum become enum
// shapes; anything else is a type reference.
func resolveShape(typeName string, isArray bool, enums map[string]struct{}) Shape {
	name := strings.TrimSpace(typeName)
	var base Shape
	if p, ok := LookupPrimitive(strings.ToLower(name)); ok {
		base = PrimitiveShape(p)
	} else if _, ok := enums[name]; ok {
		base = EnumShape(name)
	} else {
		base = ReferenceShape(name)
	}
	if isArray {
		return ArrayShape(base)
	}
	return base
}

func hasRule(rules []string, want string) bool {
	for _, r := range rules {
		if strings.EqualFold(strings.TrimSpace(r), want) {
			return true
		}
	}
	return false
}
