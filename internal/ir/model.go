package ir

// Service IR definitions consumed by the binding resolver and emitters.
// Everything here is a read-only input for the duration of one generation
// pass; slices keep declaration order because generated output depends on it.

// Verb is a lowercase HTTP method name.
type Verb string

const (
	GET     Verb = "get"
	POST    Verb = "post"
	PUT     Verb = "put"
	DELETE  Verb = "delete"
	PATCH   Verb = "patch"
	HEAD    Verb = "head"
	OPTIONS Verb = "options"
)

// Location is the transport location of a bound parameter.
type Location string

const (
	InPath   Location = "path"
	InQuery  Location = "query"
	InHeader Location = "header"
	InBody   Location = "body"
)

// Service is the root of the IR: ordered interfaces, types and enums plus the
// HTTP binding metadata and security schemes referenced by methods.
type Service struct {
	Name         string
	MajorVersion int
	Interfaces   []Interface
	Types        []Type
	Enums        []Enum
	Schemes      []SecurityScheme
	Paths        []HTTPPath
	Params       []HTTPParameter
}

// Interface is a named group of methods.
type Interface struct {
	Name        string
	Description string
	Methods     []Method
}

// Method declares an ordered parameter list, an optional return type
// reference and the security alternatives that apply to it. Security is an
// OR of ANDs: each inner list names schemes that must all hold together.
type Method struct {
	Name        string
	Description string
	Parameters  []Parameter
	Returns     string
	Security    [][]string
}

// Parameter is a method input. Required derives from the source document's
// validation rules.
type Parameter struct {
	Name     string
	Shape    Shape
	Required bool
}

// Type is a domain shape definition.
type Type struct {
	Name        string
	Description string
	Properties  []Property
}

// Property is a single field of a Type.
type Property struct {
	Name  string
	Shape Shape
}

// Enum is a closed set of named members.
type Enum struct {
	Name    string
	Members []EnumMember
}

// EnumMember pairs a member name with its wire value.
type EnumMember struct {
	Name  string
	Value string
}

// SchemeKind tags the security scheme variant.
type SchemeKind string

const (
	SchemeAPIKey SchemeKind = "apiKey"
	SchemeHTTP   SchemeKind = "http"
	SchemeOAuth2 SchemeKind = "oauth2"
)

// SecurityScheme describes one credential source. Only the API-key variant
// carries a parameter name and location; other kinds are recorded but the
// client generator emits nothing for them.
type SecurityScheme struct {
	Name      string
	Kind      SchemeKind
	ParamName string
	In        Location
}

// HTTPPath binds a path template to the methods served under it.
type HTTPPath struct {
	Template   string
	Operations []OperationRef
}

// OperationRef ties one HTTP verb on a path template to a method name.
type OperationRef struct {
	Verb   Verb
	Method string
}

// HTTPParameter records where a (method, parameter) pair travels on the wire
// and under which name.
type HTTPParameter struct {
	Method    string
	Parameter string
	In        Location
	WireName  string
}

// FindType returns the declared type with the given name, or nil.
func (s *Service) FindType(name string) *Type {
	for i := range s.Types {
		if s.Types[i].Name == name {
			return &s.Types[i]
		}
	}
	return nil
}

// FindEnum returns the declared enum with the given name, or nil.
func (s *Service) FindEnum(name string) *Enum {
	for i := range s.Enums {
		if s.Enums[i].Name == name {
			return &s.Enums[i]
		}
	}
	return nil
}

// FindScheme returns the security scheme with the given name, or nil.
func (s *Service) FindScheme(name string) *SecurityScheme {
	for i := range s.Schemes {
		if s.Schemes[i].Name == name {
			return &s.Schemes[i]
		}
	}
	return nil
}
