// Package binding resolves HTTP binding metadata for one generation pass.
//
// A Resolver is built once from a Service and threaded into every generator
// that needs it; there is no global cache. Absence of a binding is a normal
// outcome: callers exclude the unbound element rather than failing.
package binding

import (
	"strings"

	"github.com/apiweld/sdkgen/internal/ir"
)

// Operation is the (verb, path template) pair bound to a method.
type Operation struct {
	Verb ir.Verb
	Path string
}

// Param is the (transport location, wire name) pair bound to a parameter.
type Param struct {
	Location ir.Location
	WireName string
}

// Resolver indexes a Service's binding metadata. The indices are built in a
// single scan each and never mutated afterwards.
type Resolver struct {
	ops    map[string]Operation
	params map[paramKey]Param
}

type paramKey struct {
	method string
	param  string
}

// NewResolver scans the service's HTTP paths and declared parameters once.
// When a method or parameter is bound more than once, the first declaration
// wins.
func NewResolver(svc *ir.Service) *Resolver {
	r := &Resolver{
		ops:    make(map[string]Operation),
		params: make(map[paramKey]Param),
	}
	if svc == nil {
		return r
	}
	for _, p := range svc.Paths {
		for _, op := range p.Operations {
			key := normalize(op.Method)
			if key == "" {
				continue
			}
			if _, exists := r.ops[key]; exists {
				continue
			}
			r.ops[key] = Operation{Verb: op.Verb, Path: p.Template}
		}
	}
	for _, hp := range svc.Params {
		key := paramKey{method: normalize(hp.Method), param: normalize(hp.Parameter)}
		if key.method == "" || key.param == "" {
			continue
		}
		if _, exists := r.params[key]; exists {
			continue
		}
		r.params[key] = Param{Location: hp.In, WireName: hp.WireName}
	}
	return r
}

// Operation returns the operation binding for a method. The second result is
// false when the method has no binding, which excludes it from client
// generation.
func (r *Resolver) Operation(method string) (Operation, bool) {
	op, ok := r.ops[normalize(method)]
	return op, ok
}

// Parameter returns the transport binding for a (method, parameter) pair.
// Unbound parameters are excluded from request assembly.
func (r *Resolver) Parameter(method, param string) (Param, bool) {
	p, ok := r.params[paramKey{method: normalize(method), param: normalize(param)}]
	return p, ok
}

// PathParameter finds the method parameter whose binding is a path location
// with the given wire name. It returns the parameter's declared name.
func (r *Resolver) PathParameter(m *ir.Method, wireName string) (string, bool) {
	for _, p := range m.Parameters {
		b, ok := r.Parameter(m.Name, p.Name)
		if ok && b.Location == ir.InPath && b.WireName == wireName {
			return p.Name, true
		}
	}
	return "", false
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
