package tsemitter

import (
	"fmt"

	"github.com/apiweld/sdkgen/internal/ir"
)

// Primitive cast rules. The wire→domain direction converts textual wire
// forms into typed values; domain→wire only serializes dates. Every helper
// is fail-open: when its input does not match the expected wire form it
// returns the input unchanged, so a failed cast is an explicit result, not a
// thrown exception.

// wireCasters maps a primitive kind to the emitted helper that converts its
// wire form to the domain form. Kinds absent from the map pass through.
var wireCasters = map[ir.Primitive]string{
	ir.PrimBoolean:  "toBoolean",
	ir.PrimDate:     "toDate",
	ir.PrimDateTime: "toDateTime",
	ir.PrimDouble:   "toNumber",
	ir.PrimFloat:    "toNumber",
	ir.PrimNumber:   "toNumber",
	ir.PrimInteger:  "toInteger",
	ir.PrimLong:     "toInteger",
}

// domainCasters is the narrower inverse table: only date and date-time need
// special serialization back to their canonical textual forms.
var domainCasters = map[ir.Primitive]string{
	ir.PrimDate:     "formatDate",
	ir.PrimDateTime: "formatDateTime",
}

// helperSources holds the TypeScript source of each shared helper.
var helperSources = map[string]string{
	"toBoolean": `export function toBoolean(value: any): any {
  if (typeof value === 'boolean') {
    return value;
  }
  if (value === 'true' || value === '1' || value === 1) {
    return true;
  }
  if (value === 'false' || value === '0' || value === 0) {
    return false;
  }
  return value;
}`,
	"toDate": `export function toDate(value: any): any {
  if (value instanceof Date) {
    return value;
  }
  if (typeof value !== 'string') {
    return value;
  }
  const parsed = new Date(value);
  return isNaN(parsed.getTime()) ? value : parsed;
}`,
	"toDateTime": `export function toDateTime(value: any): any {
  if (value instanceof Date) {
    return value;
  }
  if (typeof value !== 'string') {
    return value;
  }
  const parsed = new Date(value);
  return isNaN(parsed.getTime()) ? value : parsed;
}`,
	"toNumber": `export function toNumber(value: any): any {
  if (typeof value === 'number') {
    return value;
  }
  if (typeof value !== 'string' || value.trim() === '') {
    return value;
  }
  const parsed = Number(value);
  return isNaN(parsed) ? value : parsed;
}`,
	"toInteger": `export function toInteger(value: any): any {
  if (typeof value === 'number') {
    return value;
  }
  if (typeof value !== 'string') {
    return value;
  }
  const parsed = parseInt(value, 10);
  return isNaN(parsed) ? value : parsed;
}`,
	"formatDate": `export function formatDate(value: any): any {
  if (!(value instanceof Date) || isNaN(value.getTime())) {
    return value;
  }
  return value.toISOString().slice(0, 10);
}`,
	"formatDateTime": `export function formatDateTime(value: any): any {
  if (!(value instanceof Date) || isNaN(value.getTime())) {
    return value;
  }
  return value.toISOString();
}`,
	"compact": `export function compact(value: Record<string, any>): Record<string, any> {
  const out: Record<string, any> = {};
  for (const key of Object.keys(value)) {
    if (value[key] !== null && value[key] !== undefined) {
      out[key] = value[key];
    }
  }
  return out;
}`,
}

// helperOrder fixes the emission order of shared helpers.
var helperOrder = []string{
	"toBoolean",
	"toDate",
	"toDateTime",
	"toNumber",
	"toInteger",
	"formatDate",
	"formatDateTime",
	"compact",
}

type castDirection int

const (
	wireToDomain castDirection = iota
	domainToWire
)

// castExpr renders the TypeScript expression converting expr according to
// shape. used collects the shared helpers the expression depends on. depth
// names nested array item variables.
func castExpr(dir castDirection, shape ir.Shape, expr string, casters map[string]string, used *orderedSet, depth int) string {
	switch shape.Kind {
	case ir.KindPrimitive:
		if custom, ok := casters[string(shape.Primitive)]; ok && custom != "" {
			return fmt.Sprintf("%s(%s)", custom, expr)
		}
		table := wireCasters
		if dir == domainToWire {
			table = domainCasters
		}
		helper, ok := table[shape.Primitive]
		if !ok {
			return expr
		}
		used.add(helper)
		return fmt.Sprintf("%s(%s)", helper, expr)
	case ir.KindReference, ir.KindEnum:
		if custom, ok := casters[shape.Ref]; ok && custom != "" {
			return fmt.Sprintf("%s(%s)", custom, expr)
		}
		if dir == wireToDomain {
			return fmt.Sprintf("%s(%s)", wireToName(shape.Ref), expr)
		}
		return fmt.Sprintf("%s(%s)", toWireName(shape.Ref), expr)
	case ir.KindArray:
		item := "item"
		if depth > 0 {
			item = fmt.Sprintf("item%d", depth+1)
		}
		inner := castExpr(dir, *shape.Elem, item, casters, used, depth+1)
		if inner == item {
			return expr
		}
		return fmt.Sprintf("Array.isArray(%s) ? %s.map((%s: any) => %s) : %s", expr, expr, item, inner, expr)
	default:
		return expr
	}
}
