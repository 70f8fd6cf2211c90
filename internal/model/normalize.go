package model

import "encoding/json"

// NormalizeResult reports what the defaulting policy had to repair while
// loading a raw document. Shape problems are recovered locally and never
// surfaced as errors.
type NormalizeResult struct {
	// Defaulted lists catalog fields that were absent or wrong-typed and
	// got replaced with their default, in catalog order.
	Defaulted []string
}

// FromMap builds a well-typed document from a freshly decoded JSON/YAML
// mapping. Every catalog field comes out well-typed: absent or wrong-typed
// fields are replaced with the catalog default. Unknown fields are kept
// verbatim so they survive the next serialize.
func FromMap(raw map[string]any) (*Document, NormalizeResult) {
	d := &Document{values: map[string]Value{}}
	var res NormalizeResult
	for _, spec := range Catalog {
		v, ok := coerce(spec.Kind, raw[spec.Name])
		if !ok {
			v = spec.Default()
			res.Defaulted = append(res.Defaulted, spec.Name)
		}
		d.values[spec.Name] = v
		d.order = append(d.order, spec.Name)
	}
	for name, rv := range raw {
		if _, known := Spec(name); known {
			continue
		}
		d.Set(name, RawValue(rv))
	}
	return d, res
}

// ToMap projects the document back into a plain mapping for serialization.
// Values are deep-copied; mutating the result does not touch the document.
func (d *Document) ToMap() map[string]any {
	out := make(map[string]any, len(d.values))
	for name, v := range d.values {
		switch v.Kind {
		case KindString:
			out[name] = v.Str
		case KindNumber:
			out[name] = v.Num
		case KindBool:
			out[name] = v.Bool
		case KindStringList:
			list := v.List
			if list == nil {
				list = []string{}
			}
			out[name] = append([]string(nil), list...)
		case KindRecordList:
			rules := v.Rules
			if rules == nil {
				rules = []QuotaRule{}
			}
			out[name] = append([]QuotaRule(nil), rules...)
		case KindIntMap:
			m := make(map[string]int, len(v.IntMap))
			for k, n := range v.IntMap {
				m[k] = n
			}
			out[name] = m
		case KindRaw:
			out[name] = v.Raw
		}
	}
	return out
}

func coerce(kind Kind, raw any) (Value, bool) {
	if raw == nil {
		return Value{}, false
	}
	switch kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return Value{}, false
		}
		return StringValue(s), true
	case KindNumber:
		n, ok := asInt(raw)
		if !ok {
			return Value{}, false
		}
		return NumberValue(n), true
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return Value{}, false
		}
		return BoolValue(b), true
	case KindStringList:
		items, ok := asSlice(raw)
		if !ok {
			return Value{}, false
		}
		// Non-string elements are dropped, not fatal: the field itself
		// still has the right shape.
		list := make([]string, 0, len(items))
		for _, it := range items {
			if s, ok := it.(string); ok {
				list = append(list, s)
			}
		}
		return ListValue(list), true
	case KindRecordList:
		items, ok := asSlice(raw)
		if !ok {
			return Value{}, false
		}
		rules := make([]QuotaRule, 0, len(items))
		for _, it := range items {
			m, ok := asStringMap(it)
			if !ok {
				continue
			}
			cat, ok := m["category"].(string)
			if !ok || cat == "" {
				continue
			}
			thr, ok := asInt(m["threshold"])
			if !ok {
				continue
			}
			rules = append(rules, QuotaRule{Category: cat, Threshold: thr})
		}
		return RulesValue(rules), true
	case KindIntMap:
		m, ok := asStringMap(raw)
		if !ok {
			return Value{}, false
		}
		out := make(map[string]int, len(m))
		for k, rv := range m {
			if n, ok := asInt(rv); ok {
				out[k] = n
			}
		}
		return IntMapValue(out), true
	}
	return Value{}, false
}

// asInt accepts the numeric shapes the JSON and YAML decoders produce.
func asInt(raw any) (int, bool) {
	switch n := raw.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func asSlice(raw any) ([]any, bool) {
	s, ok := raw.([]any)
	return s, ok
}

// asStringMap accepts both map[string]any (JSON) and map[any]any (legacy
// YAML decoders).
func asStringMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = v
		}
		return out, true
	default:
		return nil, false
	}
}
