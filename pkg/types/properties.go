package types

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// PropertyKind identifies which variant a PropertyValue holds.
type PropertyKind int

const (
	NullProperty PropertyKind = iota
	StringProperty
	NumberProperty
	BoolProperty
	ListProperty
	MapProperty
)

func (k PropertyKind) String() string {
	switch k {
	case StringProperty:
		return "string"
	case NumberProperty:
		return "number"
	case BoolProperty:
		return "bool"
	case ListProperty:
		return "list"
	case MapProperty:
		return "map"
	default:
		return "null"
	}
}

// PropertyValue is a closed union of the values a node or relation property may hold.
// The zero value is null.
type PropertyValue struct {
	kind PropertyKind
	str  string
	num  float64
	b    bool
	list []PropertyValue
	m    map[string]PropertyValue
}

// String returns a string property value.
func String(s string) PropertyValue { return PropertyValue{kind: StringProperty, str: s} }

// Number returns a numeric property value.
func Number(n float64) PropertyValue { return PropertyValue{kind: NumberProperty, num: n} }

// Bool returns a boolean property value.
func Bool(b bool) PropertyValue { return PropertyValue{kind: BoolProperty, b: b} }

// List returns a list property value.
func List(values ...PropertyValue) PropertyValue {
	return PropertyValue{kind: ListProperty, list: append([]PropertyValue(nil), values...)}
}

// Map returns a nested map property value.
func Map(m map[string]PropertyValue) PropertyValue {
	cp := make(map[string]PropertyValue, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return PropertyValue{kind: MapProperty, m: cp}
}

// Null returns the null property value.
func Null() PropertyValue { return PropertyValue{} }

// Kind reports the variant held by v.
func (v PropertyValue) Kind() PropertyKind { return v.kind }

// IsNull reports whether v holds no value.
func (v PropertyValue) IsNull() bool { return v.kind == NullProperty }

// AsString returns the string held by v.
func (v PropertyValue) AsString() (string, bool) { return v.str, v.kind == StringProperty }

// AsNumber returns the number held by v.
func (v PropertyValue) AsNumber() (float64, bool) { return v.num, v.kind == NumberProperty }

// AsBool returns the bool held by v.
func (v PropertyValue) AsBool() (bool, bool) { return v.b, v.kind == BoolProperty }

// AsList returns the list held by v.
func (v PropertyValue) AsList() ([]PropertyValue, bool) { return v.list, v.kind == ListProperty }

// AsMap returns the nested map held by v.
func (v PropertyValue) AsMap() (map[string]PropertyValue, bool) { return v.m, v.kind == MapProperty }

// Equal reports deep equality between two property values.
func (v PropertyValue) Equal(other PropertyValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case NullProperty:
		return true
	case StringProperty:
		return v.str == other.str
	case NumberProperty:
		return v.num == other.num
	case BoolProperty:
		return v.b == other.b
	case ListProperty:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case MapProperty:
		return Properties(v.m).Equal(Properties(other.m))
	}
	return false
}

// Any converts v into plain Go values: string, float64, bool, []any, map[string]any or nil.
func (v PropertyValue) Any() any {
	switch v.kind {
	case StringProperty:
		return v.str
	case NumberProperty:
		return v.num
	case BoolProperty:
		return v.b
	case ListProperty:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Any()
		}
		return out
	case MapProperty:
		return Properties(v.m).ToMap()
	default:
		return nil
	}
}

func (v PropertyValue) clone() PropertyValue {
	switch v.kind {
	case ListProperty:
		out := make([]PropertyValue, len(v.list))
		for i, item := range v.list {
			out[i] = item.clone()
		}
		return PropertyValue{kind: ListProperty, list: out}
	case MapProperty:
		return PropertyValue{kind: MapProperty, m: Properties(v.m).Clone()}
	default:
		return v
	}
}

// FromAny converts a decoded JSON or driver value into a PropertyValue.
// Integers of any width become numbers.
func FromAny(raw any) (PropertyValue, error) {
	switch val := raw.(type) {
	case nil:
		return Null(), nil
	case PropertyValue:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case float64:
		return Number(val), nil
	case float32:
		return Number(float64(val)), nil
	case int:
		return Number(float64(val)), nil
	case int8:
		return Number(float64(val)), nil
	case int16:
		return Number(float64(val)), nil
	case int32:
		return Number(float64(val)), nil
	case int64:
		return Number(float64(val)), nil
	case uint:
		return Number(float64(val)), nil
	case uint8:
		return Number(float64(val)), nil
	case uint16:
		return Number(float64(val)), nil
	case uint32:
		return Number(float64(val)), nil
	case uint64:
		return Number(float64(val)), nil
	case json.Number:
		n, err := val.Float64()
		if err != nil {
			return Null(), fmt.Errorf("%w: %v", ErrUnsupportedProperty, err)
		}
		return Number(n), nil
	case []string:
		out := make([]PropertyValue, len(val))
		for i, s := range val {
			out[i] = String(s)
		}
		return PropertyValue{kind: ListProperty, list: out}, nil
	case []any:
		out := make([]PropertyValue, len(val))
		for i, item := range val {
			pv, err := FromAny(item)
			if err != nil {
				return Null(), err
			}
			out[i] = pv
		}
		return PropertyValue{kind: ListProperty, list: out}, nil
	case Properties:
		return PropertyValue{kind: MapProperty, m: val.Clone()}, nil
	case map[string]any:
		props, err := PropertiesFromMap(val)
		if err != nil {
			return Null(), err
		}
		return PropertyValue{kind: MapProperty, m: props}, nil
	default:
		return Null(), fmt.Errorf("%w: %T", ErrUnsupportedProperty, raw)
	}
}

// MarshalJSON encodes v as its natural JSON form.
func (v PropertyValue) MarshalJSON() ([]byte, error) {
	if v.kind == NumberProperty && (math.IsNaN(v.num) || math.IsInf(v.num, 0)) {
		return nil, fmt.Errorf("%w: non-finite number", ErrUnsupportedProperty)
	}
	return json.Marshal(v.Any())
}

// UnmarshalJSON decodes any JSON value into v.
func (v *PropertyValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	pv, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = pv
	return nil
}

// Properties maps property names to values.
type Properties map[string]PropertyValue

// PropertiesFromMap converts a plain map into Properties.
func PropertiesFromMap(raw map[string]any) (Properties, error) {
	props := make(Properties, len(raw))
	for k, item := range raw {
		pv, err := FromAny(item)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		props[k] = pv
	}
	return props, nil
}

// ToMap converts p into a plain map suitable for JSON or driver parameters.
func (p Properties) ToMap() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v.Any()
	}
	return out
}

// Clone returns a deep copy of p.
func (p Properties) Clone() Properties {
	if p == nil {
		return Properties{}
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v.clone()
	}
	return out
}

// Equal reports whether p and other hold the same keys with equal values.
func (p Properties) Equal(other Properties) bool {
	if len(p) != len(other) {
		return false
	}
	for k, v := range p {
		ov, ok := other[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Matches reports whether every entry of filter is present in p with an equal value.
func (p Properties) Matches(filter Properties) bool {
	for k, want := range filter {
		got, ok := p[k]
		if !ok || !got.Equal(want) {
			return false
		}
	}
	return true
}

// Keys returns the property names in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetString returns the string stored under key, if any.
func (p Properties) GetString(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	return v.AsString()
}

// GetNumber returns the number stored under key, if any.
func (p Properties) GetNumber(key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	return v.AsNumber()
}
