// Package datum implements the opaque tagged value type that terms carry
// as literals. It is a minimal stand-in for the host's real datum
// library (spec'd only by its tag vocabulary and conversion entry
// points); the query ingestion core depends on it only through the
// narrow surface described below.
package datum

import (
	"fmt"
	"time"

	"github.com/kartikbazzad/queryhost/internal/rawdoc"
)

// Tag identifies the variant a Value holds.
type Tag int

const (
	TagNull Tag = iota
	TagBool
	TagNumber
	TagString
	TagArray
	TagObject
	TagTime
)

// Member is one key/value pair of an object-typed Value, in insertion order.
type Member struct {
	Key   string
	Value Value
}

// Value is an opaque tagged value: null, bool, number, string, array,
// object, or time.
type Value struct {
	tag Tag
	b   bool
	n   float64
	s   string
	arr []Value
	obj []Member
	t   time.Time
}

// Tag reports which variant v holds.
func (v Value) Tag() Tag { return v.tag }

// AsBool returns v's boolean payload. Valid only when Tag() == TagBool.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns v's numeric payload. Valid only when Tag() == TagNumber.
func (v Value) AsNumber() float64 { return v.n }

// AsString returns v's string payload. Valid only when Tag() == TagString.
func (v Value) AsString() string { return v.s }

// AsArray returns v's array payload. Valid only when Tag() == TagArray.
func (v Value) AsArray() []Value { return v.arr }

// AsObject returns v's object payload. Valid only when Tag() == TagObject.
func (v Value) AsObject() []Member { return v.obj }

// AsTime returns v's time payload. Valid only when Tag() == TagTime.
func (v Value) AsTime() time.Time { return v.t }

func Null() Value                 { return Value{tag: TagNull} }
func Bool(b bool) Value           { return Value{tag: TagBool, b: b} }
func Number(n float64) Value      { return Value{tag: TagNumber, n: n} }
func String(s string) Value       { return Value{tag: TagString, s: s} }
func Array(items []Value) Value   { return Value{tag: TagArray, arr: items} }
func Object(members []Member) Value {
	return Value{tag: TagObject, obj: members}
}
func Time(t time.Time) Value { return Value{tag: TagTime, t: t} }

// Limits bounds a datum conversion. The core always converts under
// "unlimited size" per spec (UnlimitedLimits). When Unbounded is false,
// FromRawDoc rejects arrays and objects larger than a positive
// MaxArraySize/MaxObjectSize; FromGo does not apply the limits.
type Limits struct {
	Unbounded     bool
	MaxArraySize  int
	MaxObjectSize int
}

// UnlimitedLimits returns the limits used for all term-level datum
// conversions in this core.
func UnlimitedLimits() Limits { return Limits{Unbounded: true} }

// SchemaVersion selects the wire-format version a datum was encoded
// under. Term-level datum conversion always uses SchemaLatest.
type SchemaVersion int

const SchemaLatest SchemaVersion = 0

// FromRawDoc converts a decoded JSON-like document value into a Value,
// under the given limits and schema version. This is the "unlimited
// size, latest schema" conversion path the parser always uses for
// DATUM terms and primitive-form terms.
func FromRawDoc(v rawdoc.Value, limits Limits, schema SchemaVersion) (Value, error) {
	switch v.Kind {
	case rawdoc.KindNull:
		return Null(), nil
	case rawdoc.KindBool:
		return Bool(v.Bool), nil
	case rawdoc.KindNumber:
		return Number(v.Num), nil
	case rawdoc.KindString:
		return String(v.Str), nil
	case rawdoc.KindArray:
		if !limits.Unbounded && limits.MaxArraySize > 0 && len(v.Arr) > limits.MaxArraySize {
			return Value{}, fmt.Errorf("datum: array exceeds limit of %d elements", limits.MaxArraySize)
		}
		items := make([]Value, len(v.Arr))
		for i, elem := range v.Arr {
			item, err := FromRawDoc(elem, limits, schema)
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return Array(items), nil
	case rawdoc.KindObject:
		if !limits.Unbounded && limits.MaxObjectSize > 0 && len(v.Obj) > limits.MaxObjectSize {
			return Value{}, fmt.Errorf("datum: object exceeds limit of %d members", limits.MaxObjectSize)
		}
		members := make([]Member, len(v.Obj))
		for i, m := range v.Obj {
			val, err := FromRawDoc(m.Value, limits, schema)
			if err != nil {
				return Value{}, err
			}
			members[i] = Member{Key: m.Key, Value: val}
		}
		return Object(members), nil
	default:
		return Value{}, fmt.Errorf("datum: unsupported raw kind %v", v.Kind)
	}
}

// FromGo converts an arbitrary decoded Go value (as produced by, e.g.,
// msgpack.Unmarshal into interface{}) into a Value. Used by the legacy
// binary sub-protocol, which hands the embedded datum payload over as
// a generic decoded value rather than a rawdoc.Value.
func FromGo(v interface{}, limits Limits, schema SchemaVersion) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case int8:
		return Number(float64(x)), nil
	case int16:
		return Number(float64(x)), nil
	case int32:
		return Number(float64(x)), nil
	case uint8:
		return Number(float64(x)), nil
	case uint16:
		return Number(float64(x)), nil
	case uint32:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case string:
		return String(x), nil
	case []interface{}:
		items := make([]Value, len(x))
		for i, elem := range x {
			item, err := FromGo(elem, limits, schema)
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return Array(items), nil
	case map[string]interface{}:
		members := make([]Member, 0, len(x))
		for k, val := range x {
			mv, err := FromGo(val, limits, schema)
			if err != nil {
				return Value{}, err
			}
			members = append(members, Member{Key: k, Value: mv})
		}
		return Object(members), nil
	default:
		return Value{}, fmt.Errorf("datum: unsupported go value %T", v)
	}
}

// Now returns the current instant as a time-tagged Value.
func Now() Value { return Time(time.Now()) }

// Equal reports whether a and b hold the same tag and payload, recursively.
// Used by round-trip tests; time values compare with time.Time.Equal.
func Equal(a, b Value) bool {
	if a.tag != b.tag {
		return false
	}
	switch a.tag {
	case TagNull:
		return true
	case TagBool:
		return a.b == b.b
	case TagNumber:
		return a.n == b.n
	case TagString:
		return a.s == b.s
	case TagTime:
		return a.t.Equal(b.t)
	case TagArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case TagObject:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for i := range a.obj {
			if a.obj[i].Key != b.obj[i].Key || !Equal(a.obj[i].Value, b.obj[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
