package catplist

import (
	"fmt"
	"howett.net/plist"
	"math"
	"slices"
	"strconv"
	"time"
)

// PrimitiveKind discriminates the variants of a Primitive.
type PrimitiveKind uint8

const (
	PrimitiveNull PrimitiveKind = iota
	PrimitiveBool
	PrimitiveInt
	PrimitiveFloat
	PrimitiveText
	PrimitiveBytes
	PrimitiveDate
	PrimitiveArray
	PrimitiveMap
	PrimitiveReference
)

var primitiveKindNames = [...]string{
	PrimitiveNull:      "null",
	PrimitiveBool:      "bool",
	PrimitiveInt:       "int",
	PrimitiveFloat:     "float",
	PrimitiveText:      "text",
	PrimitiveBytes:     "bytes",
	PrimitiveDate:      "date",
	PrimitiveArray:     "array",
	PrimitiveMap:       "map",
	PrimitiveReference: "reference",
}

func (k PrimitiveKind) String() string {
	if int(k) < len(primitiveKindNames) {
		return primitiveKindNames[k]
	}

	return "PrimitiveKind(" + strconv.Itoa(int(k)) + ")"
}

// Primitive is a property list value as the parser produced it. A reference carries an
// index into the object table of the keyed archive it belongs to.
type Primitive struct {
	kind PrimitiveKind
	b    bool
	i    int64
	f    float64
	s    string
	raw  []byte
	t    time.Time
	arr  []Primitive
	m    map[string]Primitive
}

func (p Primitive) Kind() PrimitiveKind {
	return p.kind
}

// IsEmpty reports whether p is null or an empty text, bytes, array or map.
func (p Primitive) IsEmpty() bool {
	switch p.kind {
	case PrimitiveNull:
		return true
	case PrimitiveText:
		return p.s == ""
	case PrimitiveBytes:
		return len(p.raw) == 0
	case PrimitiveArray:
		return len(p.arr) == 0
	case PrimitiveMap:
		return len(p.m) == 0
	default:
		return false
	}
}

// sortedKeys returns the keys of a map primitive in lexical order. The parser does not
// retain dictionary order, sorting keeps output stable.
func (p Primitive) sortedKeys() []string {
	keys := make([]string, 0, len(p.m))
	for key := range p.m {
		keys = append(keys, key)
	}

	slices.Sort(keys)
	return keys
}

// Raw maps the primitive one to one onto a Value without unwrapping anything. References
// become {"CF$UID": index}.
func (p Primitive) Raw() Value {
	switch p.kind {
	case PrimitiveBool:
		return Bool(p.b)
	case PrimitiveInt:
		return Int(p.i)
	case PrimitiveFloat:
		return Float(p.f)
	case PrimitiveText:
		return Text(p.s)
	case PrimitiveBytes:
		return Bytes(p.raw)
	case PrimitiveDate:
		return DateTime(p.t)

	case PrimitiveReference:
		m := NewMap()
		m.Set("CF$UID", Int(p.i))
		return Mapping(m)

	case PrimitiveArray:
		values := make([]Value, 0, len(p.arr))
		for _, element := range p.arr {
			values = append(values, element.Raw())
		}

		return Sequence(values...)

	case PrimitiveMap:
		m := NewMap()
		for _, key := range p.sortedKeys() {
			m.Set(key, p.m[key].Raw())
		}

		return Mapping(m)

	default:
		return Null()
	}
}

// FromPlist converts a value as decoded by howett.net/plist into a Primitive. Accepted
// are nil, bool, all integer and float types, string, []byte, time.Time, plist.UID,
// []any, map[string]any and Primitive itself. Unsigned integers beyond the int64 range
// become floats.
func FromPlist(value any) (Primitive, error) {
	switch value := value.(type) {
	case nil:
		return Primitive{}, nil
	case Primitive:
		return value, nil
	case bool:
		return Primitive{kind: PrimitiveBool, b: value}, nil
	case int:
		return primitiveInt(int64(value)), nil
	case int8:
		return primitiveInt(int64(value)), nil
	case int16:
		return primitiveInt(int64(value)), nil
	case int32:
		return primitiveInt(int64(value)), nil
	case int64:
		return primitiveInt(value), nil
	case uint:
		return primitiveUint(uint64(value)), nil
	case uint8:
		return primitiveUint(uint64(value)), nil
	case uint16:
		return primitiveUint(uint64(value)), nil
	case uint32:
		return primitiveUint(uint64(value)), nil
	case uint64:
		return primitiveUint(value), nil
	case float32:
		return Primitive{kind: PrimitiveFloat, f: float64(value)}, nil
	case float64:
		return Primitive{kind: PrimitiveFloat, f: value}, nil
	case string:
		return Primitive{kind: PrimitiveText, s: value}, nil
	case []byte:
		return Primitive{kind: PrimitiveBytes, raw: value}, nil
	case time.Time:
		return Primitive{kind: PrimitiveDate, t: value}, nil

	case plist.UID:
		if uint64(value) > math.MaxInt64 {
			return Primitive{}, fmt.Errorf("reference %d out of range", uint64(value))
		}

		return Primitive{kind: PrimitiveReference, i: int64(value)}, nil

	case []any:
		elements := make([]Primitive, 0, len(value))
		for idx, element := range value {
			p, err := FromPlist(element)
			if err != nil {
				return Primitive{}, fmt.Errorf("element idx=%d: %w", idx, err)
			}

			elements = append(elements, p)
		}

		return Primitive{kind: PrimitiveArray, arr: elements}, nil

	case map[string]any:
		entries := make(map[string]Primitive, len(value))
		for key, element := range value {
			p, err := FromPlist(element)
			if err != nil {
				return Primitive{}, fmt.Errorf("key %q: %w", key, err)
			}

			entries[key] = p
		}

		return Primitive{kind: PrimitiveMap, m: entries}, nil

	default:
		return Primitive{}, fmt.Errorf("unsupported plist value of type %T", value)
	}
}

// MustFromPlist is like FromPlist but panics on unsupported input.
func MustFromPlist(value any) Primitive {
	p, err := FromPlist(value)
	if err != nil {
		panic(err)
	}

	return p
}

func primitiveInt(i int64) Primitive {
	return Primitive{kind: PrimitiveInt, i: i}
}

func primitiveUint(u uint64) Primitive {
	if u > math.MaxInt64 {
		return Primitive{kind: PrimitiveFloat, f: float64(u)}
	}

	return primitiveInt(int64(u))
}
