package catplist

import (
	"github.com/stretchr/testify/require"
	"howett.net/plist"
	"testing"
)

// keyedArchive builds the plist representation of an NSKeyedArchiver payload.
func keyedArchive(top map[string]any, objects ...any) map[string]any {
	return map[string]any{
		"$archiver": "NSKeyedArchiver",
		"$version":  100000,
		"$top":      top,
		"$objects":  objects,
	}
}

func binaryPlist(t *testing.T, value any) []byte {
	t.Helper()

	data, err := plist.Marshal(value, plist.BinaryFormat)
	require.NoError(t, err)
	return data
}

func decode(t *testing.T, value any) Value {
	t.Helper()

	p, err := FromPlist(value)
	require.NoError(t, err)
	return DecodePlist(p)
}

func mapping(pairs ...any) Value {
	m := NewMap()
	for idx := 0; idx < len(pairs); idx += 2 {
		m.Set(pairs[idx].(string), pairs[idx+1].(Value))
	}

	return Mapping(m)
}

// primitiveOf turns a normalized value back into a primitive, the way a plist writer
// and parser would.
func primitiveOf(v Value) Primitive {
	switch v.Kind() {
	case KindBool:
		return Primitive{kind: PrimitiveBool, b: v.b}
	case KindInt:
		return primitiveInt(v.i)
	case KindFloat:
		return Primitive{kind: PrimitiveFloat, f: v.f}
	case KindText, KindDecodeError:
		return Primitive{kind: PrimitiveText, s: v.s}
	case KindUUID:
		return Primitive{kind: PrimitiveText, s: v.id.String()}
	case KindDateTime:
		return Primitive{kind: PrimitiveDate, t: v.t}
	case KindBytes:
		return Primitive{kind: PrimitiveBytes, raw: v.raw}

	case KindSequence:
		elements := make([]Primitive, 0, len(v.seq))
		for _, element := range v.seq {
			elements = append(elements, primitiveOf(element))
		}

		return Primitive{kind: PrimitiveArray, arr: elements}

	case KindMapping:
		entries := map[string]Primitive{}
		for key, value := range v.m.All() {
			entries[key] = primitiveOf(value)
		}

		return Primitive{kind: PrimitiveMap, m: entries}

	default:
		return Primitive{}
	}
}
