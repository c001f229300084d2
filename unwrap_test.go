package catplist

import (
	"bytes"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"howett.net/plist"
	"math"
	"testing"
	"time"
)

func TestDecodeScalars(t *testing.T) {
	require.Equal(t, Bool(true), decode(t, true))
	require.Equal(t, Int(42), decode(t, 42))
	require.Equal(t, Int(-7), decode(t, int64(-7)))
	require.Equal(t, Float(1.5), decode(t, 1.5))
	require.Equal(t, Text("hello"), decode(t, "hello"))

	ts := time.Date(2020, time.March, 4, 5, 6, 7, 0, time.UTC)
	require.Equal(t, DateTime(ts), decode(t, ts))
}

func TestDecodeEmpty(t *testing.T) {
	for _, empty := range []any{nil, "", []byte{}, []any{}, map[string]any{}} {
		value := decode(t, empty)
		require.Equal(t, KindMapping, value.Kind())
		require.Equal(t, 0, value.Map().Len())
	}
}

func TestDecodeNullBecomesEmptyText(t *testing.T) {
	value := decode(t, []any{nil, 1})
	require.Equal(t, Sequence(Text(""), Int(1)), value)
}

func TestDecodeNSString(t *testing.T) {
	require.Equal(t, Text("hello"), decode(t, map[string]any{"NS.string": "hello"}))
	require.Equal(t, Text("hello"), decode(t, map[string]any{"NSString": "hello"}))
}

func TestDecodeNSStringPromotesUUID(t *testing.T) {
	value := decode(t, map[string]any{"NS.string": "5D2A1C3B-0E4F-4A6B-8C7D-9E0F1A2B3C4D"})

	id, ok := value.AsUUID()
	require.True(t, ok)
	require.Equal(t, "5d2a1c3b-0e4f-4a6b-8c7d-9e0f1a2b3c4d", id.String())
}

func TestDecodeNSTime(t *testing.T) {
	value := decode(t, map[string]any{"NS.time": 694224000})
	require.Equal(t, DateTime(time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)), value)

	value = decode(t, map[string]any{"NS.time": 0.25})
	require.Equal(t, DateTime(time.Date(2001, time.January, 1, 0, 0, 0, 250_000_000, time.UTC)), value)

	value = decode(t, map[string]any{"NS.time": -86400})
	require.Equal(t, DateTime(time.Date(2000, time.December, 31, 0, 0, 0, 0, time.UTC)), value)
}

func TestDecodeNSTimeInvalid(t *testing.T) {
	value := decode(t, map[string]any{"NS.time": "yesterday"})
	require.Equal(t, KindDecodeError, value.Kind())

	value = decode(t, map[string]any{"NS.time": math.Inf(1)})
	require.Equal(t, KindDecodeError, value.Kind())

	for _, offset := range []float64{1e300, -1e300, math.MaxInt64} {
		value = decode(t, map[string]any{"NS.time": offset})
		require.Equal(t, KindDecodeError, value.Kind(), "offset %v", offset)
		require.Contains(t, value.Message(), "out of range offset")
	}

	// the largest offsets still accepted
	value = decode(t, map[string]any{"NS.time": int64(1) << 61})
	require.Equal(t, KindDateTime, value.Kind())
}

func TestDecodeErrorIsLocal(t *testing.T) {
	value := decode(t, map[string]any{
		"bad":  map[string]any{"NS.time": "never"},
		"good": 1,
	})

	require.Equal(t, KindMapping, value.Kind())

	bad, _ := value.Map().Get("bad")
	require.Equal(t, KindDecodeError, bad.Kind())
	require.Contains(t, bad.Message(), "NS.time")

	good, _ := value.Map().Get("good")
	require.Equal(t, Int(1), good)
}

func TestDecodeShapePrecedence(t *testing.T) {
	// NS.string is checked before NS.keys
	value := decode(t, map[string]any{
		"NS.string":  "text",
		"NS.keys":    []any{"a"},
		"NS.objects": []any{"b"},
	})

	require.Equal(t, Text("text"), value)
}

func TestDecodeGenericMapSortsKeys(t *testing.T) {
	value := decode(t, map[string]any{"b": 2, "a": 1, "c": 3})
	require.Equal(t, []string{"a", "b", "c"}, value.Map().Keys())
}

func TestDecodeDictionaryWithoutArchive(t *testing.T) {
	value := decode(t, map[string]any{
		"NS.keys":    []any{"one", "two", "three"},
		"NS.objects": []any{1, 2},
	})

	require.Equal(t, mapping("one", Int(1), "two", Int(2)), value)
}

func TestDecodeDictionaryRejectsNonArray(t *testing.T) {
	value := decode(t, map[string]any{
		"NS.keys":    "one",
		"NS.objects": []any{1},
	})

	require.Equal(t, KindDecodeError, value.Kind())
}

func TestDecodeReferenceWithoutTable(t *testing.T) {
	value := decode(t, []any{plist.UID(3)})
	require.Equal(t, Sequence(Int(3)), value)
}

func TestDecodeArchiveRootCollapse(t *testing.T) {
	archive := keyedArchive(
		map[string]any{"root": plist.UID(1)},
		"$null",
		map[string]any{
			"NS.keys":    []any{plist.UID(2)},
			"NS.objects": []any{plist.UID(3)},
			"$class":     plist.UID(4),
		},
		"name",
		"value",
		map[string]any{"$classname": "NSDictionary", "$classes": []any{"NSDictionary", "NSObject"}},
	)

	require.Equal(t, mapping("name", Text("value")), decode(t, archive))
}

func TestDecodeArchiveDirectScalar(t *testing.T) {
	archive := keyedArchive(
		map[string]any{"title": "x", "count": plist.UID(1)},
		"$null",
		7,
	)

	require.Equal(t, mapping("count", Int(7), "title", Text("x")), decode(t, archive))
}

func TestDecodeArchiveReferenceOutOfRange(t *testing.T) {
	archive := keyedArchive(
		map[string]any{"item": plist.UID(5)},
		"$null", "a", "b",
	)

	require.Equal(t, mapping("item", Int(5)), decode(t, archive))
}

func TestDecodeArchiveArray(t *testing.T) {
	archive := keyedArchive(
		map[string]any{"root": plist.UID(1)},
		"$null",
		map[string]any{"NS.objects": []any{plist.UID(2), plist.UID(3), plist.UID(2)}},
		map[string]any{"NS.string": "shared"},
		map[string]any{"NS.time": 0},
	)

	expected := Sequence(
		Text("shared"),
		DateTime(time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)),
		Text("shared"),
	)

	require.Equal(t, expected, decode(t, archive))
}

func TestDecodeArchiveUUIDHint(t *testing.T) {
	first := uuid.MustParse("00112233-4455-4677-8899-aabbccddeeff")
	second := uuid.MustParse("ffeeddcc-bbaa-4988-b766-554433221100")
	packed := append(first[:], second[:]...)

	archive := keyedArchive(
		map[string]any{"assetUUIDs": plist.UID(1), "other": plist.UID(2)},
		"$null",
		packed,
		packed,
	)

	expected := mapping(
		"assetUUIDs", Sequence(UUID(first), UUID(second)),
		"other", Bytes(packed),
	)

	require.Equal(t, expected, decode(t, archive))
}

func TestDecodeArchiveUUIDHintBadLength(t *testing.T) {
	archive := keyedArchive(
		map[string]any{"assetUUIDs": plist.UID(1)},
		"$null",
		bytes.Repeat([]byte{1}, 20),
	)

	value := decode(t, archive)
	ids, _ := value.Map().Get("assetUUIDs")
	require.Equal(t, KindDecodeError, ids.Kind())
	require.Contains(t, ids.Message(), "assetUUIDs")
}

func TestDecodeArchiveNestedPlistSharesTable(t *testing.T) {
	nested := binaryPlist(t, map[string]any{"ref": plist.UID(2)})

	archive := keyedArchive(
		map[string]any{"root": plist.UID(1)},
		"$null",
		map[string]any{"NS.data": nested},
		"shared",
	)

	require.Equal(t, mapping("ref", Text("shared")), decode(t, archive))
}

func TestDecodeNestedArchive(t *testing.T) {
	inner := binaryPlist(t, keyedArchive(
		map[string]any{"root": plist.UID(1)},
		"$null",
		"inner",
	))

	outer := keyedArchive(
		map[string]any{"payload": plist.UID(1), "name": plist.UID(2)},
		"$null",
		inner,
		"outer",
	)

	require.Equal(t, mapping("name", Text("outer"), "payload", Text("inner")), decode(t, outer))
}

func TestDecodeArchiveCycle(t *testing.T) {
	archive := keyedArchive(
		map[string]any{"root": plist.UID(1)},
		"$null",
		map[string]any{"NS.objects": []any{plist.UID(1), plist.UID(2)}},
		"leaf",
	)

	value := decode(t, archive)
	require.Equal(t, KindSequence, value.Kind())

	elements := value.Elements()
	require.Len(t, elements, 2)
	require.Equal(t, DecodeError("cyclic reference to object 1"), elements[0])
	require.Equal(t, Text("leaf"), elements[1])
}

func TestDecodeArchiveSharedIsNotCycle(t *testing.T) {
	// the same object referenced from two siblings
	archive := keyedArchive(
		map[string]any{"root": plist.UID(1)},
		"$null",
		map[string]any{
			"NS.keys":    []any{plist.UID(2), plist.UID(3)},
			"NS.objects": []any{plist.UID(4), plist.UID(4)},
		},
		"a",
		"b",
		map[string]any{"NS.objects": []any{plist.UID(2)}},
	)

	expected := mapping("a", Sequence(Text("a")), "b", Sequence(Text("a")))
	require.Equal(t, expected, decode(t, archive))
}

func TestDecodeArchiveSharedObjectsAreUnwrappedOnce(t *testing.T) {
	const levels = 60

	// every object references the next one twice, a tree of 2^60 nodes when expanded
	objects := []any{"$null"}
	for idx := 1; idx <= levels; idx++ {
		next := plist.UID(idx + 1)
		objects = append(objects, map[string]any{"NS.objects": []any{next, next}})
	}

	objects = append(objects, "leaf")

	value := decode(t, keyedArchive(map[string]any{"root": plist.UID(1)}, objects...))

	for range levels {
		require.Equal(t, KindSequence, value.Kind())
		require.Len(t, value.Elements(), 2)
		require.Equal(t, value.Elements()[0], value.Elements()[1])
		value = value.Elements()[0]
	}

	require.Equal(t, Text("leaf"), value)
}

func TestDecodeArchiveCycleResultsDependOnPath(t *testing.T) {
	// objects 2 and 3 reference each other, the cut happens where the cycle closes
	archive := keyedArchive(
		map[string]any{"root": plist.UID(1)},
		"$null",
		map[string]any{"NS.objects": []any{plist.UID(2), plist.UID(3)}},
		map[string]any{"NS.objects": []any{plist.UID(3)}},
		map[string]any{"NS.objects": []any{plist.UID(2)}},
	)

	expected := Sequence(
		Sequence(Sequence(DecodeError("cyclic reference to object 2"))),
		Sequence(Sequence(DecodeError("cyclic reference to object 3"))),
	)

	require.Equal(t, expected, decode(t, archive))
}

func TestDecodeArchiveSharedObjectsHonorMaxDepth(t *testing.T) {
	// object 2 is referenced near the root and again three levels further down
	shared := keyedArchive(
		map[string]any{"root": plist.UID(1)},
		"$null",
		map[string]any{"NS.objects": []any{plist.UID(2), plist.UID(3)}},
		map[string]any{"NS.objects": []any{plist.UID(5)}},
		map[string]any{"NS.objects": []any{plist.UID(4)}},
		map[string]any{"NS.objects": []any{plist.UID(2)}},
		"leaf",
	)

	// the same tree with the deep reference pointing at a copy
	copied := keyedArchive(
		map[string]any{"root": plist.UID(1)},
		"$null",
		map[string]any{"NS.objects": []any{plist.UID(2), plist.UID(3)}},
		map[string]any{"NS.objects": []any{plist.UID(5)}},
		map[string]any{"NS.objects": []any{plist.UID(4)}},
		map[string]any{"NS.objects": []any{plist.UID(6)}},
		"leaf",
		map[string]any{"NS.objects": []any{plist.UID(7)}},
		"leaf",
	)

	sharedPrimitive, err := FromPlist(shared)
	require.NoError(t, err)

	copiedPrimitive, err := FromPlist(copied)
	require.NoError(t, err)

	for maxDepth := 1; maxDepth <= 16; maxDepth++ {
		dec := NewDecoder().WithMaxDepth(maxDepth)
		require.Equal(t, dec.DecodePlist(copiedPrimitive), dec.DecodePlist(sharedPrimitive), "max depth %d", maxDepth)
	}

	leaf := Sequence(Text("leaf"))
	require.Equal(t, Sequence(leaf, Sequence(Sequence(leaf))), DecodePlist(sharedPrimitive))
}

func TestDecodeMaxDepth(t *testing.T) {
	p, err := FromPlist([]any{[]any{[]any{[]any{1}}}})
	require.NoError(t, err)

	value := NewDecoder().WithMaxDepth(3).DecodePlist(p)

	inner := value.Elements()[0].Elements()[0]
	require.Equal(t, KindSequence, inner.Kind())
	require.Equal(t, KindDecodeError, inner.Elements()[0].Kind())
	require.Equal(t, DecodeError("maximum nesting depth 3 exceeded"), inner.Elements()[0])

	unlimited := NewDecoder().WithMaxDepth(0).DecodePlist(p)
	require.Equal(t, Sequence(Sequence(Sequence(Sequence(Int(1))))), unlimited)
}

func TestDecodeLogsReplacedValues(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	p, err := FromPlist(map[string]any{"when": map[string]any{"NS.time": "soon"}})
	require.NoError(t, err)

	value := NewDecoder().WithLogger(logger).DecodePlist(p)
	when, _ := value.Map().Get("when")
	require.Equal(t, KindDecodeError, when.Kind())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.DebugLevel, entry.Level)
	require.Contains(t, entry.Data, logrus.ErrorKey)
}

func TestDecodeWithNilLogger(t *testing.T) {
	p, err := FromPlist(map[string]any{"NS.time": "soon"})
	require.NoError(t, err)

	value := NewDecoder().WithLogger(nil).DecodePlist(p)
	require.Equal(t, KindDecodeError, value.Kind())
}

func TestDecodeIsIdempotent(t *testing.T) {
	ts := time.Date(2022, time.July, 1, 12, 0, 0, 0, time.UTC)

	values := []any{
		map[string]any{
			"name":    "photo",
			"id":      "0a1b2c3d-4e5f-4a6b-9c8d-7e6f5a4b3c2d",
			"created": ts,
			"count":   3,
			"ratio":   0.5,
			"flags":   []any{true, false},
			"blob":    []byte{1, 2, 3},
			"nested":  map[string]any{"NS.string": "inner"},
		},
		[]any{"a", nil, map[string]any{"NS.objects": []any{1, 2}}},
	}

	for _, raw := range values {
		once := decode(t, raw)
		twice := DecodePlist(primitiveOf(once))
		require.Equal(t, once, twice)
	}
}

func TestDecodeArchiveEqualsDecodePlist(t *testing.T) {
	p, err := FromPlist(keyedArchive(map[string]any{"root": plist.UID(1)}, "$null", "x"))
	require.NoError(t, err)

	require.Equal(t, DecodePlist(p), DecodeArchive(p))
}

func TestShapeOf(t *testing.T) {
	cases := []struct {
		Value any
		Shape Shape
	}{
		{map[string]any{"foo": 1}, ShapeGeneric},
		{"not a map", ShapeGeneric},
		{map[string]any{"NS.string": "x"}, ShapeString},
		{map[string]any{"NSString": "x"}, ShapeString},
		{map[string]any{"NS.time": 1}, ShapeTime},
		{keyedArchive(map[string]any{}), ShapeArchive},
		{map[string]any{"$archiver": "Other", "$top": map[string]any{}, "$objects": []any{}}, ShapeGeneric},
		{map[string]any{"$archiver": "PHMemoryFeatureEncoder", "$top": map[string]any{}, "$objects": []any{}}, ShapeArchive},
		{map[string]any{"$archiver": "NSKeyedArchiver", "$top": 1, "$objects": []any{}}, ShapeGeneric},
		{map[string]any{"NS.data": []byte{1}}, ShapeData},
		{map[string]any{"NS.keys": []any{}, "NS.objects": []any{}}, ShapeDictionary},
		{map[string]any{"NS.objects": []any{}}, ShapeArray},
		{map[string]any{"NS.keys": []any{}}, ShapeGeneric},
		{map[string]any{"NS.time": 1, "NS.data": []byte{}}, ShapeTime},
	}

	for _, tc := range cases {
		require.Equal(t, tc.Shape, ShapeOf(MustFromPlist(tc.Value)), "value %v", tc.Value)
	}
}
