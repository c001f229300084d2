package bind

import "iter"

// Source is the read side of a decoded value tree as seen by [Unmarshal]. The normalized
// values produced by the catplist package implement it, but any tree shaped data can be
// adapted by implementing the methods below.
//
// A [Source] is interpreted in one of a few ways, depending on the Go type it is decoded onto:
//   - **Scalars**: [Source.Bool], [Source.Int], [Source.Uint], [Source.Float] and
//     [Source.String] convert the value to a basic Go type.
//   - **Objects**: [Source.Get] looks up the child stored under a key. Used for structs.
//   - **Sequences**: [Source.Iter] walks the elements in order. Used for slices and arrays.
//   - **Maps**: [Source.KeyValues] yields key and value pairs. Used for Go maps.
//
// If a conversion is not possible, the method must return [ErrNotSupported].
//
// Types implementing [encoding.TextUnmarshaler] are decoded from [Source.String]. This is
// how values like uuid.UUID or time.Time are filled from their canonical text form.
//
// [EmptySource] returns [ErrNotSupported] from every method and is meant to be embedded,
// [StringSource] parses scalars out of a string.
type Source interface {
	// Bool returns the current value as a bool.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Bool() (bool, error)

	// Int returns the current value as an int64.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Int() (int64, error)

	// Uint returns the current value as an uint64.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Uint() (uint64, error)

	// Float returns the current value as a float64.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Float() (float64, error)

	// String returns the current value as a string.
	// Returns error ErrNotSupported if the value can not be represented as such.
	String() (string, error)

	// Get returns a child value of this [Source] if it exists.
	// Returns error [ErrNotSupported] if the current [Source] does not have any
	// child values. If the [Source] does have children, but just not the
	// requested child, [ErrNoValue] must be returned.
	Get(key string) (Source, error)

	// KeyValues interprets the [Source] as a map and iterates over the
	// elements within. It yields a pair of key and value [Source] instances.
	// Returns [ErrNotSupported] if the [Source] is not a map.
	KeyValues() (iter.Seq2[Source, Source], error)

	// Iter interprets the [Source] as a sequence and iterates over the
	// elements within.
	// Returns [ErrNotSupported] if the [Source] is not iterable.
	Iter() (iter.Seq[Source], error)
}

// BytesSource is implemented by sources that hold opaque binary data. A []byte target
// is filled from [BytesSource.Bytes] when available, and element by element through
// [Source.Iter] otherwise.
type BytesSource interface {
	Bytes() ([]byte, error)
}
