// Package bind unmarshals a decoded value tree onto Go types (structs, slices, maps,
// scalars), similar to [json.Unmarshal].
//
// The [Source] interface defines read access to a value. The [Decoder.Unmarshal] function
// walks the target type and pulls data out of the [Source] using functions like
// [Source.Int], [Source.String], etc. Struct fields are matched by their `plist` tag.
package bind
