package catplist

// Keys of the Foundation encodings the unwrap engine knows about.
const (
	keyNSString    = "NS.string"
	keyNSStringAlt = "NSString"
	keyNSTime      = "NS.time"
	keyNSData      = "NS.data"
	keyNSKeys      = "NS.keys"
	keyNSObjects   = "NS.objects"

	keyArchiver       = "$archiver"
	keyArchiveTop     = "$top"
	keyArchiveObjects = "$objects"

	keyRoot = "root"
)

// archiver names whose payloads are decoded as keyed object graphs
var archivers = map[string]bool{
	"NSKeyedArchiver":        true,
	"PHMemoryFeatureEncoder": true,
}

// Shape is the structural interpretation of a map primitive.
type Shape uint8

const (
	// ShapeGeneric is a plain dictionary.
	ShapeGeneric Shape = iota

	// ShapeString wraps a single string under NS.string or NSString.
	ShapeString

	// ShapeTime holds an NSDate as seconds since 2001-01-01 under NS.time.
	ShapeTime

	// ShapeArchive is the root of a keyed archive: $archiver, $top and $objects.
	ShapeArchive

	// ShapeData wraps a byte string under NS.data.
	ShapeData

	// ShapeDictionary is an NSDictionary with parallel NS.keys and NS.objects arrays.
	ShapeDictionary

	// ShapeArray is an NSArray or NSSet with an NS.objects array.
	ShapeArray
)

// ShapeOf classifies a map primitive. The checks run in a fixed order and the first
// match wins, e.g. a map holding both NS.string and NS.keys is a ShapeString.
// Primitives that are not maps are ShapeGeneric.
func ShapeOf(p Primitive) Shape {
	if p.kind != PrimitiveMap {
		return ShapeGeneric
	}

	m := p.m
	has := func(key string) bool {
		_, ok := m[key]
		return ok
	}

	switch {
	case has(keyNSString) || has(keyNSStringAlt):
		return ShapeString
	case has(keyNSTime):
		return ShapeTime
	case isArchive(m):
		return ShapeArchive
	case has(keyNSData):
		return ShapeData
	case has(keyNSKeys) && has(keyNSObjects):
		return ShapeDictionary
	case has(keyNSObjects):
		return ShapeArray
	default:
		return ShapeGeneric
	}
}

func isArchive(m map[string]Primitive) bool {
	archiver, ok := m[keyArchiver]
	if !ok || archiver.kind != PrimitiveText || !archivers[archiver.s] {
		return false
	}

	top, ok := m[keyArchiveTop]
	if !ok || top.kind != PrimitiveMap {
		return false
	}

	objects, ok := m[keyArchiveObjects]
	return ok && objects.kind == PrimitiveArray
}
