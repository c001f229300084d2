package catplist

import (
	"fmt"
	"github.com/sirupsen/logrus"
	"io"
	"math"
	"time"
)

// DefaultMaxDepth is the nesting depth at which the default Decoder gives up on a
// subtree.
const DefaultMaxDepth = 512

// Decoder unwraps primitive trees into normalized values. A Decoder is immutable and
// safe for concurrent use; each decode call keeps its own state.
type Decoder struct {
	logger   logrus.FieldLogger
	maxDepth int
}

// The default Decoder instance.
var dec = NewDecoder()

func NewDecoder() *Decoder {
	return &Decoder{
		logger:   logrus.StandardLogger(),
		maxDepth: DefaultMaxDepth,
	}
}

// WithLogger returns a Decoder that reports replaced subtrees to logger at debug level.
func (d *Decoder) WithLogger(logger logrus.FieldLogger) *Decoder {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	return &Decoder{logger: logger, maxDepth: d.maxDepth}
}

// WithMaxDepth returns a Decoder that replaces subtrees nested deeper than maxDepth
// with a decode error. A maxDepth of zero or less disables the limit.
func (d *Decoder) WithMaxDepth(maxDepth int) *Decoder {
	return &Decoder{logger: d.logger, maxDepth: maxDepth}
}

// DecodePlist unwraps p with no object table in scope. An absent or empty p decodes to
// an empty mapping.
func (d *Decoder) DecodePlist(p Primitive) Value {
	if p.IsEmpty() {
		return Mapping(NewMap())
	}

	return d.newUnwrapper().unwrap(p)
}

// DecodeArchive behaves exactly like DecodePlist. Keyed archives are recognized by
// their shape wherever they appear.
func (d *Decoder) DecodeArchive(p Primitive) Value {
	return d.DecodePlist(p)
}

func DecodePlist(p Primitive) Value {
	return dec.DecodePlist(p)
}

func DecodeArchive(p Primitive) Value {
	return dec.DecodeArchive(p)
}

// unwrapper holds the state of one decode pass over an object table.
//
// active holds the table indices currently being resolved, resolved the finished
// objects of the table. depth, peak and truncated are shared with the unwrappers of
// nested archives. peak is the deepest level entered so far. truncated counts subtrees
// cut short by a cycle or by the depth limit; such results depend on the path they
// were reached by and are never kept in resolved.
type unwrapper struct {
	dec      *Decoder
	table    []Primitive
	active   map[int64]struct{}
	resolved map[int64]resolvedObject

	depth     *int
	peak      *int
	truncated *int
}

// resolvedObject is a finished table object and the number of levels it spans.
type resolvedObject struct {
	value  Value
	height int
}

func (d *Decoder) newUnwrapper() *unwrapper {
	return &unwrapper{dec: d, depth: new(int), peak: new(int), truncated: new(int)}
}

// withTable returns an unwrapper for the object table of a nested keyed archive.
func (u *unwrapper) withTable(table []Primitive) *unwrapper {
	return &unwrapper{
		dec:       u.dec,
		table:     table,
		active:    map[int64]struct{}{},
		resolved:  map[int64]resolvedObject{},
		depth:     u.depth,
		peak:      u.peak,
		truncated: u.truncated,
	}
}

func (u *unwrapper) enter() (leave func(), err error) {
	if u.dec.maxDepth > 0 && *u.depth >= u.dec.maxDepth {
		*u.truncated++
		return nil, fmt.Errorf("maximum nesting depth %d exceeded", u.dec.maxDepth)
	}

	*u.depth++
	*u.peak = max(*u.peak, *u.depth)

	return func() { *u.depth-- }, nil
}

// fail replaces a subtree that could not be decoded.
func (u *unwrapper) fail(err error) Value {
	u.dec.logger.WithError(err).Debug("Replacing undecodable value")
	return DecodeError(err.Error())
}

// unwrap normalizes p. It never fails: errors become a DecodeError in place of p.
func (u *unwrapper) unwrap(p Primitive) Value {
	leave, err := u.enter()
	if err != nil {
		return u.fail(err)
	}

	defer leave()

	value, err := u.unwrapPrimitive(p)
	if err != nil {
		return u.fail(err)
	}

	return value
}

func (u *unwrapper) unwrapPrimitive(p Primitive) (Value, error) {
	switch p.kind {
	case PrimitiveNull:
		return Text(""), nil
	case PrimitiveBool:
		return Bool(p.b), nil
	case PrimitiveInt:
		return Int(p.i), nil
	case PrimitiveFloat:
		return Float(p.f), nil
	case PrimitiveText:
		return PromoteText(p.s), nil
	case PrimitiveDate:
		return DateTime(p.t), nil
	case PrimitiveReference:
		return u.resolve(p.i), nil
	case PrimitiveBytes:
		return u.unwrapBlob(p.raw, false)
	case PrimitiveArray:
		return u.unwrapElements(p.arr), nil
	case PrimitiveMap:
		return u.unwrapMap(p)
	default:
		return p.Raw(), nil
	}
}

func (u *unwrapper) unwrapElements(elements []Primitive) Value {
	values := make([]Value, 0, len(elements))
	for _, element := range elements {
		values = append(values, u.unwrap(element))
	}

	return Sequence(values...)
}

func (u *unwrapper) unwrapMap(p Primitive) (Value, error) {
	m := p.m

	switch ShapeOf(p) {
	case ShapeString:
		if text, ok := m[keyNSString]; ok {
			return u.unwrap(text), nil
		}

		return u.unwrap(m[keyNSStringAlt]), nil

	case ShapeTime:
		return unwrapTime(m[keyNSTime])

	case ShapeArchive:
		return u.unwrapArchive(m[keyArchiveTop], m[keyArchiveObjects].arr), nil

	case ShapeData:
		return u.unwrap(m[keyNSData]), nil

	case ShapeDictionary:
		return u.unwrapDictionary(m[keyNSKeys], m[keyNSObjects])

	case ShapeArray:
		objects := m[keyNSObjects]
		if objects.kind != PrimitiveArray {
			return Value{}, fmt.Errorf("%s holds %s, want array", keyNSObjects, objects.kind)
		}

		return u.unwrapElements(objects.arr), nil

	default:
		result := NewMap()
		for _, key := range p.sortedKeys() {
			result.Set(key, u.unwrap(m[key]))
		}

		return Mapping(result), nil
	}
}

// appleEpoch is the reference date of NSDate, 2001-01-01T00:00:00Z.
var appleEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// maxTimeOffset bounds NS.time offsets so that adding them to appleEpoch can not
// overflow int64 seconds.
const maxTimeOffset = math.MaxInt64 / 2

func unwrapTime(offset Primitive) (Value, error) {
	var seconds float64

	switch offset.kind {
	case PrimitiveInt:
		seconds = float64(offset.i)
	case PrimitiveFloat:
		seconds = offset.f
	default:
		return Value{}, fmt.Errorf("%s holds %s, want a number", keyNSTime, offset.kind)
	}

	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return Value{}, fmt.Errorf("%s holds non finite offset %v", keyNSTime, seconds)
	}

	whole, fraction := math.Modf(seconds)
	if whole < -maxTimeOffset || whole > maxTimeOffset {
		return Value{}, fmt.Errorf("%s holds out of range offset %v", keyNSTime, seconds)
	}

	nanos := int64(math.Round(fraction * 1e9))
	return DateTime(time.Unix(appleEpoch.Unix()+int64(whole), nanos)), nil
}

// unwrapArchive resolves every entry of the $top table of a keyed archive against its
// object table. An archive with a single entry named "root" collapses to that entry.
func (u *unwrapper) unwrapArchive(top Primitive, objects []Primitive) Value {
	archive := u.withTable(objects)

	u.dec.logger.WithField("objects", len(objects)).Debug("Unwrapping keyed archive")

	result := NewMap()
	for _, key := range top.sortedKeys() {
		entry := top.m[key]

		if entry.kind == PrimitiveReference {
			result.Set(key, archive.resolveTop(entry.i, key))
			continue
		}

		result.Set(key, archive.unwrap(entry))
	}

	if root, ok := result.Get(keyRoot); ok && result.Len() == 1 {
		return root
	}

	return Mapping(result)
}

func (u *unwrapper) unwrapDictionary(keys, objects Primitive) (Value, error) {
	if keys.kind != PrimitiveArray {
		return Value{}, fmt.Errorf("%s holds %s, want array", keyNSKeys, keys.kind)
	}

	if objects.kind != PrimitiveArray {
		return Value{}, fmt.Errorf("%s holds %s, want array", keyNSObjects, objects.kind)
	}

	result := NewMap()
	for idx := range min(len(keys.arr), len(objects.arr)) {
		key := u.unwrap(keys.arr[idx])
		value := u.unwrap(objects.arr[idx])
		result.Set(keyText(key), value)
	}

	return Mapping(result), nil
}
