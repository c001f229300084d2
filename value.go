package catplist

import (
	"encoding/base64"
	"fmt"
	"github.com/go-gum/catplist/bind"
	"github.com/google/uuid"
	"iter"
	"math"
	"strconv"
	"time"
)

// Kind discriminates the variants of a normalized Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindText
	KindUUID
	KindDateTime
	KindBytes
	KindSequence
	KindMapping
	KindDecodeError
)

var kindNames = [...]string{
	KindNull:        "null",
	KindBool:        "bool",
	KindInt:         "int",
	KindFloat:       "float",
	KindText:        "text",
	KindUUID:        "uuid",
	KindDateTime:    "datetime",
	KindBytes:       "bytes",
	KindSequence:    "sequence",
	KindMapping:     "mapping",
	KindDecodeError: "decode error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a node of the normalized tree produced by the unwrap engine. The zero Value
// is Null.
//
// A Value never holds an object reference or a Foundation wrapper dictionary; those are
// collapsed while unwrapping. Values are immutable once constructed.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	id   uuid.UUID
	t    time.Time
	raw  []byte
	seq  []Value
	m    *Map
}

var _ bind.Source = Value{}
var _ bind.BytesSource = Value{}

func Null() Value {
	return Value{}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func Int(i int64) Value {
	return Value{kind: KindInt, i: i}
}

func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

func Text(s string) Value {
	return Value{kind: KindText, s: s}
}

func UUID(id uuid.UUID) Value {
	return Value{kind: KindUUID, id: id}
}

// DateTime returns a date-time value. The time is stored in UTC.
func DateTime(t time.Time) Value {
	return Value{kind: KindDateTime, t: t.UTC()}
}

func Bytes(b []byte) Value {
	if b == nil {
		b = []byte{}
	}

	return Value{kind: KindBytes, raw: b}
}

func Sequence(values ...Value) Value {
	if values == nil {
		values = []Value{}
	}

	return Value{kind: KindSequence, seq: values}
}

func Mapping(m *Map) Value {
	if m == nil {
		m = NewMap()
	}

	return Value{kind: KindMapping, m: m}
}

// DecodeError returns a value that stands in for a subtree that could not be decoded.
func DecodeError(message string) Value {
	return Value{kind: KindDecodeError, s: message}
}

func (v Value) Kind() Kind {
	return v.kind
}

// AsUUID returns the UUID held by a KindUUID value.
func (v Value) AsUUID() (uuid.UUID, bool) {
	return v.id, v.kind == KindUUID
}

// AsTime returns the time held by a KindDateTime value.
func (v Value) AsTime() (time.Time, bool) {
	return v.t, v.kind == KindDateTime
}

// Elements returns the elements of a sequence, nil for other kinds.
func (v Value) Elements() []Value {
	return v.seq
}

// Map returns the entries of a mapping, nil for other kinds.
func (v Value) Map() *Map {
	return v.m
}

// Message returns the message of a decode error, the empty string for other kinds.
func (v Value) Message() string {
	if v.kind != KindDecodeError {
		return ""
	}

	return v.s
}

func (v Value) unsupported(want string) error {
	if v.kind == KindDecodeError {
		return fmt.Errorf("%s from undecodable value %q: %w", want, v.s, bind.ErrNotSupported)
	}

	return fmt.Errorf("%s from %s: %w", want, v.kind, bind.ErrNotSupported)
}

func (v Value) Bool() (bool, error) {
	if v.kind != KindBool {
		return false, v.unsupported("bool")
	}

	return v.b, nil
}

// Int returns the value of an int, or of a float without fractional part.
func (v Value) Int() (int64, error) {
	switch v.kind {
	case KindInt:
		return v.i, nil

	case KindFloat:
		if v.f == math.Trunc(v.f) && v.f >= math.MinInt64 && v.f < math.MaxInt64 {
			return int64(v.f), nil
		}
	}

	return 0, v.unsupported("int")
}

func (v Value) Uint() (uint64, error) {
	intValue, err := v.Int()
	if err != nil {
		return 0, err
	}

	if intValue < 0 {
		return 0, fmt.Errorf("uint from %d: %w", intValue, strconv.ErrRange)
	}

	return uint64(intValue), nil
}

func (v Value) Float() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.f, nil
	case KindInt:
		return float64(v.i), nil
	default:
		return 0, v.unsupported("float")
	}
}

// String returns the text of a value. UUIDs are returned in their canonical lowercase
// form, date-times as RFC 3339 with nanoseconds.
func (v Value) String() (string, error) {
	switch v.kind {
	case KindText:
		return v.s, nil
	case KindUUID:
		return v.id.String(), nil
	case KindDateTime:
		return v.t.Format(time.RFC3339Nano), nil
	default:
		return "", v.unsupported("string")
	}
}

func (v Value) Bytes() ([]byte, error) {
	if v.kind != KindBytes {
		return nil, v.unsupported("bytes")
	}

	return v.raw, nil
}

func (v Value) Get(key string) (bind.Source, error) {
	if v.kind != KindMapping {
		return nil, v.unsupported("child " + strconv.Quote(key))
	}

	child, ok := v.m.Get(key)
	if !ok {
		return nil, bind.ErrNoValue
	}

	return child, nil
}

func (v Value) KeyValues() (iter.Seq2[bind.Source, bind.Source], error) {
	if v.kind != KindMapping {
		return nil, v.unsupported("key/value pairs")
	}

	it := func(yield func(bind.Source, bind.Source) bool) {
		for key, value := range v.m.All() {
			if !yield(bind.StringSource(key), value) {
				return
			}
		}
	}

	return it, nil
}

func (v Value) Iter() (iter.Seq[bind.Source], error) {
	if v.kind != KindSequence {
		return nil, v.unsupported("elements")
	}

	it := func(yield func(bind.Source) bool) {
		for _, element := range v.seq {
			if !yield(element) {
				return
			}
		}
	}

	return it, nil
}

// Interface converts the value into plain Go values: nil, bool, int64, float64, string,
// uuid.UUID, time.Time, []byte, []any and map[string]any. Decode errors become a
// string prefixed with "$ERROR: ".
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	case KindUUID:
		return v.id
	case KindDateTime:
		return v.t
	case KindBytes:
		return v.raw
	case KindDecodeError:
		return errorPrefix + v.s

	case KindSequence:
		values := make([]any, 0, len(v.seq))
		for _, element := range v.seq {
			values = append(values, element.Interface())
		}

		return values

	case KindMapping:
		values := make(map[string]any, v.m.Len())
		for key, value := range v.m.All() {
			values[key] = value.Interface()
		}

		return values

	default:
		return nil
	}
}

const errorPrefix = "$ERROR: "

// keyText renders a value as a mapping key.
func keyText(v Value) string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText, KindUUID, KindDateTime:
		text, _ := v.String()
		return text
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.raw)
	case KindDecodeError:
		return errorPrefix + v.s
	default:
		return fmt.Sprint(v.Interface())
	}
}
