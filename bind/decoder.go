package bind

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var ErrNoValue = errors.New("no value")
var ErrNotSupported = errors.New("not supported")

// NotSupportedError reports a Go type that can not be filled from a Source.
type NotSupportedError struct {
	Type reflect.Type
}

func (n NotSupportedError) Error() string {
	return fmt.Sprintf("type %q is not supported", n.Type)
}

func Unmarshal(source Source, target any) error {
	return dec.Unmarshal(source, target)
}

func UnmarshalNew[T any](source Source) (T, error) {
	return UnmarshalNewWith[T](dec, source)
}

func UnmarshalNewWith[T any](dec *Decoder, source Source) (T, error) {
	var target T
	err := dec.Unmarshal(source, &target)
	return target, err
}

// An assignFunc fills the addressable target with the data of source.
type assignFunc func(source Source, target reflect.Value) error

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

var dec = NewDecoder()

// Decoder binds sources onto Go values. The zero value is not usable, create one with
// NewDecoder. A Decoder is safe for concurrent use.
type Decoder struct {
	tag string

	// fail with ErrNoValue when a struct field has no value in the source
	strict bool

	// reflect.Type -> assignFunc
	assigners sync.Map
}

func NewDecoder() *Decoder {
	return &Decoder{tag: "plist"}
}

// WithTag returns a Decoder that names struct fields by the given struct tag.
func (d *Decoder) WithTag(tag string) *Decoder {
	if d.tag == tag {
		return d
	}

	return &Decoder{tag: tag, strict: d.strict}
}

// RequireValues returns a Decoder that fails with ErrNoValue if the source has no value
// for a struct field.
func (d *Decoder) RequireValues() *Decoder {
	if d.strict {
		return d
	}

	return &Decoder{tag: d.tag, strict: true}
}

func (d *Decoder) Unmarshal(source Source, target any) error {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() {
		return fmt.Errorf("unmarshal into %T: need a non nil pointer", target)
	}

	assign, err := d.assignerFor(ptr.Type().Elem(), pendingAssigners{})
	if err != nil {
		return err
	}

	return assign(source, ptr.Elem())
}

// pendingAssigners holds a slot for every type whose assigner is being built. A
// recursive type refers to its own slot, which is filled once the build completes.
type pendingAssigners map[reflect.Type]*assignFunc

func (d *Decoder) assignerFor(ty reflect.Type, pending pendingAssigners) (assignFunc, error) {
	if cached, ok := d.assigners.Load(ty); ok {
		return cached.(assignFunc), nil
	}

	if slot, ok := pending[ty]; ok {
		deferred := func(source Source, target reflect.Value) error {
			return (*slot)(source, target)
		}

		return deferred, nil
	}

	slot := new(assignFunc)
	pending[ty] = slot
	defer delete(pending, ty)

	assign, err := d.buildAssigner(ty, pending)
	if err != nil {
		return nil, err
	}

	*slot = assign
	d.assigners.Store(ty, assign)

	return assign, nil
}

func (d *Decoder) buildAssigner(ty reflect.Type, pending pendingAssigners) (assignFunc, error) {
	// uuid.UUID and time.Time bind from their text form
	if reflect.PointerTo(ty).Implements(textUnmarshalerType) {
		return assignText, nil
	}

	if assign, ok := scalarAssigners[ty.Kind()]; ok {
		return assign, nil
	}

	switch ty.Kind() {
	case reflect.Pointer:
		return d.buildPointer(ty, pending)

	case reflect.Struct:
		return d.buildStruct(ty, pending)

	case reflect.Slice:
		if ty.Elem().Kind() == reflect.Uint8 {
			return d.buildBytes(ty, pending)
		}

		return d.buildSlice(ty, pending)

	case reflect.Array:
		return d.buildArray(ty, pending)

	case reflect.Map:
		return d.buildMap(ty, pending)

	case reflect.Interface:
		if ty.NumMethod() == 0 {
			return assignSource, nil
		}
	}

	return nil, NotSupportedError{Type: ty}
}
