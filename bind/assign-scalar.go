package bind

import (
	"encoding"
	"fmt"
	"golang.org/x/exp/constraints"
	"math"
	"reflect"
	"strconv"
)

var scalarAssigners = map[reflect.Kind]assignFunc{
	reflect.Bool: assignBool,

	reflect.Int:   signedAssigner[int](),
	reflect.Int8:  signedAssigner[int8](),
	reflect.Int16: signedAssigner[int16](),
	reflect.Int32: signedAssigner[int32](),
	reflect.Int64: signedAssigner[int64](),

	reflect.Uint:   unsignedAssigner[uint](),
	reflect.Uint8:  unsignedAssigner[uint8](),
	reflect.Uint16: unsignedAssigner[uint16](),
	reflect.Uint32: unsignedAssigner[uint32](),
	reflect.Uint64: unsignedAssigner[uint64](),

	reflect.Float32: assignFloat,
	reflect.Float64: assignFloat,

	reflect.String: assignString,
}

func assignBool(source Source, target reflect.Value) error {
	b, err := source.Bool()
	if err != nil {
		return fmt.Errorf("read bool: %w", err)
	}

	target.SetBool(b)
	return nil
}

// signedAssigner rejects values that do not survive the conversion to T.
func signedAssigner[T constraints.Signed]() assignFunc {
	return func(source Source, target reflect.Value) error {
		i, err := source.Int()
		if err != nil {
			return fmt.Errorf("read int: %w", err)
		}

		if int64(T(i)) != i {
			return fmt.Errorf("%d does not fit into %T: %w", i, T(0), strconv.ErrRange)
		}

		target.SetInt(i)
		return nil
	}
}

func unsignedAssigner[T constraints.Unsigned]() assignFunc {
	return func(source Source, target reflect.Value) error {
		u, err := source.Uint()
		if err != nil {
			return fmt.Errorf("read uint: %w", err)
		}

		if uint64(T(u)) != u {
			return fmt.Errorf("%d does not fit into %T: %w", u, T(0), strconv.ErrRange)
		}

		target.SetUint(u)
		return nil
	}
}

func assignFloat(source Source, target reflect.Value) error {
	f, err := source.Float()
	if err != nil {
		return fmt.Errorf("read float: %w", err)
	}

	// infinities and NaN pass, finite values must stay finite
	if !math.IsInf(f, 0) && target.OverflowFloat(f) {
		return fmt.Errorf("%g does not fit into %s: %w", f, target.Type(), strconv.ErrRange)
	}

	target.SetFloat(f)
	return nil
}

func assignString(source Source, target reflect.Value) error {
	s, err := source.String()
	if err != nil {
		return fmt.Errorf("read string: %w", err)
	}

	target.SetString(s)
	return nil
}

func assignText(source Source, target reflect.Value) error {
	text, err := source.String()
	if err != nil {
		return fmt.Errorf("read text: %w", err)
	}

	return target.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text))
}

// assignSource stores the Source itself in an `any` target, leaving the
// interpretation to the caller.
func assignSource(source Source, target reflect.Value) error {
	target.Set(reflect.ValueOf(source))
	return nil
}
