package bind

import (
	"errors"
	"fmt"
	"reflect"
)

// boundField is a struct field together with the assigner for its type.
type boundField struct {
	field
	assign assignFunc
}

func (d *Decoder) buildStruct(ty reflect.Type, pending pendingAssigners) (assignFunc, error) {
	var fields []boundField

	for _, f := range fieldsOf(ty, d.tag) {
		assign, err := d.assignerFor(f.Type, pending)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}

		fields = append(fields, boundField{field: f, assign: assign})
	}

	strict := d.strict

	return func(source Source, target reflect.Value) error {
		for _, f := range fields {
			child, err := source.Get(f.Name)
			if errors.Is(err, ErrNoValue) && !strict {
				continue
			}

			if err != nil {
				return fmt.Errorf("field %q: %w", f.Name, err)
			}

			if err := f.assign(child, fieldByIndexAlloc(target, f.Index)); err != nil {
				return fmt.Errorf("field %q: %w", f.Name, err)
			}
		}

		return nil
	}, nil
}

// fieldByIndexAlloc walks down index like reflect.Value.FieldByIndex, allocating nil
// embedded struct pointers on the way.
func fieldByIndexAlloc(target reflect.Value, index []int) reflect.Value {
	for pos, fieldIndex := range index {
		if pos > 0 && target.Kind() == reflect.Pointer {
			if target.IsNil() {
				target.Set(reflect.New(target.Type().Elem()))
			}

			target = target.Elem()
		}

		target = target.Field(fieldIndex)
	}

	return target
}

func (d *Decoder) buildMap(ty reflect.Type, pending pendingAssigners) (assignFunc, error) {
	assignKey, err := d.assignerFor(ty.Key(), pending)
	if err != nil {
		return nil, fmt.Errorf("map key: %w", err)
	}

	assignValue, err := d.assignerFor(ty.Elem(), pending)
	if err != nil {
		return nil, fmt.Errorf("map value: %w", err)
	}

	return func(source Source, target reflect.Value) error {
		pairs, err := source.KeyValues()
		if err != nil {
			return fmt.Errorf("read map: %w", err)
		}

		result := reflect.MakeMap(ty)

		for keySource, valueSource := range pairs {
			key := reflect.New(ty.Key()).Elem()
			if err := assignKey(keySource, key); err != nil {
				return fmt.Errorf("map key: %w", err)
			}

			value := reflect.New(ty.Elem()).Elem()
			if err := assignValue(valueSource, value); err != nil {
				return fmt.Errorf("map value for %v: %w", key, err)
			}

			result.SetMapIndex(key, value)
		}

		target.Set(result)
		return nil
	}, nil
}

// buildBytes copies the data of a BytesSource, other sources fill the slice one
// element at a time.
func (d *Decoder) buildBytes(ty reflect.Type, pending pendingAssigners) (assignFunc, error) {
	assignElements, err := d.buildSlice(ty, pending)
	if err != nil {
		return nil, err
	}

	return func(source Source, target reflect.Value) error {
		bytesSource, ok := source.(BytesSource)
		if !ok {
			return assignElements(source, target)
		}

		data, err := bytesSource.Bytes()
		if err != nil {
			return fmt.Errorf("read bytes: %w", err)
		}

		copied := reflect.MakeSlice(ty, len(data), len(data))
		reflect.Copy(copied, reflect.ValueOf(data))

		target.Set(copied)
		return nil
	}, nil
}

func (d *Decoder) buildSlice(ty reflect.Type, pending pendingAssigners) (assignFunc, error) {
	assignElement, err := d.assignerFor(ty.Elem(), pending)
	if err != nil {
		return nil, err
	}

	return func(source Source, target reflect.Value) error {
		elements, err := source.Iter()
		if err != nil {
			return fmt.Errorf("read elements: %w", err)
		}

		result := reflect.MakeSlice(ty, 0, 0)

		for element := range elements {
			idx := result.Len()
			result = reflect.Append(result, reflect.Zero(ty.Elem()))

			if err := assignElement(element, result.Index(idx)); err != nil {
				return fmt.Errorf("element %d: %w", idx, err)
			}
		}

		target.Set(result)
		return nil
	}, nil
}

// buildArray fills an array from the front. Extra elements in the source are ignored,
// missing ones keep their zero value.
func (d *Decoder) buildArray(ty reflect.Type, pending pendingAssigners) (assignFunc, error) {
	assignElement, err := d.assignerFor(ty.Elem(), pending)
	if err != nil {
		return nil, err
	}

	length := ty.Len()

	return func(source Source, target reflect.Value) error {
		elements, err := source.Iter()
		if err != nil {
			return fmt.Errorf("read elements: %w", err)
		}

		idx := 0
		for element := range elements {
			if idx == length {
				break
			}

			if err := assignElement(element, target.Index(idx)); err != nil {
				return fmt.Errorf("element %d: %w", idx, err)
			}

			idx++
		}

		return nil
	}, nil
}

func (d *Decoder) buildPointer(ty reflect.Type, pending pendingAssigners) (assignFunc, error) {
	assignPointee, err := d.assignerFor(ty.Elem(), pending)
	if err != nil {
		return nil, err
	}

	return func(source Source, target reflect.Value) error {
		pointee := reflect.New(ty.Elem())
		if err := assignPointee(source, pointee.Elem()); err != nil {
			return err
		}

		target.Set(pointee)
		return nil
	}, nil
}
