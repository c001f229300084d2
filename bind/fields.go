package bind

import (
	"reflect"
	"slices"
	"strings"
)

type field struct {
	Name  string
	Type  reflect.Type
	Index []int
}

// fieldsOf lists the fields of a struct that take part in decoding, including fields
// promoted from embedded structs. Name conflicts are resolved like encoding/json does:
// the shallowest field wins, an explicitly tagged field wins among equally deep ones,
// and an unresolvable conflict hides the name entirely.
func fieldsOf(ty reflect.Type, structTag string) []field {
	if ty.Kind() != reflect.Struct {
		panic("not a struct")
	}

	type pending struct {
		Type   reflect.Type
		Prefix []int
	}

	type candidate struct {
		Explicit bool
		Field    field
	}

	queue := []pending{{Type: ty}}
	byName := map[string][]candidate{}

	var order []string

	// breadth first, so candidates for a name are collected shallowest first
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		for idx := range item.Type.NumField() {
			fi := item.Type.Field(idx)
			if !fi.IsExported() {
				continue
			}

			name, explicit := fieldName(fi, structTag)
			if name == "" {
				continue
			}

			// full cap slicing forces append to copy the prefix
			prefix := item.Prefix
			index := append(prefix[:len(prefix):len(prefix)], fi.Index...)

			if fi.Anonymous && !explicit {
				if fi.Type.Kind() == reflect.Struct {
					queue = append(queue, pending{Type: fi.Type, Prefix: index})
				}

				continue
			}

			if len(byName[name]) == 0 {
				order = append(order, name)
			}

			byName[name] = append(byName[name], candidate{
				Explicit: explicit,
				Field:    field{Name: name, Type: fi.Type, Index: index},
			})
		}
	}

	var fields []field

	for _, name := range order {
		candidates := byName[name]

		depth := len(candidates[0].Field.Index)
		shallowest := slices.DeleteFunc(slices.Clone(candidates), func(c candidate) bool {
			return len(c.Field.Index) != depth
		})

		if len(shallowest) == 1 {
			fields = append(fields, shallowest[0].Field)
			continue
		}

		tagged := slices.DeleteFunc(shallowest, func(c candidate) bool { return !c.Explicit })
		if len(tagged) == 1 {
			fields = append(fields, tagged[0].Field)
		}
	}

	return fields
}

// fieldName derives the key of a struct field from its tag. An empty name means the
// field is skipped.
func fieldName(fi reflect.StructField, structTag string) (name string, explicit bool) {
	tag := fi.Tag.Get(structTag)

	switch {
	case tag == "":
		return fi.Name, false

	case tag == "-":
		return "", true
	}

	name, _, _ = strings.Cut(tag, ",")
	if name == "" {
		// options only, e.g. `plist:",omitempty"`
		return fi.Name, false
	}

	return name, true
}
