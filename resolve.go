package catplist

import (
	"fmt"
	"strings"
)

// resolve unwraps the object a reference points to. Without an object table in scope,
// or with an index outside of it, the index itself is returned as an int.
//
// Objects referenced more than once are unwrapped once per table and the resulting
// value is shared, as long as it still fits below the depth limit where it is reused.
func (u *unwrapper) resolve(index int64) Value {
	start := *u.depth

	if object, ok := u.resolved[index]; ok && u.fits(start+object.height) {
		*u.peak = max(*u.peak, start+object.height)
		return object.value
	}

	truncatedBefore, peakBefore := *u.truncated, *u.peak
	*u.peak = start

	value, ok := u.resolveWith(index, u.unwrap)

	height := *u.peak - start
	*u.peak = max(peakBefore, *u.peak)

	if ok && *u.truncated == truncatedBefore {
		u.resolved[index] = resolvedObject{value: value, height: height}
	}

	return value
}

// fits reports whether a subtree reaching down to level depth stays within the limit.
func (u *unwrapper) fits(depth int) bool {
	return u.dec.maxDepth <= 0 || depth <= u.dec.maxDepth
}

// resolveTop resolves a reference from the $top table of an archive. Byte strings found
// this way go straight to the blob classifier. Keys ending in "UUIDs" mark them as
// packed uuid arrays.
func (u *unwrapper) resolveTop(index int64, key string) Value {
	value, _ := u.resolveWith(index, func(object Primitive) Value {
		if object.kind != PrimitiveBytes {
			return u.unwrap(object)
		}

		value, err := u.unwrapBlob(object.raw, strings.HasSuffix(key, "UUIDs"))
		if err != nil {
			return u.fail(fmt.Errorf("%s: %w", key, err))
		}

		return value
	})

	return value
}

// resolveWith looks up index and unwraps the object with unwrapObject. It reports
// false if no object was unwrapped.
func (u *unwrapper) resolveWith(index int64, unwrapObject func(Primitive) Value) (Value, bool) {
	if index < 0 || index >= int64(len(u.table)) {
		return Int(index), false
	}

	if _, ok := u.active[index]; ok {
		*u.truncated++
		return u.fail(fmt.Errorf("cyclic reference to object %d", index)), false
	}

	u.active[index] = struct{}{}
	defer delete(u.active, index)

	return unwrapObject(u.table[index]), true
}
