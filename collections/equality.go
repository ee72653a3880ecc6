package collections

import "reflect"

// deepEqual is the element-equality test used by Contains/IndexOf/Remove
// across the list implementations. Collections here are generic over any
// element type, so structural equality is the only option that doesn't
// require callers to supply a comparator.
func deepEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
