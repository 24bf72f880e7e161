package vo

import (
	"strconv"
	"strings"
)

const (
	pathSeparator = "."
	lengthMarker  = "#"
)

// FromPath resolves a dot separated path against the value, strictly
// left to right. A segment is an object key, a non-negative array index
// or the length marker "#". On an array, "#" alone yields the element
// count as an Int; "#" followed by more segments projects the rest of
// the path over all elements into a new array. The first segment that
// does not fit the current variant terminates resolution with ok ==
// false. Keys are case sensitive and compared exactly.
func (v Value) FromPath(path string) (Value, bool) {
	parts := strings.SplitN(path, pathSeparator, 2)
	head := parts[0]

	switch v.kind {
	case KindObject:
		child, ok := v.o.Get(head)
		if !ok {
			return Null(), false
		}
		if len(parts) == 1 {
			return child, true
		}
		return child.FromPath(parts[1])
	case KindArray:
		if head == lengthMarker {
			if len(parts) == 1 {
				return Int(int64(len(v.a))), true
			}
			projected := make([]Value, 0, len(v.a))
			for _, item := range v.a {
				if itemValue, ok := item.FromPath(parts[1]); ok {
					projected = append(projected, itemValue)
				}
			}
			return Array(projected), true
		}
		index, errIndex := strconv.Atoi(head)
		if errIndex != nil || index < 0 || index >= len(v.a) {
			return Null(), false
		}
		if len(parts) == 1 {
			return v.a[index], true
		}
		return v.a[index].FromPath(parts[1])
	default:
		return Null(), false
	}
}
