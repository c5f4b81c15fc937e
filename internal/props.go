package internal

import (
	"reflect"
	"slices"
)

// PropChange is one entry of a host property diff.
type PropChange struct {
	Name    string
	Value   any
	Removed bool
}

// diffProps lists the properties that differ between prev and next, sorted
// by name. Values that cannot be compared, such as funcs, always differ.
func diffProps(prev, next Props) []PropChange {
	var diff []PropChange

	for name, v := range next {
		if old, ok := prev[name]; ok && sameValue(old, v) {
			continue
		}
		diff = append(diff, PropChange{Name: name, Value: v})
	}
	for name := range prev {
		if _, ok := next[name]; !ok {
			diff = append(diff, PropChange{Name: name, Removed: true})
		}
	}

	slices.SortFunc(diff, func(a, b PropChange) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})

	return diff
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() {
		return false
	}
	return va.Equal(vb)
}

func sameDeps(prev, next []any) bool {
	if prev == nil || next == nil || len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if !sameValue(prev[i], next[i]) {
			return false
		}
	}
	return true
}
