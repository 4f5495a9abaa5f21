package module

import (
	"fmt"
	"reflect"
)

// PortsOf finds a T in m's port bundle: either the bundle itself or the first
// non-nil exported top level field of a struct (or *struct) bundle
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	if m == nil {
		return zero, false
	}
	p := m.Ports()
	if v, ok := p.(T); ok {
		return v, true
	}

	rv := reflect.Indirect(reflect.ValueOf(p))
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return zero, false
	}
	for _, f := range reflect.VisibleFields(rv.Type()) {
		if len(f.Index) != 1 || !f.IsExported() {
			continue
		}
		fv := rv.Field(f.Index[0])
		switch fv.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan:
			if fv.IsNil() {
				continue
			}
		}
		if v, ok := fv.Interface().(T); ok {
			return v, true
		}
	}
	return zero, false
}

// MustPortsOf is PortsOf for bootstrap code; it panics naming the module and port type
func MustPortsOf[T any](m Module) T {
	if v, ok := PortsOf[T](m); ok {
		return v
	}
	name := "<nil>"
	if m != nil {
		name = m.Name()
	}
	panic(fmt.Sprintf("module %s has no %s port", name, reflect.TypeFor[T]()))
}
