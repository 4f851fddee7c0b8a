package value

import "reflect"

// identityOf returns the underlying pointer address of a shared mutable
// collection, used only as an opaque comparison key (spec.md §4.1's
// iteration guard and §9's "identified by their address").
func identityOf(ptr interface{}) uintptr {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return 0
	}
	return v.Pointer()
}
