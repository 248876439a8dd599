// Package unsafecast exposes functions to bypass the Go type system and
// perform conversions between types that would otherwise not be possible.
//
// The functions of this package are mostly useful as optimizations to avoid
// copies of memory buffers when converting between compatible layouts.
package unsafecast

import "unsafe"

// StringToBytes applies the conversion of string to byte slice with no copy
// of the underlying data. The returned slice must be treated as immutable;
// writing through it is undefined behavior.
func StringToBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// BytesToString converts a byte slice to a string value without copying.
// The input must not be mutated for as long as the string is referenced.
func BytesToString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}
