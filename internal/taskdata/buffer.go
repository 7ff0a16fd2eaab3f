package taskdata

import "fmt"

// Kind identifies the element type stored in a Buffer.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUint8
	KindInt
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
)

var kindNames = map[Kind]string{
	KindInvalid: "invalid",
	KindUint8:   "uint8",
	KindInt:     "int",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindFloat32: "float32",
	KindFloat64: "float64",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Element is the set of element types a Buffer can carry.
type Element interface {
	uint8 | int | int32 | int64 | float32 | float64
}

// KindOf returns the Kind tag for element type T.
func KindOf[T Element]() Kind {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return KindUint8
	case int:
		return KindInt
	case int32:
		return KindInt32
	case int64:
		return KindInt64
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	default:
		return KindInvalid
	}
}

// Buffer is a borrowed, kind-tagged view over a caller-owned slice.
type Buffer interface {
	Kind() Kind
	// Len is the number of elements the underlying slice can hold.
	Len() int
}

// Slice is the Buffer implementation for element type T.
// It shares its backing array with the slice it was built from.
type Slice[T Element] []T

// Of wraps data as a Buffer without copying.
func Of[T Element](data []T) Buffer {
	return Slice[T](data)
}

func (s Slice[T]) Kind() Kind { return KindOf[T]() }

func (s Slice[T]) Len() int { return len(s) }

// As returns the slice behind b if it holds elements of type T.
func As[T Element](b Buffer) ([]T, bool) {
	s, ok := b.(Slice[T])
	if !ok {
		return nil, false
	}
	return []T(s), true
}
