package taskdata

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned when a buffer index has no entry.
	ErrIndexOutOfRange = errors.New("buffer index out of range")

	// ErrKindMismatch is returned when a buffer is read as the wrong element type.
	ErrKindMismatch = errors.New("buffer kind mismatch")

	// ErrNilBuffer is returned when a descriptor slot holds no buffer.
	ErrNilBuffer = errors.New("nil buffer")
)

// TaskData is the input/output descriptor shared by a driver and its tasks.
//
// InputsCount[i] and OutputsCount[i] give the logical element count of
// Inputs[i] and Outputs[i]. A task may read at most InputsCount[i] elements
// and write at most OutputsCount[i] elements.
type TaskData struct {
	Inputs       []Buffer
	InputsCount  []int
	Outputs      []Buffer
	OutputsCount []int
}

// New creates an empty descriptor.
func New() *TaskData {
	return &TaskData{}
}

// AddInput appends an input buffer together with its count.
func (td *TaskData) AddInput(b Buffer, count int) *TaskData {
	td.Inputs = append(td.Inputs, b)
	td.InputsCount = append(td.InputsCount, count)
	return td
}

// AddOutput appends an output buffer together with its count.
func (td *TaskData) AddOutput(b Buffer, count int) *TaskData {
	td.Outputs = append(td.Outputs, b)
	td.OutputsCount = append(td.OutputsCount, count)
	return td
}

// ShapeError describes a malformed descriptor.
type ShapeError struct {
	Side    string // "input" or "output"
	Index   int    // -1 when the error concerns the whole side
	Message string
}

func (e *ShapeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Side, e.Message)
	}
	return fmt.Sprintf("%s[%d]: %s", e.Side, e.Index, e.Message)
}

// CheckShape reports the first structural problem in td, or nil.
//
// It checks that buffers and counts pair up, that no buffer is nil, and
// that no count is negative or larger than its buffer.
func (td *TaskData) CheckShape() error {
	if td == nil {
		return &ShapeError{Side: "descriptor", Index: -1, Message: "nil task data"}
	}
	if err := checkSide("input", td.Inputs, td.InputsCount); err != nil {
		return err
	}
	return checkSide("output", td.Outputs, td.OutputsCount)
}

func checkSide(side string, bufs []Buffer, counts []int) error {
	if len(bufs) != len(counts) {
		return &ShapeError{
			Side:    side,
			Index:   -1,
			Message: fmt.Sprintf("%d buffers but %d counts", len(bufs), len(counts)),
		}
	}
	for i, b := range bufs {
		if b == nil {
			return &ShapeError{Side: side, Index: i, Message: "nil buffer"}
		}
		if counts[i] < 0 {
			return &ShapeError{Side: side, Index: i, Message: fmt.Sprintf("negative count %d", counts[i])}
		}
		if counts[i] > b.Len() {
			return &ShapeError{
				Side:    side,
				Index:   i,
				Message: fmt.Sprintf("count %d exceeds buffer length %d", counts[i], b.Len()),
			}
		}
	}
	return nil
}

// Input returns input i as []T, truncated to InputsCount[i].
func Input[T Element](td *TaskData, i int) ([]T, error) {
	return view[T]("input", td.Inputs, td.InputsCount, i)
}

// Output returns output i as []T, truncated to OutputsCount[i].
// Writes into the returned slice land in the caller's buffer.
func Output[T Element](td *TaskData, i int) ([]T, error) {
	return view[T]("output", td.Outputs, td.OutputsCount, i)
}

func view[T Element](side string, bufs []Buffer, counts []int, i int) ([]T, error) {
	if i < 0 || i >= len(bufs) || i >= len(counts) {
		return nil, fmt.Errorf("%s[%d]: %w", side, i, ErrIndexOutOfRange)
	}
	b := bufs[i]
	if b == nil {
		return nil, fmt.Errorf("%s[%d]: %w", side, i, ErrNilBuffer)
	}
	data, ok := As[T](b)
	if !ok {
		return nil, fmt.Errorf("%s[%d]: %w: have %s, want %s", side, i, ErrKindMismatch, b.Kind(), KindOf[T]())
	}
	n := counts[i]
	if n < 0 || n > len(data) {
		return nil, fmt.Errorf("%s[%d]: %w", side, i, &ShapeError{
			Side:    side,
			Index:   i,
			Message: fmt.Sprintf("count %d outside buffer length %d", n, len(data)),
		})
	}
	return data[:n], nil
}
