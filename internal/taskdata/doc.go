// Package taskdata provides the input/output descriptor handed to every task.
//
// A TaskData carries ordered input and output buffers, each paired with a
// logical element count. Buffers are borrowed: they wrap a slice owned by the
// caller, so a task writing into an output buffer writes straight into the
// caller's memory.
//
// # Typed buffers
//
// Every Buffer is tagged with the Kind of its elements. Buffers are built
// with the generic Of constructor and read back with Input and Output, which
// return an error instead of reinterpreting memory when the requested element
// type does not match:
//
//	src := []int{5, 3, 1}
//	dst := make([]int, len(src))
//
//	td := taskdata.New()
//	td.AddInput(taskdata.Of(src), len(src))
//	td.AddOutput(taskdata.Of(dst), len(dst))
//
//	in, err := taskdata.Input[int](td, 0)   // []int{5, 3, 1}
//	_, err = taskdata.Input[float64](td, 0) // ErrKindMismatch
//
// # Counts
//
// The pairing len(Inputs) == len(InputsCount) (and likewise for outputs) is
// not enforced by the type. CheckShape reports violations so tasks can reject
// a malformed descriptor during validation.
package taskdata
