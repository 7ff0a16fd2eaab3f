// Package core provides the task lifecycle shared by every algorithm.
//
// A concrete algorithm implements Algorithm: four hooks that validate the
// descriptor, derive private working state from it, run the kernel, and
// write results back. Task wraps one Algorithm and one taskdata.TaskData and
// guarantees the hooks are reached in order.
//
// # Lifecycle
//
//	CREATED --Validate--> VALIDATED --PreProcess--> PRE_PROCESSED
//	        --Run--> RAN --PostProcess--> POST_PROCESSED
//
// A stage that returns false moves the task to FAILED and ends the cycle.
// A kernel that returns false moves it to RUN_FAILED instead: the
// preprocessed state is still intact, so Run may be retried, but PostProcess
// is refused until a Run succeeds.
//
// Validate may be called from any state. It begins a new cycle, which is how
// the same Task bound to the same descriptor is measured repeatedly.
//
// # Stage tokens
//
// Each stage returns a token for the next one, so a caller cannot reach Run
// without holding a PreProcessed value:
//
//	v, ok := task.Validate()
//	if !ok {
//	    return
//	}
//	p, ok := v.PreProcess()
//	if !ok {
//	    return
//	}
//	r, ok := p.Run()
//	if !ok {
//	    return
//	}
//	_, ok = r.PostProcess()
//
// Tokens belong to the cycle that produced them. Once Validate starts a new
// cycle, older tokens are rejected without calling the algorithm.
//
// Failures are reported as false, never as panics or errors.
package core
