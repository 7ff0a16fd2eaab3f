package core

// State is the lifecycle position of a Task within its current cycle.
type State string

const (
	StateCreated       State = "CREATED"
	StateValidated     State = "VALIDATED"
	StatePreProcessed  State = "PRE_PROCESSED"
	StateRan           State = "RAN"
	StatePostProcessed State = "POST_PROCESSED"
	StateRunFailed     State = "RUN_FAILED"
	StateFailed        State = "FAILED"
)

// Stage names one of the four lifecycle hooks.
type Stage string

const (
	StageValidation     Stage = "validation"
	StagePreProcessing  Stage = "pre_processing"
	StageRun            Stage = "run"
	StagePostProcessing Stage = "post_processing"
)

// canEnter reports whether stage may start while the task is in state from.
func canEnter(stage Stage, from State) bool {
	switch stage {
	case StageValidation:
		return true
	case StagePreProcessing:
		return from == StateValidated
	case StageRun:
		return from == StatePreProcessed || from == StateRan || from == StateRunFailed
	case StagePostProcessing:
		return from == StateRan
	default:
		return false
	}
}

// outcome returns the state a stage leaves behind.
func outcome(stage Stage, ok bool) State {
	switch stage {
	case StageValidation:
		if ok {
			return StateValidated
		}
	case StagePreProcessing:
		if ok {
			return StatePreProcessed
		}
	case StageRun:
		if ok {
			return StateRan
		}
		return StateRunFailed
	case StagePostProcessing:
		if ok {
			return StatePostProcessed
		}
	}
	return StateFailed
}

// StageCounts records how many times each hook was invoked.
type StageCounts struct {
	Validation     int
	PreProcessing  int
	Run            int
	PostProcessing int
}

// Total is the number of hook invocations across all stages.
func (c StageCounts) Total() int {
	return c.Validation + c.PreProcessing + c.Run + c.PostProcessing
}

func (c *StageCounts) add(stage Stage) {
	switch stage {
	case StageValidation:
		c.Validation++
	case StagePreProcessing:
		c.PreProcessing++
	case StageRun:
		c.Run++
	case StagePostProcessing:
		c.PostProcessing++
	}
}
