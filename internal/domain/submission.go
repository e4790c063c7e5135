package domain

// SubmissionState is the state of a credential change submission
type SubmissionState int

const (
	SubmissionIdle SubmissionState = iota
	SubmissionSubmitting
	SubmissionSucceeded
	SubmissionFailed
)

func (s SubmissionState) String() string {
	switch s {
	case SubmissionIdle:
		return "idle"
	case SubmissionSubmitting:
		return "submitting"
	case SubmissionSucceeded:
		return "succeeded"
	case SubmissionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CanSubmit reports whether a submit is allowed to start from this state
func (s SubmissionState) CanSubmit() bool {
	return s == SubmissionIdle || s == SubmissionFailed
}
