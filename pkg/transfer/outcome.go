package transfer

// Status classifies the result of processing one artifact.
type Status int

const (
	// Uploaded means both the binary and its hash file were written.
	Uploaded Status = iota

	// SkippedExisting means the binary already existed at the
	// destination and no transfer work was done.
	SkippedExisting

	// Failed means the artifact could not be transferred; Outcome.Err
	// carries the reason.
	Failed
)

func (s Status) String() string {
	switch s {
	case Uploaded:
		return "uploaded"
	case SkippedExisting:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of processing one artifact. It is produced once by
// a worker and consumed only by the run summary.
type Outcome struct {
	Version string
	Status  Status
	Err     error
}
