package model

// Outcome records the result of fetching one target.
type Outcome struct {
	Target    DownloadTarget
	Succeeded bool
	SizeBytes int64  // Bytes written, only meaningful on success
	Mirror    string // Mirror that served the file
	Identity  string // Identity the mirror accepted
}

// RunSummary aggregates one update run. MissingRequired is computed from
// a fresh filesystem check after all targets were attempted, not from
// the in-memory outcomes, so the verdict survives external interference.
type RunSummary struct {
	RunID           string
	Outcomes        []Outcome
	SuccessCount    int
	FailCount       int
	MissingRequired []string
}

// Succeeded reports whether every required file is present after the
// run. Optional-file failures never change the verdict.
func (s *RunSummary) Succeeded() bool {
	return len(s.MissingRequired) == 0
}

// RequiredFailedCount returns the number of required files absent after
// the run.
func (s *RunSummary) RequiredFailedCount() int {
	return len(s.MissingRequired)
}

// TotalCount returns the number of targets attempted.
func (s *RunSummary) TotalCount() int {
	return len(s.Outcomes)
}
