package main

import "fmt"

// Stage names the step of an inspection that failed.
type Stage string

const (
	StageOpen    Stage = "open"
	StageRead    Stage = "read"
	StageExtract Stage = "extract"
)

// AnalysisError is returned on Result.Err when the archive could not be
// opened, read or extracted. The report is still written when it occurs.
type AnalysisError struct {
	Stage Stage
	Path  string
	Err   error
}

func newAnalysisError(stage Stage, path string, err error) *AnalysisError {
	return &AnalysisError{Stage: stage, Path: path, Err: err}
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Cause lets errors.Cause from github.com/pkg/errors see through the stage.
func (e *AnalysisError) Cause() error {
	return e.Err
}
