package stage

import (
	"errors"
	"fmt"
)

// ErrUnnamedTarget rejects a target with an empty name.
var ErrUnnamedTarget = errors.New("target has no name")

// PipelineError reports a failed pipeline stage for one target.
type PipelineError struct {
	Target string
	Stage  string
	Err    error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("target %s: stage %s: %v", e.Target, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
