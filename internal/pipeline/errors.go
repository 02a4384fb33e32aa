// Package pipeline orchestrates the preprocessing run: reading the source
// tables, cleaning and normalizing the transactions, enriching them with
// the contextual layers and exporting the feature table.
package pipeline

import "fmt"

// ErrorKind classifies a stage failure.
type ErrorKind string

const (
	// ErrorKindConfig covers missing files, malformed tables and other
	// misconfigurations detected while loading inputs.
	ErrorKindConfig ErrorKind = "config"
	// ErrorKindData covers semantic violations in otherwise readable
	// data, such as an unmapped pricing zone or a zero index base.
	ErrorKindData ErrorKind = "data"
	// ErrorKindExecution covers runtime failures inside a stage.
	ErrorKindExecution ErrorKind = "execution"
)

// StageError wraps a stage failure with the stage name and a kind. The run
// aborts on the first stage error; there is no partial output.
type StageError struct {
	Stage string
	Kind  ErrorKind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("[%s] stage %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage string, kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Kind: kind, Err: err}
}
