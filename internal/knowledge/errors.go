package knowledge

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned for blank queries and other empty caller input.
var ErrEmptyInput = errors.New("empty input")

// Stage names the step of the ingest or retrieval pipeline that failed.
type Stage string

const (
	StageEmbed   Stage = "embed"
	StageIndex   Stage = "index"
	StageSearch  Stage = "search"
	StagePersist Stage = "persist"
)

// StageError wraps a backend failure with the pipeline stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
