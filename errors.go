package chessgrid

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for a wrong number of points, non-positive sizes or grid dimensions.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDegenerateGeometry is returned when the corners do not admit a projective transform.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrUnreadableImage is returned when a source image cannot be decoded.
	ErrUnreadableImage = errors.New("unreadable image")
)

// Pipeline stage names used in StageError.
const (
	StageLoad     = "load"
	StageOrder    = "order"
	StageRectify  = "rectify"
	StageClassify = "classify"
)

// StageError tags a failure with the pipeline stage that produced it so a caller
// can decide what to ask the user for again (new points, a new image, ...).
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
