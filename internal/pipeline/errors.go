package pipeline

import "fmt"

// Stage names a step of a generation.
type Stage string

const (
	StageParse    Stage = "parse"
	StageTailor   Stage = "tailor"
	StageGenerate Stage = "generate"
	StageCompile  Stage = "compile"
	StageStore    Stage = "store"
	StagePersist  Stage = "persist"
)

// StageError reports which stage of a generation failed.
type StageError struct {
	Stage    Stage
	Template string
	Cause    error
}

func (e *StageError) Error() string {
	if e.Template != "" {
		return fmt.Sprintf("%s stage failed for template %s: %v", e.Stage, e.Template, e.Cause)
	}
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}
