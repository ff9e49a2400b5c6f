package compile

import "fmt"

// CompilationError represents a LaTeX compilation failure. LogOutput carries the compiler's
// diagnostic text when one was produced; StatusCode is set for remote HTTP failures.
type CompilationError struct {
	Message    string
	StatusCode int
	LogOutput  string
	Cause      error
}

func (e *CompilationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("LaTeX compilation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("LaTeX compilation error: %s", e.Message)
}

func (e *CompilationError) Unwrap() error {
	return e.Cause
}
