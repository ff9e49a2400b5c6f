package compile

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultLocalTimeout is the maximum time to wait for a local LaTeX run.
const DefaultLocalTimeout = 30 * time.Second

// LocalCompiler runs a LaTeX engine installed on this machine.
type LocalCompiler struct {
	engine  string
	timeout time.Duration
}

// NewLocalCompiler creates a LocalCompiler for engine. An empty engine uses pdflatex.
func NewLocalCompiler(engine string, timeout time.Duration) *LocalCompiler {
	if engine == "" {
		engine = DefaultEngine
	}
	if timeout <= 0 {
		timeout = DefaultLocalTimeout
	}
	return &LocalCompiler{engine: engine, timeout: timeout}
}

// Engine returns the LaTeX engine binary name.
func (c *LocalCompiler) Engine() string { return c.engine }

// Compile writes document into a scratch directory, runs the engine there and returns the PDF.
// The scratch directory is always removed.
func (c *LocalCompiler) Compile(ctx context.Context, document string) ([]byte, error) {
	if _, err := exec.LookPath(c.engine); err != nil {
		return nil, &CompilationError{
			Message: c.engine + " not found in PATH. Please install a LaTeX distribution (e.g., TeX Live, MiKTeX)",
			Cause:   err,
		}
	}

	workDir, err := os.MkdirTemp("", "latex-compile-*")
	if err != nil {
		return nil, &CompilationError{Message: "failed to create temporary working directory", Cause: err}
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	texPath := filepath.Join(workDir, "resume.tex")
	if err := os.WriteFile(texPath, []byte(document), 0o644); err != nil {
		return nil, &CompilationError{Message: "failed to write LaTeX file to working directory", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// -interaction=nonstopmode keeps the engine from waiting on stdin
	cmd := exec.CommandContext(ctx, c.engine, "-interaction=nonstopmode", "-output-directory", workDir, texPath)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	logOutput := stdout.String() + stderr.String()

	pdf, err := os.ReadFile(filepath.Join(workDir, "resume.pdf"))
	if err != nil {
		return nil, &CompilationError{
			Message:   "LaTeX compilation failed: PDF was not generated",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}

	// LaTeX can write a PDF and still exit non-zero; a partial document is still a failure here.
	if runErr != nil {
		return nil, &CompilationError{
			Message:   "LaTeX compilation completed with errors (PDF may be incomplete)",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}

	return pdf, nil
}
