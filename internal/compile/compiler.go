// Package compile turns generated LaTeX documents into PDF bytes.
package compile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultRemoteURL is the public build endpoint used when none is configured.
const DefaultRemoteURL = "https://latex.ytotech.com/builds/sync"

// DefaultEngine is the LaTeX engine requested from the remote service.
const DefaultEngine = "pdflatex"

// maxLogBytes bounds how much of a failed response is kept as diagnostic output.
const maxLogBytes = 64 << 10

// Compiler compiles a complete LaTeX document into a PDF.
// Implementations do not retry; callers own timeouts and retry policy.
type Compiler interface {
	Compile(ctx context.Context, document string) ([]byte, error)
}

// buildRequest is the remote service's request body.
type buildRequest struct {
	Compiler  string          `json:"compiler"`
	Resources []buildResource `json:"resources"`
}

type buildResource struct {
	Main    bool   `json:"main"`
	Content string `json:"content"`
}

// RemoteCompiler posts documents to an HTTP build service.
type RemoteCompiler struct {
	url    string
	engine string
	client *http.Client
}

// NewRemoteCompiler creates a RemoteCompiler. Empty url and engine select the defaults;
// a nil client gets a 60 second timeout.
func NewRemoteCompiler(url, engine string, client *http.Client) *RemoteCompiler {
	if url == "" {
		url = DefaultRemoteURL
	}
	if engine == "" {
		engine = DefaultEngine
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &RemoteCompiler{url: url, engine: engine, client: client}
}

// Engine returns the LaTeX engine requested from the build service.
func (c *RemoteCompiler) Engine() string { return c.engine }

// Compile sends document as the main resource and returns the PDF body.
// Any non-2xx response is a *CompilationError carrying the response body as LogOutput.
func (c *RemoteCompiler) Compile(ctx context.Context, document string) ([]byte, error) {
	body, err := json.Marshal(buildRequest{
		Compiler:  c.engine,
		Resources: []buildResource{{Main: true, Content: document}},
	})
	if err != nil {
		return nil, &CompilationError{Message: "failed to encode build request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &CompilationError{Message: "failed to create build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &CompilationError{Message: "build request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logOutput, _ := io.ReadAll(io.LimitReader(resp.Body, maxLogBytes))
		return nil, &CompilationError{
			Message:    fmt.Sprintf("build service returned HTTP %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
			LogOutput:  string(logOutput),
		}
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &CompilationError{Message: "failed to read PDF response", Cause: err}
	}
	if len(pdf) == 0 {
		return nil, &CompilationError{Message: "build service returned an empty document"}
	}
	return pdf, nil
}
