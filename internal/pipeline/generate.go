// Package pipeline runs resume generations: template snapshot, optional tailoring, document
// generation, compilation, PDF storage and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-forge/internal/compile"
	"github.com/jonathan/resume-forge/internal/llm"
	"github.com/jonathan/resume-forge/internal/rendering"
	"github.com/jonathan/resume-forge/internal/rewriting"
	"github.com/jonathan/resume-forge/internal/storage"
	"github.com/jonathan/resume-forge/internal/types"
)

// DefaultConcurrency bounds parallel generations in RunBatch.
const DefaultConcurrency = 4

// Store persists generation records.
type Store interface {
	CreateGeneration(ctx context.Context, g *types.Generation) error
	UpdateGeneration(ctx context.Context, g *types.Generation) error
	IncrementGenerations(ctx context.Context, userID string) error
}

// Tailor rewrites a resume against a job description.
type Tailor interface {
	Tailor(ctx context.Context, resume *types.Resume, jobDescription string) (*types.Resume, error)
}

// LLMTailor tailors resumes with a language model.
type LLMTailor struct {
	Client llm.Client
}

func (t LLMTailor) Tailor(ctx context.Context, resume *types.Resume, jobDescription string) (*types.Resume, error) {
	return rewriting.TailorResume(ctx, t.Client, resume, jobDescription)
}

// ProgressEvent represents a progress update during a generation
type ProgressEvent struct {
	Stage        Stage     `json:"stage"`
	Message      string    `json:"message"`
	GenerationID uuid.UUID `json:"generation_id"`
	Template     string    `json:"template,omitempty"`
}

// ProgressCallback is called when a generation reaches a new stage. RunBatch calls it from
// several goroutines.
type ProgressCallback func(event ProgressEvent)

// TemplateRef names a template and carries its source text.
type TemplateRef struct {
	Name   string
	Source string
}

// Request describes one generation.
type Request struct {
	UserID         string
	ProfileID      *uuid.UUID
	Template       TemplateRef
	Resume         *types.Resume
	JobDescription string
}

// Result is the outcome of a generation. PDF is nil when no compiler is configured.
type Result struct {
	Generation *types.Generation
	PDF        []byte
}

// Generator runs generations. Every collaborator except the template parser and document
// generator is optional: without a Store nothing is persisted, without a Compiler only the
// document is produced, without Objects the PDF is returned but not stored, and without a
// Tailor job descriptions are recorded but not applied.
type Generator struct {
	Store        Store
	Compiler     compile.Compiler
	Objects      storage.ObjectStore
	Tailor       Tailor
	EscapeValues bool
	Concurrency  int
	Logger       logrus.FieldLogger
	OnProgress   ProgressCallback
}

// Run performs one generation. On failure the returned Result still carries the generation
// record, marked failed, when one was created; the error is a *StageError.
func (g *Generator) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	logger := g.logger().WithFields(logrus.Fields{"user_id": req.UserID, "template": req.Template.Name})

	tmpl, err := rendering.ParseSource(req.Template.Source)
	if err != nil {
		return nil, g.stageError(StageParse, req, err)
	}
	if req.Resume == nil {
		return nil, g.stageError(StageGenerate, req, rendering.ErrMissingResume)
	}

	gen := &types.Generation{
		ID:             uuid.New(),
		UserID:         req.UserID,
		ProfileID:      req.ProfileID,
		TemplateName:   req.Template.Name,
		TemplateSource: req.Template.Source,
		JobDescription: req.JobDescription,
		Resume:         *req.Resume.Clone(),
		Status:         types.GenerationPending,
	}
	logger = logger.WithField("generation_id", gen.ID)

	if g.Store != nil {
		if err := g.Store.CreateGeneration(ctx, gen); err != nil {
			return nil, g.stageError(StagePersist, req, err)
		}
	}
	logger.Info("generation started")

	result := &Result{Generation: gen}
	if err := g.execute(ctx, tmpl, gen, result, logger); err != nil {
		gen.Status = types.GenerationFailed
		gen.Error = err.Error()
		g.persistOutcome(ctx, gen, logger)

		var stageErr *StageError
		if errors.As(err, &stageErr) {
			logger = logger.WithField("stage", stageErr.Stage)
		}
		logger.WithError(err).Warn("generation failed")
		return result, err
	}

	gen.Status = types.GenerationCompleted
	if g.Store != nil {
		if err := g.Store.UpdateGeneration(ctx, gen); err != nil {
			return result, g.stageError(StagePersist, req, err)
		}
		if err := g.Store.IncrementGenerations(ctx, gen.UserID); err != nil {
			logger.WithError(err).Warn("failed to count generation against plan")
		}
	}

	logger.WithField("duration", time.Since(start)).Info("generation completed")
	g.emit(StagePersist, gen, "generation completed")
	return result, nil
}

func (g *Generator) execute(ctx context.Context, tmpl *rendering.Template, gen *types.Generation, result *Result, logger logrus.FieldLogger) error {
	req := Request{Template: TemplateRef{Name: gen.TemplateName}}

	if gen.JobDescription != "" && g.Tailor != nil {
		g.emit(StageTailor, gen, "tailoring resume to job description")
		tailored, err := g.Tailor.Tailor(ctx, &gen.Resume, gen.JobDescription)
		if err != nil {
			return g.stageError(StageTailor, req, err)
		}
		gen.Resume = *tailored
	}

	input := &gen.Resume
	if g.EscapeValues {
		input = rendering.EscapeResume(input)
	}

	g.emit(StageGenerate, gen, "generating document")
	document, err := rendering.Generate(tmpl, input)
	if err != nil {
		return g.stageError(StageGenerate, req, err)
	}
	gen.Document = document

	if g.Compiler == nil {
		return nil
	}

	g.emit(StageCompile, gen, "compiling document")
	pdf, err := g.Compiler.Compile(ctx, document)
	if err != nil {
		return g.stageError(StageCompile, req, err)
	}
	result.PDF = pdf
	logger.WithField("pdf_bytes", len(pdf)).Debug("document compiled")

	if g.Objects == nil {
		return nil
	}

	g.emit(StageStore, gen, "storing PDF")
	key := storage.GenerationKey(gen.UserID, gen.ID.String())
	if err := g.Objects.Put(ctx, key, pdf, storage.PDFContentType); err != nil {
		return g.stageError(StageStore, req, err)
	}
	gen.PDFKey = key
	return nil
}

// persistOutcome records a failure even when ctx has been canceled.
func (g *Generator) persistOutcome(ctx context.Context, gen *types.Generation, logger logrus.FieldLogger) {
	if g.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := g.Store.UpdateGeneration(ctx, gen); err != nil {
		logger.WithError(err).Error("failed to record generation failure")
	}
}

// BatchResult pairs a template with its generation outcome.
type BatchResult struct {
	Template string
	Result   *Result
	Err      error
}

// RunBatch generates req's resume under every template concurrently. Results keep the order of
// templates. A failed template does not stop the others; the returned error joins every failure.
func (g *Generator) RunBatch(ctx context.Context, req Request, templates []TemplateRef) ([]BatchResult, error) {
	if len(templates) == 0 {
		return nil, fmt.Errorf("at least one template is required")
	}

	limit := g.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([]BatchResult, len(templates))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for i, ref := range templates {
		eg.Go(func() error {
			r := req
			r.Template = ref
			res, err := g.Run(egCtx, r)
			results[i] = BatchResult{Template: ref.Name, Result: res, Err: err}
			return nil
		})
	}
	_ = eg.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}

func (g *Generator) stageError(stage Stage, req Request, err error) error {
	return &StageError{Stage: stage, Template: req.Template.Name, Cause: err}
}

func (g *Generator) emit(stage Stage, gen *types.Generation, message string) {
	if g.OnProgress != nil {
		g.OnProgress(ProgressEvent{Stage: stage, Message: message, GenerationID: gen.ID, Template: gen.TemplateName})
	}
}

func (g *Generator) logger() logrus.FieldLogger {
	if g.Logger == nil {
		return logrus.StandardLogger()
	}
	return g.Logger
}
