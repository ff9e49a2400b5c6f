package ingestion

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-forge/internal/fetch"
	"github.com/jonathan/resume-forge/internal/llm"
	"github.com/jonathan/resume-forge/internal/prompts"
)

// ErrNoJobDescription is returned when neither text nor a URL is given.
var ErrNoJobDescription = errors.New("job description text or URL is required")

// ErrEmptyPosting is returned when a fetched page yields no job description text.
var ErrEmptyPosting = errors.New("no job description text found")

// Ingester turns job description input into a Posting.
type Ingester struct {
	// Client, when set, strips leftover page noise from scraped postings.
	Client llm.Client
	// UseBrowser enables the headless browser retry for pages that render client-side.
	UseBrowser     bool
	BrowserTimeout time.Duration
	Fetch          *fetch.Options
	Logger         logrus.FieldLogger

	render func(ctx context.Context, url string, timeout time.Duration, logger logrus.FieldLogger) (string, error)
}

// JobDescription returns a Posting for the given text, or for the page at url when text is
// blank. Text always wins when both are given; url is then only recorded.
func (in *Ingester) JobDescription(ctx context.Context, text, url string) (*Posting, error) {
	text = CleanText(text)
	url = strings.TrimSpace(url)
	if text != "" {
		posting := NewPosting(text, url)
		posting.Platform = string(fetch.DetectPlatform(url))
		return posting, nil
	}
	if url == "" {
		return nil, ErrNoJobDescription
	}
	return in.fromURL(ctx, url)
}

func (in *Ingester) fromURL(ctx context.Context, url string) (*Posting, error) {
	logger := in.logger().WithField("url", url)
	platform := fetch.DetectPlatform(url)
	logger = logger.WithField("platform", platform)

	result, err := fetch.URL(ctx, url, in.Fetch)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch job posting")
	}

	text, err := fetch.JobText(result.HTML, platform)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract job posting text")
	}
	logger.WithField("chars", len(text)).Debug("extracted job posting text")

	if in.UseBrowser && fetch.ShouldUseBrowser(text) {
		text = in.browserRetry(ctx, url, platform, text, logger)
	}

	text = CleanText(text)
	if in.Client != nil {
		text = in.tidy(ctx, text, logger)
	}
	if text == "" {
		return nil, errors.Wrapf(ErrEmptyPosting, "page %s", url)
	}

	posting := NewPosting(text, url)
	posting.Platform = string(platform)
	return posting, nil
}

// browserRetry re-renders url in a headless browser. The HTTP text is kept when rendering fails.
func (in *Ingester) browserRetry(ctx context.Context, url string, platform fetch.Platform, text string, logger logrus.FieldLogger) string {
	logger.WithField("chars", len(text)).Info("job posting text too short, retrying with browser")

	render := in.render
	if render == nil {
		render = fetch.WithBrowser
	}
	html, err := render(ctx, url, in.BrowserTimeout, logger)
	if err != nil {
		logger.WithError(err).Warn("browser rendering failed, using HTTP content")
		return text
	}

	rendered, err := fetch.JobText(html, platform)
	if err != nil {
		logger.WithError(err).Warn("browser content extraction failed, using HTTP content")
		return text
	}
	return rendered
}

// tidy asks the model to drop page noise. Any failure keeps the scraped text.
func (in *Ingester) tidy(ctx context.Context, text string, logger logrus.FieldLogger) string {
	if text == "" {
		return text
	}
	prompt, err := prompts.Render(prompts.ResumeFile, prompts.KeyCleanJobPosting, map[string]string{"Text": text})
	if err != nil {
		logger.WithError(err).Warn("job posting prompt unavailable")
		return text
	}

	cleaned, err := in.Client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		logger.WithError(err).Warn("job posting cleanup failed, using scraped text")
		return text
	}
	if cleaned = CleanText(cleaned); cleaned == "" {
		return text
	}
	return cleaned
}

func (in *Ingester) logger() logrus.FieldLogger {
	if in.Logger == nil {
		return logrus.StandardLogger()
	}
	return in.Logger
}
