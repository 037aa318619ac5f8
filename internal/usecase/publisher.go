package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/naka-gawa/contributor-stats/internal/domain"
	"github.com/naka-gawa/contributor-stats/internal/render"
)

// DocumentUpdater patches the marker block of the target document.
type DocumentUpdater interface {
	Update(path string, artifact domain.Artifact) error
	Render(path, markup string) (string, error)
}

// PublishInput names the repository to count and the document to patch.
type PublishInput struct {
	Owner      string
	Repo       string
	Branches   []string
	TargetFile string
	// DryRun renders the document without touching the filesystem.
	DryRun bool
}

// PublishResult is what a run produced.
type PublishResult struct {
	Report *domain.Report
	// Document holds the rendered document in dry-run mode.
	Document string
	Written  bool
}

// Publisher runs the counter, renderer and updater in sequence.
type Publisher struct {
	counter  *Counter
	renderer render.Renderer
	updater  DocumentUpdater
	logger   *log.Logger
}

// NewPublisher creates a new Publisher instance.
func NewPublisher(counter *Counter, renderer render.Renderer, updater DocumentUpdater, logger *log.Logger) *Publisher {
	return &Publisher{
		counter:  counter,
		renderer: renderer,
		updater:  updater,
		logger:   logger,
	}
}

// Publish counts contributors and refreshes the target document.
// When no contributors are found nothing is rendered or written.
func (p *Publisher) Publish(ctx context.Context, in PublishInput) (*PublishResult, error) {
	report, err := p.counter.Count(ctx, in.Owner, in.Repo, in.Branches)
	if err != nil {
		return nil, fmt.Errorf("failed to count contributors: %w", err)
	}
	result := &PublishResult{Report: report}
	if report.Empty() {
		p.logger.Println("Usecase: No contributors found, leaving document untouched.")
		return result, nil
	}

	artifact, err := p.renderer.Render(ctx, report.Contributors)
	if err != nil {
		return nil, err
	}

	if in.DryRun {
		result.Document, err = p.updater.Render(in.TargetFile, artifact.Markup)
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	if err := p.updater.Update(in.TargetFile, artifact); err != nil {
		return nil, err
	}
	result.Written = true
	return result, nil
}
