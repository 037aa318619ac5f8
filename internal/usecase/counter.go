// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"log"

	"github.com/naka-gawa/contributor-stats/internal/domain"
	"github.com/naka-gawa/contributor-stats/internal/gateway"
	"golang.org/x/sync/errgroup"
)

// Counter is the use case for tallying merged pull requests per author.
type Counter struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
}

// NewCounter creates a new Counter instance.
func NewCounter(fetcher gateway.Fetcher, logger *log.Logger) *Counter {
	return &Counter{
		fetcher: fetcher,
		logger:  logger,
	}
}

// branchResult is the outcome of fetching a single branch.
// Exactly one of counts or err is set.
type branchResult struct {
	branch string
	counts map[string]int
	err    error
}

// Count fetches every branch concurrently and sums the per-author counts.
// A branch that fails is recorded in Report.Failures and skipped; the
// returned error is only non-nil when ctx is done.
func (c *Counter) Count(ctx context.Context, owner, repo string, branches []string) (*domain.Report, error) {
	c.logger.Println("Usecase: Starting contributor count...")

	results := make([]branchResult, len(branches))

	// A plain Group rather than WithContext: one failing branch must not
	// cancel the others.
	var eg errgroup.Group
	for i, branch := range branches {
		eg.Go(func() error {
			counts, err := c.fetcher.FetchMergedPRAuthors(ctx, owner, repo, branch)
			results[i] = branchResult{branch: branch, counts: counts, err: err}
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := mergeBranchResults(results)
	for _, f := range report.Failures {
		c.logger.Printf("Warning: Could not fetch %s PRs: %v", f.Branch, f.Err)
	}
	c.logger.Printf("Usecase: Count complete, %d contributors.", len(report.Contributors))
	return report, nil
}

// mergeBranchResults sums the counts of every successful branch.
func mergeBranchResults(results []branchResult) *domain.Report {
	totals := make(map[string]int)
	report := &domain.Report{Contributors: []domain.Contribution{}}
	for _, r := range results {
		if r.err != nil {
			report.Failures = append(report.Failures, domain.BranchFailure{Branch: r.branch, Err: r.err})
			continue
		}
		for login, n := range r.counts {
			totals[login] += n
		}
	}
	for login, n := range totals {
		report.Contributors = append(report.Contributors, domain.Contribution{Login: login, MergedPRs: n})
	}
	domain.SortContributions(report.Contributors)
	report.Summary = domain.Summarize(report.Contributors)
	return report
}
