// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	// FetchMergedPRAuthors counts merged pull requests per author login
	// for pull requests targeting the given base branch.
	FetchMergedPRAuthors(ctx context.Context, owner, repo, branch string) (map[string]int, error)
}

// NewHTTPClient returns an authenticated client that waits out secondary rate limits.
func NewHTTPClient(token string) (*http.Client, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}, nil
}

// NewFetcher creates the Fetcher for the requested API ("rest" or "graphql").
func NewFetcher(token, api string, logger *log.Logger) (Fetcher, error) {
	httpClient, err := NewHTTPClient(token)
	if err != nil {
		return nil, err
	}
	switch api {
	case "rest", "":
		return &RESTGateway{client: github.NewClient(httpClient), logger: logger}, nil
	case "graphql":
		return &GraphQLGateway{client: githubv4.NewClient(httpClient), logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown api %q", api)
	}
}

// RESTGateway lists pull requests through the REST API.
type RESTGateway struct {
	client *github.Client
	logger *log.Logger
}

func (g *RESTGateway) FetchMergedPRAuthors(ctx context.Context, owner, repo, branch string) (map[string]int, error) {
	g.logger.Printf("Fetching closed pull requests for %s/%s on %s using REST API...", owner, repo, branch)
	opts := &github.PullRequestListOptions{
		State:       "closed",
		Base:        branch,
		Sort:        "created",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	counts := make(map[string]int)
	for {
		prs, resp, err := g.client.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests for branch %s: %w", branch, err)
		}
		for _, pr := range prs {
			// Closed-but-unmerged pull requests have no merge timestamp.
			if pr.MergedAt == nil {
				continue
			}
			if login := pr.GetUser().GetLogin(); login != "" {
				counts[login]++
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Println("  Fetching next page of pull requests...")
	}
	g.logger.Printf("Completed fetching pull requests for %s.", branch)
	return counts, nil
}

// GraphQLGateway lists merged pull requests through the GraphQL API.
type GraphQLGateway struct {
	client *githubv4.Client
	logger *log.Logger
}

// mergedPRsQuery selects the author of every merged pull request on a base branch.
type mergedPRsQuery struct {
	Repository struct {
		PullRequests struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				Author struct {
					Login string
				}
			}
		} `graphql:"pullRequests(baseRefName: $branch, states: [MERGED], first: 100, after: $cursor)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

func (g *GraphQLGateway) FetchMergedPRAuthors(ctx context.Context, owner, repo, branch string) (map[string]int, error) {
	g.logger.Printf("Fetching merged pull requests for %s/%s on %s using GraphQL API...", owner, repo, branch)
	variables := map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(repo),
		"branch": githubv4.String(branch),
		"cursor": (*githubv4.String)(nil),
	}
	counts := make(map[string]int)
	for {
		var q mergedPRsQuery
		if err := g.client.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for branch %s: %w", branch, err)
		}
		for _, node := range q.Repository.PullRequests.Nodes {
			// Deleted accounts come back with a null author.
			if login := node.Author.Login; login != "" {
				counts[login]++
			}
		}
		if !q.Repository.PullRequests.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Repository.PullRequests.PageInfo.EndCursor)
		g.logger.Println("  Fetching next page of pull requests...")
	}
	g.logger.Printf("Completed fetching pull requests for %s.", branch)
	return counts, nil
}
