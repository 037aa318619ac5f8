// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"encoding/json"
	"sort"

	"github.com/montanaflynn/stats"
)

// Contribution holds the number of merged pull requests attributed to one author.
// It is the core domain entity of this application.
type Contribution struct {
	Login     string `json:"login"`
	MergedPRs int    `json:"merged_prs"`
}

// BranchFailure records a branch whose pull requests could not be fetched.
type BranchFailure struct {
	Branch string `json:"branch"`
	Err    error  `json:"-"`
}

// MarshalJSON renders the error as its message.
func (f BranchFailure) MarshalJSON() ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		Branch string `json:"branch"`
		Error  string `json:"error"`
	}{f.Branch, msg})
}

// Summary describes the distribution of merge counts across contributors.
type Summary struct {
	Contributors int     `json:"contributors"`
	MergedPRs    int     `json:"merged_prs"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
}

// Report is the outcome of a counting run.
type Report struct {
	Contributors []Contribution  `json:"contributors"`
	Failures     []BranchFailure `json:"failures,omitempty"`
	Summary      Summary         `json:"summary"`
}

// Empty reports whether no merged pull requests were found.
func (r *Report) Empty() bool {
	return r == nil || len(r.Contributors) == 0
}

// SortContributions orders contributions by merge count, highest first.
// Ties are ordered by login so the rendered output is stable between runs.
func SortContributions(cs []Contribution) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].MergedPRs != cs[j].MergedPRs {
			return cs[i].MergedPRs > cs[j].MergedPRs
		}
		return cs[i].Login < cs[j].Login
	})
}

// Summarize computes the summary statistics for a set of contributions.
func Summarize(cs []Contribution) Summary {
	if len(cs) == 0 {
		return Summary{}
	}
	counts := make(stats.Float64Data, 0, len(cs))
	for _, c := range cs {
		counts = append(counts, float64(c.MergedPRs))
	}
	// stats only fails on empty input, which is excluded above.
	total, _ := counts.Sum()
	mean, _ := counts.Mean()
	median, _ := counts.Median()
	return Summary{
		Contributors: len(cs),
		MergedPRs:    int(total),
		Mean:         mean,
		Median:       median,
	}
}

// Artifact is the rendered presentation of a contributor list.
// Markup is embedded in the target document; Assets are written beside it.
type Artifact struct {
	Markup string
	Assets []Asset
}

// Asset is a generated file referenced by an artifact's markup.
type Asset struct {
	Path    string
	Content []byte
}
