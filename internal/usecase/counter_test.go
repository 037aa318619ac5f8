package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/naka-gawa/contributor-stats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchMergedPRAuthors(ctx context.Context, owner, repo, branch string) (map[string]int, error) {
	args := m.Called(ctx, owner, repo, branch)
	// We need to handle the case where the returned map is nil (e.g., when an error occurs).
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func TestCounter_Count(t *testing.T) {
	testCases := []struct {
		name             string
		mockBackend      map[string]int
		mockFrontend     map[string]int
		mockBackendErr   error
		mockFrontendErr  error
		expectedResult   []domain.Contribution
		expectedFailures []string
	}{
		{
			name:         "happy path - sums counts across both branches",
			mockBackend:  map[string]int{"alice": 3, "bob": 1},
			mockFrontend: map[string]int{"alice": 2, "bob": 2, "carol": 1},
			expectedResult: []domain.Contribution{
				{Login: "alice", MergedPRs: 5},
				{Login: "bob", MergedPRs: 3},
				{Login: "carol", MergedPRs: 1},
			},
		},
		{
			name:            "partial failure - frontend fails, backend still counts",
			mockBackend:     map[string]int{"alice": 4},
			mockFrontendErr: errors.New("github api error"),
			expectedResult: []domain.Contribution{
				{Login: "alice", MergedPRs: 4},
			},
			expectedFailures: []string{"frontend"},
		},
		{
			name:             "both branches fail - empty result, not an error",
			mockBackendErr:   errors.New("boom"),
			mockFrontendErr:  errors.New("boom"),
			expectedResult:   []domain.Contribution{},
			expectedFailures: []string{"backend", "frontend"},
		},
		{
			name:           "empty case - no merged pull requests",
			mockBackend:    map[string]int{},
			mockFrontend:   map[string]int{},
			expectedResult: []domain.Contribution{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			fetcher := new(mockFetcher)
			fetcher.On("FetchMergedPRAuthors", mock.Anything, "octo", "blog", "backend").Return(tc.mockBackend, tc.mockBackendErr)
			fetcher.On("FetchMergedPRAuthors", mock.Anything, "octo", "blog", "frontend").Return(tc.mockFrontend, tc.mockFrontendErr)
			counter := NewCounter(fetcher, log.New(io.Discard, "", 0))

			// --- Act ---
			report, err := counter.Count(context.Background(), "octo", "blog", []string{"backend", "frontend"})

			// --- Assert ---
			require.NoError(t, err)
			assert.Equal(t, tc.expectedResult, report.Contributors)
			var failed []string
			for _, f := range report.Failures {
				assert.Error(t, f.Err)
				failed = append(failed, f.Branch)
			}
			assert.Equal(t, tc.expectedFailures, failed)
			assert.Equal(t, domain.Summarize(tc.expectedResult), report.Summary)

			fetcher.AssertExpectations(t)
		})
	}
}

func TestCounter_Count_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := new(mockFetcher)
	fetcher.On("FetchMergedPRAuthors", mock.Anything, "octo", "blog", "backend").Return(nil, context.Canceled)
	counter := NewCounter(fetcher, log.New(io.Discard, "", 0))

	report, err := counter.Count(ctx, "octo", "blog", []string{"backend"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report)
}

func TestCounter_Count_NonIncreasing(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchMergedPRAuthors", mock.Anything, "octo", "blog", "backend").
		Return(map[string]int{"a": 1, "b": 7, "c": 3, "d": 3, "e": 9}, nil)
	counter := NewCounter(fetcher, log.New(io.Discard, "", 0))

	report, err := counter.Count(context.Background(), "octo", "blog", []string{"backend"})
	require.NoError(t, err)
	require.Len(t, report.Contributors, 5)
	for i := 1; i < len(report.Contributors); i++ {
		assert.GreaterOrEqual(t, report.Contributors[i-1].MergedPRs, report.Contributors[i].MergedPRs)
	}
}
