package cli

import (
	"testing"

	"github.com/dbtx/dbtx/artifacts"
)

func TestSummarizeRun(t *testing.T) {
	cases := []struct {
		name    string
		results artifacts.RunResults
		want    string
	}{
		{
			name: "mixed",
			results: artifacts.RunResults{
				Elapsed: 4.25,
				Results: []artifacts.NodeResult{
					{Status: "success"},
					{Status: "success"},
					{Status: "error"},
					{Status: "skipped"},
				},
			},
			want: "run finished in 4.2s: 2 success, 1 skipped, 1 error",
		},
		{
			name: "unknownStatusSorted",
			results: artifacts.RunResults{
				Elapsed: 0.5,
				Results: []artifacts.NodeResult{
					{Status: "zeta"},
					{Status: "alpha"},
				},
			},
			want: "run finished in 0.5s: 1 alpha, 1 zeta",
		},
		{
			name:    "empty",
			results: artifacts.RunResults{Elapsed: 0.1},
			want:    "run finished in 0.1s: no nodes",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := summarizeRun("run", &tc.results); got != tc.want {
				t.Fatalf("summarizeRun = %q, want %q", got, tc.want)
			}
		})
	}
}
