package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReport_Status(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		want   Status
	}{
		{
			name:   "clean run",
			report: Report{FeedsScanned: 3, Fetched: 12},
			want:   StatusSucceeded,
		},
		{
			name: "one feed failed",
			report: Report{
				FeedsScanned: 3,
				FeedFailures: []FeedFailure{{Feed: "alpha", Error: "timeout"}},
			},
			want: StatusPartiallyFailed,
		},
		{
			name: "one item failed",
			report: Report{
				FeedsScanned: 3,
				ItemFailures: []ItemFailure{{Title: "x", Stage: "score", Error: "boom"}},
			},
			want: StatusPartiallyFailed,
		},
		{
			name: "every feed failed",
			report: Report{
				FeedsScanned: 2,
				FeedFailures: []FeedFailure{
					{Feed: "alpha", Error: "timeout"},
					{Feed: "beta", Error: "dns"},
				},
			},
			want: StatusFailed,
		},
		{
			name:   "no feeds configured",
			report: Report{},
			want:   StatusSucceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.report.Status())
		})
	}
}
