package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobLifecycle(t *testing.T) {
	job := &Job{ID: "jd-1", Title: "Backend Engineer"}

	steps := []JobStatus{
		StatusExtracting,
		StatusExtracted,
		StatusMatching,
		StatusRanking,
		StatusRanked,
	}
	for _, next := range steps {
		require.NoError(t, job.Transition(next), "transition to %s", next)
	}
	assert.Equal(t, StatusRanked, job.Status)
}

func TestJobTransitionRejectsJumps(t *testing.T) {
	tests := []struct {
		name string
		from JobStatus
		to   JobStatus
		ok   bool
	}{
		{"idle straight to ranked", StatusIdle, StatusRanked, false},
		{"idle straight to matching", StatusIdle, StatusMatching, false},
		{"extracting to ranking", StatusExtracting, StatusRanking, false},
		{"ranked back to extracting", StatusRanked, StatusExtracting, true},
		{"ranked back to matching", StatusRanked, StatusMatching, true},
		{"error allows re-run", StatusError, StatusExtracting, true},
		{"error cannot jump to ranked", StatusError, StatusRanked, false},
		{"any state can error", StatusMatching, StatusError, true},
		{"same state is a no-op", StatusMatching, StatusMatching, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &Job{ID: "jd-1", Status: tt.from}
			err := job.Transition(tt.to)
			if tt.ok {
				assert.NoError(t, err)
				assert.Equal(t, tt.to, job.Status)
			} else {
				assert.Error(t, err)
				assert.Equal(t, tt.from, job.Status)
			}
		})
	}
}

func TestValidReviewStatus(t *testing.T) {
	assert.True(t, ValidReviewStatus(ReviewAccepted))
	assert.True(t, ValidReviewStatus(ReviewRejected))
	assert.True(t, ValidReviewStatus(ReviewPending))
	assert.True(t, ValidReviewStatus(ReviewNone))
	assert.False(t, ValidReviewStatus("maybe"))
}
