package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankBlendsWeights(t *testing.T) {
	r := NewRanker(nil)

	tests := []struct {
		name string
		in   CandidateScores
		want int
	}{
		{
			name: "all components at 100",
			in:   CandidateScores{ID: "a", SkillScore: 100, ExperienceScore: 100, ProjectScore: 100, SemanticScore: 100},
			want: 100,
		},
		{
			name: "perfect components with long gap",
			in:   CandidateScores{ID: "b", SkillScore: 100, ExperienceScore: 100, ProjectScore: 100, SemanticScore: 100, GapPenalty: 20},
			want: 80,
		},
		{
			name: "mixed components round half up",
			in:   CandidateScores{ID: "c", SkillScore: 67, ExperienceScore: 50, ProjectScore: 33, SemanticScore: 85},
			// 0.40*67 + 0.25*50 + 0.25*33 + 0.10*85 = 56.05
			want: 56,
		},
		{
			name: "penalty cannot push below zero",
			in:   CandidateScores{ID: "d", SkillScore: 10, GapPenalty: 20},
			want: 0,
		},
		{
			name: "all zero",
			in:   CandidateScores{ID: "e"},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Rank([]CandidateScores{tt.in})
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].FinalScore)
		})
	}
}

func TestRankOrdering(t *testing.T) {
	r := NewRanker(nil)

	ranked := r.Rank([]CandidateScores{
		{ID: "low", SkillScore: 30},
		{ID: "high", SkillScore: 90, ExperienceScore: 80},
		{ID: "mid", SkillScore: 60},
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, "high", ranked[0].ID)
	assert.Equal(t, "mid", ranked[1].ID)
	assert.Equal(t, "low", ranked[2].ID)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, 3, ranked[2].Rank)
}

func TestRankStableOnTies(t *testing.T) {
	r := NewRanker(nil)

	in := []CandidateScores{
		{ID: "first", SkillScore: 50},
		{ID: "second", SkillScore: 50},
		{ID: "third", SkillScore: 50},
	}

	ranked := r.Rank(in)
	require.Len(t, ranked, 3)
	assert.Equal(t, "first", ranked[0].ID)
	assert.Equal(t, "second", ranked[1].ID)
	assert.Equal(t, "third", ranked[2].ID)
}

func TestRankIdempotent(t *testing.T) {
	r := NewRanker(nil)

	in := []CandidateScores{
		{ID: "a", SkillScore: 70, ExperienceScore: 40, SemanticScore: 55},
		{ID: "b", SkillScore: 70, ExperienceScore: 40, SemanticScore: 55},
		{ID: "c", SkillScore: 90, GapPenalty: 10},
	}

	first := r.Rank(in)
	second := r.Rank(in)
	assert.Equal(t, first, second)
}

func TestRankClampsOutOfRangeComponents(t *testing.T) {
	r := NewRanker(nil)

	ranked := r.Rank([]CandidateScores{
		{ID: "hot", SkillScore: 250, SemanticScore: -40},
	})

	require.Len(t, ranked, 1)
	// 0.40*100 + 0.10*0 = 40
	assert.Equal(t, 40, ranked[0].FinalScore)
	assert.InDelta(t, 100, ranked[0].SkillScore, 1e-9)
	assert.InDelta(t, 0, ranked[0].SemanticScore, 1e-9)
}

func TestRankEmpty(t *testing.T) {
	r := NewRanker(nil)
	assert.Empty(t, r.Rank(nil))
}
