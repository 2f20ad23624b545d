package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

func post(id string, likes, reposts, replies int) types.Post {
	return types.Post{
		ID:              id,
		Likes:           likes,
		Reposts:         reposts,
		Replies:         replies,
		EngagementScore: types.EngagementScore(likes, reposts, replies),
	}
}

func TestEngagementScoreFormula(t *testing.T) {
	// likes + 2*reposts + 1.5*replies
	assert.Equal(t, 2063.5, types.EngagementScore(1250, 340, 89))
	assert.Equal(t, 0.0, types.EngagementScore(0, 0, 0))
	assert.Equal(t, 7.0, types.EngagementScore(1, 3, 0))
}

func TestFilterAndRank(t *testing.T) {
	in := []types.Post{
		post("low", 10, 5, 1),
		post("big", 1250, 340, 89),
		post("mid", 600, 60, 10),
	}
	out := FilterAndRank(in, 500, 50)
	require.Len(t, out, 2)
	assert.Equal(t, "big", out[0].ID)
	assert.Equal(t, "mid", out[1].ID)
	assert.Equal(t, 2063.5, out[0].EngagementScore)

	// Every kept post satisfies both predicates.
	for _, p := range out {
		assert.GreaterOrEqual(t, p.Likes, 500)
		assert.GreaterOrEqual(t, p.Reposts, 50)
	}
}

func TestFilterAndRankStableOnTies(t *testing.T) {
	// Same engagement score; relative order must be preserved.
	in := []types.Post{
		post("first", 1000, 100, 0),
		post("second", 1000, 100, 0),
		post("third", 1000, 100, 0),
	}
	out := FilterAndRank(in, 1, 1)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{out[0].ID, out[1].ID, out[2].ID})
}

func TestFilterAndRankEmptyResult(t *testing.T) {
	in := []types.Post{post("a", 100, 10, 5), post("b", 300, 20, 2)}
	out := FilterAndRank(in, 5000, 5000)
	assert.Empty(t, out)

	maxLikes, maxReposts := Maxima(in)
	assert.Equal(t, 300, maxLikes)
	assert.Equal(t, 20, maxReposts)
}

func TestFilterAndRankEmptyInput(t *testing.T) {
	assert.Empty(t, FilterAndRank(nil, 0, 0))
	maxLikes, maxReposts := Maxima(nil)
	assert.Zero(t, maxLikes)
	assert.Zero(t, maxReposts)
}
