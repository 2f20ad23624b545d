package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/llmclient"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

type fakeLLM struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeLLM) Name() string { return "fake" }
func (f *fakeLLM) Close() error { return nil }
func (f *fakeLLM) GenerateJSON(ctx context.Context, prompt string, opts llmclient.GenerateOptions) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return nil, llmclient.ErrInvalidJSON
	}
	out := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return json.RawMessage(out), nil
}

func samplePost() types.Post {
	return types.Post{
		ID:      "1",
		Text:    "Top 5 AI skills for 2026\n\n1. Prompting\n2. Auditing\n\nWhich would you pick?",
		Likes:   1250,
		Reposts: 340,
		Replies: 89,
		EngagementScore: types.EngagementScore(1250, 340, 89),
	}
}

func TestAnalyzeHeuristicDeterministic(t *testing.T) {
	a := &Analyzer{} // no LLM: heuristic path
	first := a.Analyze(context.Background(), samplePost())
	second := a.Analyze(context.Background(), samplePost())
	assert.Equal(t, first, second)
	assert.False(t, first.ParseFailed)
	assert.Equal(t, "list", first.StructureType)
	assert.Equal(t, "number", first.HookType)
}

func TestAnalyzeScoresInRange(t *testing.T) {
	a := &Analyzer{}
	got := a.Analyze(context.Background(), samplePost())
	for _, s := range []int{got.Scores.DwellPotential, got.Scores.ReplyPotential, got.Scores.FavoritePotential, got.Scores.RepostPotential} {
		assert.GreaterOrEqual(t, s, 1)
		assert.LessOrEqual(t, s, 10)
	}
	assert.GreaterOrEqual(t, got.Scores.Virality, 0)
	assert.LessOrEqual(t, got.Scores.Virality, 10)
}

func TestAnalyzeUsesLLMResponse(t *testing.T) {
	resp := `{"positive_signals":{"dwell_factors":"list keeps attention","reply_triggers":"asks a question","engagement_hooks":"savable tips"},` +
		`"negative_signals":{"not_interested_risks":"niche topic","block_mute_risks":"none"},` +
		`"scores":{"dwell_potential":9,"reply_potential":8,"favorite_potential":7,"repost_potential":6},` +
		`"essence":"practical AI skills","structure_type":"list","hook_type":"number","why_viral":["a","b","c"]}`
	a := &Analyzer{LLM: &fakeLLM{responses: []string{resp}}}
	got := a.Analyze(context.Background(), samplePost())
	require.False(t, got.ParseFailed)
	assert.Equal(t, 9, got.Scores.DwellPotential)
	assert.Equal(t, "practical AI skills", got.Essence)
	// Derived virality fills in when the model omits it.
	assert.Greater(t, got.Scores.Virality, 0)
}

func TestAnalyzeTransportErrorFallsBack(t *testing.T) {
	a := &Analyzer{LLM: &fakeLLM{err: errors.New("quota exceeded")}}
	got := a.Analyze(context.Background(), samplePost())
	assert.False(t, got.ParseFailed)
	assert.NotEmpty(t, got.PositiveSignals.DwellFactors)
}

func TestAnalyzeUnparseableMarksParseFailed(t *testing.T) {
	llm := &fakeLLM{responses: []string{"complete garbage, no braces"}}
	a := &Analyzer{LLM: llm}
	got := a.Analyze(context.Background(), samplePost())
	assert.True(t, got.ParseFailed)
	assert.NotEmpty(t, got.PositiveSignals.DwellFactors)
	// Single attempt at this layer.
	assert.Equal(t, 1, llm.calls)
}

func TestAnalyzeHeuristicEssenceValidUTF8(t *testing.T) {
	post := samplePost()
	post.Text = strings.Repeat("効率化のコツ✓ ", 20) // rune boundary falls mid-character at byte 60
	got := (&Analyzer{}).Analyze(context.Background(), post)
	assert.True(t, utf8.ValidString(got.Essence))
	assert.LessOrEqual(t, utf8.RuneCountInString(got.Essence), len("core message: ")+60)
}
