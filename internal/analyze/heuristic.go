package analyze

import (
	"strings"
	"unicode"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

// heuristic derives an Analysis from simple textual features. It is fully
// deterministic for a given post text, which the test suite relies on.
func (a *Analyzer) heuristic(post types.Post, parseFailed bool) types.Analysis {
	text := post.Text
	hasQuestion := strings.ContainsAny(text, "?？")
	hasBullets := strings.ContainsAny(text, "✓・") || strings.Contains(text, "\n")
	hasNumbers := strings.IndexFunc(text, unicode.IsDigit) >= 0

	firstLine := text
	if i := strings.Index(text, "\n"); i >= 0 {
		firstLine = text[:i]
	}

	hookType := "other"
	switch {
	case containsAny(firstLine, "wow", "insane", "wild", "unreal"):
		hookType = "emotional"
	case hasNumbers && containsAny(firstLine, "top", "step", "list", "ways", "skills", "report", "roadmap"):
		hookType = "number"
	case containsAny(firstLine, "nobody", "most people", "truth", "honestly", "never"):
		hookType = "assertion"
	case containsAny(firstLine, "yesterday", "months of", "years ago", "i tried", "result"):
		hookType = "story"
	}

	structureType := "other"
	switch {
	case hasBullets && hasNumbers:
		structureType = "list"
	case strings.Contains(text, "→") || containsAny(text, "went from", "used to"):
		structureType = "before-after"
	case hasQuestion:
		structureType = "assertion+reasons"
	}

	pick := func(cond bool, yes, no string) string {
		if cond {
			return yes
		}
		return no
	}

	dwell := 7
	if hasBullets {
		dwell++
	}
	if hasNumbers {
		dwell++
	}
	reply := 7
	if hasQuestion {
		reply += 2
	}
	favorite := 6
	if hasBullets {
		favorite++
	}

	essence := text
	if r := []rune(essence); len(r) > 60 {
		essence = string(r[:60])
	}

	return types.Analysis{
		PositiveSignals: types.PositiveSignals{
			DwellFactors:    pick(hasBullets, "bullet layout keeps readers scanning", "short lines read in one pass"),
			ReplyTriggers:   pick(hasQuestion, "direct question invites replies", "relatable claim draws opinions"),
			EngagementHooks: pick(hasNumbers, "concrete numbers add credibility", "practical advice worth saving"),
		},
		NegativeSignals: types.NegativeSignals{
			NotInterestedRisks: "none",
			BlockMuteRisks:     "none",
		},
		Scores: types.Scores{
			DwellPotential:    min10(dwell),
			ReplyPotential:    min10(reply),
			FavoritePotential: min10(favorite),
			RepostPotential:   6,
			Virality:          viralityScore(post.EngagementScore),
		},
		Essence:       "core message: " + essence,
		StructureType: structureType,
		HookType:      hookType,
		WhyViral: []string{
			"theme lands with the target audience",
			pick(hasNumbers, "specific numbers build trust", "emotional tone carries it"),
			pick(hasQuestion, "question invites replies", "relatability spreads it"),
		},
		ParseFailed: parseFailed,
	}
}

func containsAny(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func min10(v int) int {
	if v > 10 {
		return 10
	}
	return v
}
