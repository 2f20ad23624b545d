package rewrite

import (
	"fmt"
	"strings"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

const rewriteRubric = `You are a ghostwriter whose posts consistently go viral on X.
Rewrite the original post below.

[CORE RULE]
Copy the original's format, structure, and theme, but shift the specifics.
- Keep the writing style, line breaks, and list shape exactly.
- Stay in the same genre and topic.
- Change concrete items, examples, and numbers plausibly (a TOP5 may become
  a TOP7 with some entries swapped; figures move to nearby realistic values).
- It must not read as a copy at a glance, yet clearly belongs to the same
  family of posts.

[RANKING WEIGHTS]
reply + author reply >> reply >> bookmark ~ long dwell >> repost >> like.
Design for conversation first, saves second.

[HOOK - first line]
Stop the scroll within the first few words. Pick the best fitting pattern:
emotional burst, concrete number, flat assertion, story opener, or a clipped
fragment.

[STRUCTURE]
Pick one: list, before-after, assertion+reasons, calculation, emotional.
Use frequent line breaks, short lines, and blank lines for pacing.

[CALL TO ACTION - last line]
Prioritize replies: a direct question, an empathy line, or a save prompt.

[HARD NO]
External links, 3+ hashtags, negative or salesy tone, fabricated claims,
wall-of-text paragraphs, textbook phrasing.

[ORIGINAL POST]
%s

[ANALYSIS]
- essence: %s
- structure type: %s
- hook type: %s
- why it went viral: %s
- dwell factors: %s
- reply triggers: %s

[OUTPUT]
Apply every rule above. Keep main_text about the same length as the original.
Return STRICT JSON ONLY. Escape newlines inside strings as \n; never emit a
raw line break inside a JSON string value. thread stays an empty array; put
everything into main_text. Keep optimization_report entries under ten words.
{
  "main_text": "the full rewrite",
  "thread": [],
  "call_to_action": "the closing question",
  "optimization_report": {
    "dwell_optimization": "short note",
    "reply_optimization": "short note",
    "negative_signal_removal": "short note"
  }
}`

func buildPrompt(post types.Post, analysis types.Analysis) string {
	essence := analysis.Essence
	if essence == "" {
		essence = "(not analyzed)"
	}
	structureType := orOther(analysis.StructureType)
	hookType := orOther(analysis.HookType)
	whyViral := "(not analyzed)"
	if len(analysis.WhyViral) > 0 {
		whyViral = strings.Join(analysis.WhyViral, "; ")
	}
	return fmt.Sprintf(rewriteRubric,
		post.Text,
		essence,
		structureType,
		hookType,
		whyViral,
		analysis.PositiveSignals.DwellFactors,
		analysis.PositiveSignals.ReplyTriggers,
	)
}

func orOther(s string) string {
	if s == "" {
		return "other"
	}
	return s
}
