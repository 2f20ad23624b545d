package rewrite

import (
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/util/jsonutil"
)

// parseRewrite converts a model response into a RewrittenPost, running the
// full recovery chain and finishing with per-field extraction. It never
// fails loudly: when nothing is recoverable the sentinel is returned with
// ok=false. Feeding the sentinel back in yields the sentinel again, so
// there is no recovery loop.
func parseRewrite(raw []byte) (types.RewrittenPost, bool) {
	var out types.RewrittenPost
	if err := jsonutil.UnmarshalLenient(raw, &out); err == nil {
		if out.MainText != "" && !out.Failed() {
			if out.Thread == nil {
				out.Thread = []string{}
			}
			return out, true
		}
		return sentinelRewrite(), false
	}

	// Last-resort: pull known fields out of the wreckage.
	text := string(raw)
	if main, ok := jsonutil.ExtractStringField(text, "main_text"); ok && main != "" && main != types.RewriteFailedText {
		rec := types.RewrittenPost{
			MainText:  main,
			Thread:    []string{},
			Recovered: true,
			OptimizationReport: types.OptimizationReport{
				DwellOptimization:     "recovered",
				ReplyOptimization:     "recovered",
				NegativeSignalRemoval: "recovered",
			},
		}
		if thread, ok := jsonutil.ExtractStringArray(text, "thread"); ok {
			rec.Thread = thread
			if rec.Thread == nil {
				rec.Thread = []string{}
			}
		}
		if cta, ok := jsonutil.ExtractStringField(text, "call_to_action"); ok {
			rec.CallToAction = cta
		}
		return rec, true
	}

	return sentinelRewrite(), false
}

func sentinelRewrite() types.RewrittenPost {
	return types.RewrittenPost{
		MainText: types.RewriteFailedText,
		Thread:   []string{},
		OptimizationReport: types.OptimizationReport{
			DwellOptimization:     "failed",
			ReplyOptimization:     "failed",
			NegativeSignalRemoval: "failed",
		},
	}
}
