package types

import "time"

// Post is a single social-media item under consideration.
// EngagementScore is derived once at collection time and never mutated.
type Post struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	Likes           int       `json:"likes"`
	Reposts         int       `json:"reposts"`
	Replies         int       `json:"replies"`
	Timestamp       time.Time `json:"timestamp"`
	URL             string    `json:"url"`
	Category        string    `json:"category,omitempty"`
	EngagementScore float64   `json:"engagement_score"`
}

// EngagementScore weights replies and reposts above likes; the value is used
// for ranking and filtering only.
func EngagementScore(likes, reposts, replies int) float64 {
	return float64(likes) + 2*float64(reposts) + 1.5*float64(replies)
}

// Analysis ------------------------------------------------------------------

type PositiveSignals struct {
	DwellFactors    string `json:"dwell_factors"`
	ReplyTriggers   string `json:"reply_triggers"`
	EngagementHooks string `json:"engagement_hooks"`
}

type NegativeSignals struct {
	NotInterestedRisks string `json:"not_interested_risks"`
	BlockMuteRisks     string `json:"block_mute_risks"`
}

// Scores are predicted engagement dimensions on a 1-10 scale.
// Virality is derived and may be 0-10.
type Scores struct {
	DwellPotential    int `json:"dwell_potential"`
	ReplyPotential    int `json:"reply_potential"`
	FavoritePotential int `json:"favorite_potential"`
	RepostPotential   int `json:"repost_potential"`
	Virality          int `json:"virality,omitempty"`
}

// Analysis is the structured judgment of why a Post performed well.
// ParseFailed marks a sentinel analysis produced when the model response
// could not be recovered; callers must check it before trusting fields.
type Analysis struct {
	PositiveSignals PositiveSignals `json:"positive_signals"`
	NegativeSignals NegativeSignals `json:"negative_signals"`
	Scores          Scores          `json:"scores"`
	Essence         string          `json:"essence,omitempty"`
	StructureType   string          `json:"structure_type,omitempty"`
	HookType        string          `json:"hook_type,omitempty"`
	WhyViral        []string        `json:"why_viral,omitempty"`
	ParseFailed     bool            `json:"parse_failed,omitempty"`
}

// RewrittenPost --------------------------------------------------------------

// RewriteFailedText is the sentinel MainText used when no rewrite could be
// recovered from the model response.
const RewriteFailedText = "rewrite failed"

type OptimizationReport struct {
	DwellOptimization     string `json:"dwell_optimization"`
	ReplyOptimization     string `json:"reply_optimization"`
	NegativeSignalRemoval string `json:"negative_signal_removal"`
}

// RewrittenPost is the generated replacement content.
// Recovered is set when the result was rebuilt by field extraction rather
// than a full JSON parse.
type RewrittenPost struct {
	MainText           string             `json:"main_text"`
	Thread             []string           `json:"thread"`
	CallToAction       string             `json:"call_to_action"`
	OptimizationReport OptimizationReport `json:"optimization_report"`
	Recovered          bool               `json:"recovered,omitempty"`
}

// Failed reports whether the rewrite carries the failure sentinel.
func (r RewrittenPost) Failed() bool { return r.MainText == RewriteFailedText }

// ResultBundle ---------------------------------------------------------------

// ResultBundle is the persisted per-post record.
type ResultBundle struct {
	Original  Post          `json:"original"`
	Analysis  Analysis      `json:"analysis"`
	Rewritten RewrittenPost `json:"rewritten"`
	ImageURL  string        `json:"image_url,omitempty"`
}
