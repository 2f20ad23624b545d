package research

// Engagement mirrors the counters attached to a representative post.
type Engagement struct {
	Likes   int `json:"likes"`
	Reposts int `json:"rt"`
	Replies int `json:"replies"`
}

// RepresentativePost is one post picked to characterize a cluster.
type RepresentativePost struct {
	Summary    string     `json:"summary"`
	Engagement Engagement `json:"engagement"`
	WhyViral   []string   `json:"why_viral"`
	HookIdeas  []string   `json:"hook_ideas"`
}

// Cluster groups recurring keywords and their representative posts.
type Cluster struct {
	Name                string               `json:"name"`
	Keywords            []string             `json:"keywords"`
	RepresentativePosts []RepresentativePost `json:"representative_posts"`
}

// ContextPack is the output of one topic research run: the current mood of
// the timeline around a topic, distilled into clusters, themes and timing.
type ContextPack struct {
	Clusters       []Cluster `json:"clusters"`
	TrendingThemes []string  `json:"trending_themes"`
	AvoidThemes    []string  `json:"avoid_themes"`
	BestTiming     string    `json:"best_timing"`
	OverallMood    string    `json:"overall_mood"`
}

// Hook describes one hook pattern extracted from viral posts.
type Hook struct {
	Pattern       string `json:"pattern"`
	Example       string `json:"example"`
	Effectiveness string `json:"effectiveness"`
}

// Structure is a reusable post skeleton.
type Structure struct {
	Name     string `json:"name"`
	Template string `json:"template"`
	BestFor  string `json:"best_for"`
}

// SamplePost is one analyzed viral post in a pattern report.
type SamplePost struct {
	Summary    string     `json:"summary"`
	Engagement Engagement `json:"engagement"`
	WhyViral   []string   `json:"why_viral"`
	Structure  string     `json:"structure"`
}

// PatternReport is the output of viral pattern analysis for a topic.
type PatternReport struct {
	TopHooks           []Hook       `json:"top_hooks"`
	ViralStructures    []Structure  `json:"viral_structures"`
	PsychologyTriggers []string     `json:"psychology_triggers"`
	StyleInsights      []string     `json:"style_insights"`
	NGPatterns         []string     `json:"ng_patterns"`
	SamplePosts        []SamplePost `json:"sample_posts"`
}
