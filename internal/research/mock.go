package research

import "fmt"

// mockContextPack is the offline fallback. Deterministic for a given
// topic so tests and demo runs are reproducible.
func mockContextPack(topic string) *ContextPack {
	return &ContextPack{
		Clusters: []Cluster{
			{
				Name:     topic + " basics",
				Keywords: []string{topic, "getting started", "beginner"},
				RepresentativePosts: []RepresentativePost{
					{
						Summary:    fmt.Sprintf("Three months into %s and the results finally showed", topic),
						Engagement: Engagement{Likes: 500, Reposts: 80, Replies: 45},
						WhyViral: []string{
							"concrete timeframe and outcome",
							"feels reproducible",
							"makes the reader want to start too",
						},
						HookIdeas: []string{
							fmt.Sprintf("Three months of %s later,", topic),
							fmt.Sprintf("The %s starting point 90%% of people miss", topic),
							fmt.Sprintf("How %s changed things for me", topic),
						},
					},
				},
			},
		},
		TrendingThemes: []string{topic + " with AI", topic + " failure stories", topic + " roadmap"},
		AvoidThemes:    []string{"salesy tone", "guaranteed-income claims"},
		BestTiming:     "weekdays 21:00-23:00, weekends 12:00-14:00",
		OverallMood:    fmt.Sprintf("interest in %s is high but readers want concrete know-how and first-hand experience", topic),
	}
}

func mockPatternReport(topic string) *PatternReport {
	return &PatternReport{
		TopHooks: []Hook{
			{
				Pattern:       "outcome after a timeframe",
				Example:       fmt.Sprintf("3 months of %s later, here is what happened", topic),
				Effectiveness: "concrete numbers read as proof and pull replies",
			},
			{
				Pattern:       "the mistake most people make",
				Example:       fmt.Sprintf("The %s mistake 90%% of beginners make", topic),
				Effectiveness: "loss aversion makes the reader stop scrolling",
			},
		},
		ViralStructures: []Structure{
			{
				Name:     "numbered list",
				Template: "hook line\n\n1. ...\n2. ...\n3. ...\n\nclosing question",
				BestFor:  "skimmable know-how, high bookmark rate",
			},
		},
		PsychologyTriggers: []string{"curiosity gap", "social proof", "loss aversion"},
		StyleInsights:      []string{"short declarative openers outperform questions as first lines"},
		NGPatterns:         []string{"pure link promotion", "vague motivation posts with no specifics"},
		SamplePosts: []SamplePost{
			{
				Summary:    fmt.Sprintf("numbered checklist of %s pitfalls", topic),
				Engagement: Engagement{Likes: 800, Reposts: 150, Replies: 60},
				WhyViral:   []string{"skimmable", "saves well", "invites corrections in replies"},
				Structure:  "hook, numbered list, closing question",
			},
		},
	}
}
