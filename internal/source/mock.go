package source

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

// sample holds a pre-written post body with fixed engagement counters.
// Selection is index-based so offline runs and tests are reproducible.
type sample struct {
	text    string
	likes   int
	reposts int
	replies int
}

var samples = []sample{
	{
		text: "AI agents are changing side hustles in 2026. People using ChatGPT and Claude for automation are clearing $1k/month. What matters is picking what to automate.\n\n" +
			"✓ Content generation\n✓ Data analysis\n✓ Customer support\n\nWhich would you start with?",
		likes: 1250, reposts: 340, replies: 89,
	},
	{
		text: "3 traps when using AI tools for a side income:\n\n1. Depending on the tool for everything\n2. Skipping quality checks\n3. Ignoring differentiation\n\n" +
			"AI is an accelerator, not a magic wand. Your expertise times AI is the real edge.\n\nAnyone else feeling this?",
		likes: 890, reposts: 210, replies: 67,
	},
	{
		text: "Top 5 AI side-hustle skills for 2026\n\n1. Prompt engineering\n2. AI adoption consulting\n3. Editing AI-generated content\n4. High-quality data labeling\n5. AI ethics auditing\n\n" +
			"Surprisingly, making AI behave pays better than just using it.",
		likes: 2100, reposts: 580, replies: 142,
	},
	{
		text: "3 months of freelancing with ChatGPT, income report\n\nWent from $500 to $1,800 a month\n\n✓ Ghost-writing blog posts\n✓ Selling social templates\n✓ Prompt design support\n\n" +
			"The trick is multiplying your own experience by AI. AI alone does not differentiate anymore.\n\nWhat's your edge?",
		likes: 1680, reposts: 450, replies: 103,
	},
	{
		text: "A realistic roadmap to $1k/month with AI work\n\nMonth 1: learn the tools (free material)\nMonth 2: build a portfolio\nMonth 3: cheap gigs for track record\nMonth 4: raise your rate\nMonth 5: repeat clients\nMonth 6: hit $1k\n\n" +
			"More people have done exactly this than you'd think.",
		likes: 1420, reposts: 380, replies: 95,
	},
}

// MockSource generates deterministic sample posts for offline operation and
// tests. now is injectable; the zero value uses time.Now.
type MockSource struct {
	Now func() time.Time
}

func (m *MockSource) now() time.Time {
	if m != nil && m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *MockSource) Timeline(ctx context.Context, account string, maxItems int) ([]types.Post, error) {
	if maxItems <= 0 || maxItems > len(samples) {
		maxItems = len(samples)
	}
	base := m.now()
	posts := make([]types.Post, 0, maxItems)
	for i, s := range samples[:maxItems] {
		id := fmt.Sprintf("mock_%s_%d", account, i+1)
		posts = append(posts, types.Post{
			ID:              id,
			Text:            s.text,
			Likes:           s.likes,
			Reposts:         s.reposts,
			Replies:         s.replies,
			Timestamp:       base.Add(-time.Duration(i+1) * 7 * time.Hour),
			URL:             fmt.Sprintf("https://x.com/%s/status/%s", account, id),
			EngagementScore: types.EngagementScore(s.likes, s.reposts, s.replies),
		})
	}
	sort.SliceStable(posts, func(a, b int) bool {
		return posts[a].EngagementScore > posts[b].EngagementScore
	})
	return posts, nil
}

func (m *MockSource) ByURL(ctx context.Context, url string) (types.Post, error) {
	username, id, err := ParseStatusURL(url)
	if err != nil {
		return types.Post{}, err
	}
	// Pick a sample by the last digit of the ID so fixed URLs map to fixed
	// content.
	idx := int(id[len(id)-1]-'0') % len(samples)
	s := samples[idx]
	return types.Post{
		ID:              id,
		Text:            s.text,
		Likes:           s.likes,
		Reposts:         s.reposts,
		Replies:         s.replies,
		Timestamp:       m.now().Add(-24 * time.Hour),
		URL:             fmt.Sprintf("https://x.com/%s/status/%s", username, id),
		EngagementScore: types.EngagementScore(s.likes, s.reposts, s.replies),
	}, nil
}
