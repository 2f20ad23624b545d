package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

const defaultAPIBase = "https://api.twitter.com/2"

// APISource looks posts up through the X API v2 with a ready bearer token.
// Guest-token acquisition is out of scope; the caller provides a token.
type APISource struct {
	bearer string
	base   string
	client *http.Client
}

func NewAPISource(bearerToken string) *APISource {
	return &APISource{
		bearer: bearerToken,
		base:   defaultAPIBase,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type apiTweet struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	CreatedAt     string `json:"created_at"`
	PublicMetrics struct {
		LikeCount    int `json:"like_count"`
		RetweetCount int `json:"retweet_count"`
		ReplyCount   int `json:"reply_count"`
	} `json:"public_metrics"`
}

func (a *APISource) Timeline(ctx context.Context, account string, maxItems int) ([]types.Post, error) {
	var user struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := a.getJSON(ctx, "/users/by/username/"+url.PathEscape(account), nil, &user); err != nil {
		return nil, fmt.Errorf("resolve account %q: %w", account, err)
	}
	if user.Data.ID == "" {
		return nil, fmt.Errorf("resolve account %q: %w", account, ErrNotFound)
	}

	if maxItems <= 0 {
		maxItems = 100
	}
	q := url.Values{
		"max_results":  {fmt.Sprint(maxItems)},
		"tweet.fields": {"public_metrics,created_at"},
	}
	var timeline struct {
		Data []apiTweet `json:"data"`
	}
	if err := a.getJSON(ctx, "/users/"+user.Data.ID+"/tweets", q, &timeline); err != nil {
		return nil, fmt.Errorf("fetch timeline @%s: %w", account, err)
	}

	posts := make([]types.Post, 0, len(timeline.Data))
	for _, t := range timeline.Data {
		posts = append(posts, toPost(t, account))
	}
	return posts, nil
}

func (a *APISource) ByURL(ctx context.Context, rawURL string) (types.Post, error) {
	username, id, err := ParseStatusURL(rawURL)
	if err != nil {
		return types.Post{}, err
	}
	q := url.Values{"tweet.fields": {"public_metrics,created_at"}}
	var resp struct {
		Data *apiTweet `json:"data"`
	}
	if err := a.getJSON(ctx, "/tweets/"+id, q, &resp); err != nil {
		return types.Post{}, fmt.Errorf("fetch post %s: %w", id, err)
	}
	if resp.Data == nil {
		return types.Post{}, ErrNotFound
	}
	return toPost(*resp.Data, username), nil
}

func (a *APISource) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := a.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+a.bearer)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func toPost(t apiTweet, username string) types.Post {
	ts, _ := time.Parse(time.RFC3339, t.CreatedAt)
	return types.Post{
		ID:        t.ID,
		Text:      t.Text,
		Likes:     t.PublicMetrics.LikeCount,
		Reposts:   t.PublicMetrics.RetweetCount,
		Replies:   t.PublicMetrics.ReplyCount,
		Timestamp: ts,
		URL:       fmt.Sprintf("https://x.com/%s/status/%s", username, t.ID),
		EngagementScore: types.EngagementScore(
			t.PublicMetrics.LikeCount,
			t.PublicMetrics.RetweetCount,
			t.PublicMetrics.ReplyCount,
		),
	}
}
