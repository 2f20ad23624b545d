package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultGrokBaseURL = "https://api.x.ai"
	grokModel          = "grok-3-fast"
)

// grokClient calls the xAI responses endpoint with the x_search tool
// enabled, which lets the model pull live posts while answering.
type grokClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newGrokClient(apiKey, baseURL string, httpClient *http.Client) *grokClient {
	if baseURL == "" {
		baseURL = defaultGrokBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &grokClient{apiKey: apiKey, baseURL: baseURL, client: httpClient}
}

type grokRequest struct {
	Model string     `json:"model"`
	Input string     `json:"input"`
	Tools []grokTool `json:"tools"`
}

type grokTool struct {
	Type string `json:"type"`
}

type grokResponse struct {
	Output []struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	OutputText string `json:"output_text"`
	Text       string `json:"text"`
}

// Search sends the prompt and returns the concatenated text of the
// response output items.
func (c *grokClient) Search(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(grokRequest{
		Model: grokModel,
		Input: prompt,
		Tools: []grokTool{{Type: "x_search"}},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/responses", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("grok responses: status %d: %s", resp.StatusCode, truncateBody(data))
	}

	var out grokResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("grok responses: decode: %w", err)
	}
	var parts []string
	for _, item := range out.Output {
		for _, c := range item.Content {
			if strings.TrimSpace(c.Text) != "" {
				parts = append(parts, c.Text)
			}
		}
	}
	if len(parts) > 0 {
		return strings.TrimSpace(strings.Join(parts, "\n")), nil
	}
	for _, alt := range []string{out.OutputText, out.Text} {
		if strings.TrimSpace(alt) != "" {
			return strings.TrimSpace(alt), nil
		}
	}
	return "", fmt.Errorf("grok responses: empty output")
}

func truncateBody(b []byte) string {
	const limit = 200
	s := string(b)
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
