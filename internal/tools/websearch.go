package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultSearchURL = "https://api.duckduckgo.com"

// WebSearchTool queries the DuckDuckGo Instant Answer API. It returns the
// abstract when one exists, otherwise a digest of the top related topics.
type WebSearchTool struct {
	client  *http.Client
	baseURL string
}

func NewWebSearchTool(timeout time.Duration) *WebSearchTool {
	return &WebSearchTool{
		client:  &http.Client{Timeout: timeout},
		baseURL: defaultSearchURL,
	}
}

func (t *WebSearchTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        "search_web",
		Description: "Search the web for a quick factual answer",
		Params: []ParamSpec{
			{Name: "query", Type: "string", Description: "Search query", Required: true},
		},
	}
}

func (t *WebSearchTool) Invoke(ctx context.Context, args map[string]interface{}) Result {
	query := stringArg(args, "query")

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return ErrorResult{Reason: "Web search request failed"}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return ErrorResult{Reason: "Web search is unavailable right now"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrorResult{Reason: fmt.Sprintf("Web search returned status %d", resp.StatusCode)}
	}

	var payload struct {
		AbstractText  string `json:"AbstractText"`
		RelatedTopics []struct {
			Text string `json:"Text"`
		} `json:"RelatedTopics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ErrorResult{Reason: "Web search returned an unreadable response"}
	}

	if payload.AbstractText != "" {
		return WebSearchResult{Query: query, Summary: payload.AbstractText}
	}

	var topics []string
	for _, topic := range payload.RelatedTopics {
		if topic.Text == "" {
			continue
		}
		topics = append(topics, topic.Text)
		if len(topics) == 3 {
			break
		}
	}
	if len(topics) > 0 {
		return WebSearchResult{Query: query, Summary: strings.Join(topics, "\n")}
	}

	return WebSearchResult{Query: query, Summary: fmt.Sprintf("No relevant information found for '%s'.", query)}
}
