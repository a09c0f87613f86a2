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

// defaultWikipediaURL carries a %s slot for the language subdomain.
const defaultWikipediaURL = "https://%s.wikipedia.org/api/rest_v1"

// WikipediaTool reads article summaries from the Wikipedia REST API.
type WikipediaTool struct {
	client  *http.Client
	baseURL string
}

func NewWikipediaTool(timeout time.Duration) *WikipediaTool {
	return &WikipediaTool{
		client:  &http.Client{Timeout: timeout},
		baseURL: defaultWikipediaURL,
	}
}

func (t *WikipediaTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        "search_wikipedia",
		Description: "Look up a topic on Wikipedia and return a short summary",
		Params: []ParamSpec{
			{Name: "query", Type: "string", Description: "Topic or article title to look up", Required: true},
			{Name: "sentences", Type: "integer", Description: "Number of summary sentences", Required: false, Default: 2},
			{Name: "language", Type: "string", Description: "Wikipedia language code, e.g. 'en'", Required: false, Default: "en"},
		},
	}
}

func (t *WikipediaTool) Invoke(ctx context.Context, args map[string]interface{}) Result {
	query := stringArg(args, "query")
	sentences := intArg(args, "sentences")
	language := stringArg(args, "language")
	if sentences <= 0 {
		sentences = 2
	}
	if language == "" {
		language = "en"
	}

	base := t.baseURL
	if strings.Contains(base, "%s") {
		base = fmt.Sprintf(base, language)
	}
	endpoint := base + "/page/summary/" + url.PathEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ErrorResult{Reason: "Wikipedia request failed"}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return ErrorResult{Reason: "Wikipedia is unavailable right now"}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrorResult{Reason: fmt.Sprintf("No Wikipedia page found for '%s'", query)}
	}
	if resp.StatusCode != http.StatusOK {
		return ErrorResult{Reason: fmt.Sprintf("Wikipedia returned status %d", resp.StatusCode)}
	}

	var payload struct {
		Title   string `json:"title"`
		Extract string `json:"extract"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ErrorResult{Reason: "Wikipedia returned an unreadable response"}
	}
	if payload.Extract == "" {
		return ErrorResult{Reason: fmt.Sprintf("No Wikipedia page found for '%s'", query)}
	}

	return WikipediaResult{Query: query, Summary: truncateSentences(payload.Extract, sentences)}
}

// truncateSentences keeps the first n sentences of text, splitting on simple
// terminal punctuation. Good enough for summary extracts; not a linguistic
// segmenter.
func truncateSentences(text string, n int) string {
	count := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			count++
			if count == n {
				return strings.TrimSpace(text[:i+1])
			}
		}
	}
	return strings.TrimSpace(text)
}
