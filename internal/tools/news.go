package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultNewsURL = "https://api.thenewsapi.com"

// NewsTool fetches top headlines from TheNewsAPI, optionally filtered by
// category and country.
type NewsTool struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewNewsTool(apiKey string, timeout time.Duration) *NewsTool {
	return &NewsTool{
		client:  &http.Client{Timeout: timeout},
		baseURL: defaultNewsURL,
		apiKey:  apiKey,
	}
}

func (t *NewsTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        "get_news",
		Description: "Get current top news headlines, optionally for a category and country",
		Params: []ParamSpec{
			{Name: "category", Type: "string", Description: "News category, e.g. 'tech' or 'business'", Required: false, Default: "general"},
			{Name: "country", Type: "string", Description: "Two-letter country code, e.g. 'us'", Required: false, Default: "us"},
			{Name: "limit", Type: "integer", Description: "Number of headlines to return", Required: false, Default: 5},
		},
	}
}

func (t *NewsTool) Invoke(ctx context.Context, args map[string]interface{}) Result {
	if t.apiKey == "" {
		return ErrorResult{Reason: "News lookup is not configured"}
	}

	category := stringArg(args, "category")
	country := strings.ToLower(stringArg(args, "country"))
	limit := intArg(args, "limit")
	if limit <= 0 {
		limit = 5
	}

	query := url.Values{}
	query.Set("api_token", t.apiKey)
	query.Set("locale", country)
	query.Set("categories", category)
	query.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/v1/news/top?"+query.Encode(), nil)
	if err != nil {
		return ErrorResult{Reason: "News service request failed"}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return ErrorResult{Reason: "News service is unavailable right now"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrorResult{Reason: fmt.Sprintf("News service returned status %d", resp.StatusCode)}
	}

	var payload struct {
		Data []struct {
			Title string `json:"title"`
			URL   string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ErrorResult{Reason: "News service returned an unreadable response"}
	}
	if len(payload.Data) == 0 {
		return ErrorResult{Reason: fmt.Sprintf("No %s headlines found for '%s'", category, country)}
	}

	headlines := make([]Headline, 0, len(payload.Data))
	for _, article := range payload.Data {
		headlines = append(headlines, Headline{Title: article.Title, URL: article.URL})
	}

	return NewsResult{Category: category, Country: country, Headlines: headlines}
}
