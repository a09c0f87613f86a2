package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewsToolFetchesHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/news/top") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api_token") != "test-token" || q.Get("categories") != "tech" || q.Get("locale") != "us" {
			t.Errorf("unexpected query: %v", q)
		}
		w.Write([]byte(`{"data":[
			{"title":"Story A","url":"https://example.com/a"},
			{"title":"Story B","url":"https://example.com/b"}]}`))
	}))
	defer srv.Close()

	tool := NewNewsTool("test-token", 5*time.Second)
	tool.baseURL = srv.URL

	result := tool.Invoke(context.Background(), map[string]interface{}{
		"category": "tech",
		"country":  "US",
		"limit":    2,
	})

	news, ok := result.(NewsResult)
	if !ok {
		t.Fatalf("expected NewsResult, got %T: %v", result, result)
	}
	if len(news.Headlines) != 2 {
		t.Fatalf("expected 2 headlines, got %d", len(news.Headlines))
	}
	if news.Headlines[0].Title != "Story A" {
		t.Errorf("headline order wrong: %+v", news.Headlines)
	}
	if news.Country != "us" {
		t.Errorf("country should be lowercased, got %q", news.Country)
	}
}

func TestNewsToolNoHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	tool := NewNewsTool("test-token", 5*time.Second)
	tool.baseURL = srv.URL

	result := tool.Invoke(context.Background(), map[string]interface{}{
		"category": "sports",
		"country":  "de",
		"limit":    5,
	})

	errResult, ok := result.(ErrorResult)
	if !ok {
		t.Fatalf("empty data must produce ErrorResult, got %T", result)
	}
	if !strings.Contains(errResult.Reason, "sports") {
		t.Errorf("reason should mention the category: %q", errResult.Reason)
	}
}

func TestNewsToolWithoutKey(t *testing.T) {
	tool := NewNewsTool("", 5*time.Second)

	result := tool.Invoke(context.Background(), map[string]interface{}{
		"category": "tech", "country": "us", "limit": 5,
	})

	if _, ok := result.(ErrorResult); !ok {
		t.Fatalf("missing API key must produce ErrorResult, got %T", result)
	}
}
