package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWikipediaToolSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/page/summary/") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"title":"Go (programming language)","extract":"Go is a language. It was designed at Google. It is statically typed."}`))
	}))
	defer srv.Close()

	tool := NewWikipediaTool(5 * time.Second)
	tool.baseURL = srv.URL

	result := tool.Invoke(context.Background(), map[string]interface{}{
		"query":     "Go (programming language)",
		"sentences": 2,
		"language":  "en",
	})

	wiki, ok := result.(WikipediaResult)
	if !ok {
		t.Fatalf("expected WikipediaResult, got %T: %v", result, result)
	}
	if wiki.Summary != "Go is a language. It was designed at Google." {
		t.Errorf("summary should be cut to 2 sentences, got %q", wiki.Summary)
	}
}

func TestWikipediaToolNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tool := NewWikipediaTool(5 * time.Second)
	tool.baseURL = srv.URL

	result := tool.Invoke(context.Background(), map[string]interface{}{"query": "Xyzzy Nonsense"})

	errResult, ok := result.(ErrorResult)
	if !ok {
		t.Fatalf("404 must produce ErrorResult, got %T", result)
	}
	if !strings.Contains(errResult.Reason, "Xyzzy Nonsense") {
		t.Errorf("reason should mention the query: %q", errResult.Reason)
	}
}

func TestTruncateSentences(t *testing.T) {
	text := "One. Two! Three? Four."

	if got := truncateSentences(text, 1); got != "One." {
		t.Errorf("1 sentence: got %q", got)
	}
	if got := truncateSentences(text, 3); got != "One. Two! Three?" {
		t.Errorf("3 sentences: got %q", got)
	}
	if got := truncateSentences(text, 10); got != text {
		t.Errorf("asking for more sentences than exist should return all: %q", got)
	}
	if got := truncateSentences("no terminal punctuation", 2); got != "no terminal punctuation" {
		t.Errorf("text without terminators should pass through: %q", got)
	}
}
