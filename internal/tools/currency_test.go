package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCurrencyToolConverts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("access_key") != "test-key" {
			t.Errorf("missing access_key, got %q", q.Get("access_key"))
		}
		if q.Get("from") != "USD" || q.Get("to") != "EUR" {
			t.Errorf("wrong currency pair: %s -> %s", q.Get("from"), q.Get("to"))
		}
		w.Write([]byte(`{"success":true,"result":92.3}`))
	}))
	defer srv.Close()

	tool := NewCurrencyTool("test-key", 5*time.Second)
	tool.baseURL = srv.URL

	result := tool.Invoke(context.Background(), map[string]interface{}{
		"amount":        100.0,
		"from_currency": "usd",
		"to_currency":   "eur",
	})

	conv, ok := result.(CurrencyResult)
	if !ok {
		t.Fatalf("expected CurrencyResult, got %T: %v", result, result)
	}
	if conv.ConvertedAmount != 92.3 {
		t.Errorf("converted = %v, want 92.3", conv.ConvertedAmount)
	}
	if conv.FromCurrency != "USD" || conv.ToCurrency != "EUR" {
		t.Errorf("currency codes should be uppercased: %+v", conv)
	}
}

func TestCurrencyToolUpstreamRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":{"info":"invalid currency code"}}`))
	}))
	defer srv.Close()

	tool := NewCurrencyTool("test-key", 5*time.Second)
	tool.baseURL = srv.URL

	result := tool.Invoke(context.Background(), map[string]interface{}{
		"amount":        1.0,
		"from_currency": "XXX",
		"to_currency":   "YYY",
	})

	errResult, ok := result.(ErrorResult)
	if !ok {
		t.Fatalf("expected ErrorResult, got %T", result)
	}
	if errResult.Reason != "invalid currency code" {
		t.Errorf("should surface the upstream reason, got %q", errResult.Reason)
	}
}

func TestCurrencyToolWithoutKey(t *testing.T) {
	tool := NewCurrencyTool("", 5*time.Second)

	result := tool.Invoke(context.Background(), map[string]interface{}{
		"amount":        1.0,
		"from_currency": "USD",
		"to_currency":   "EUR",
	})

	if _, ok := result.(ErrorResult); !ok {
		t.Fatalf("missing API key must produce ErrorResult, got %T", result)
	}
}
