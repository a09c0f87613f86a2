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

const defaultCurrencyURL = "https://api.currencylayer.com"

// CurrencyTool converts an amount between two currencies through the
// currencylayer conversion endpoint.
type CurrencyTool struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewCurrencyTool(apiKey string, timeout time.Duration) *CurrencyTool {
	return &CurrencyTool{
		client:  &http.Client{Timeout: timeout},
		baseURL: defaultCurrencyURL,
		apiKey:  apiKey,
	}
}

func (t *CurrencyTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        "convert_currency",
		Description: "Convert an amount of money from one currency to another",
		Params: []ParamSpec{
			{Name: "amount", Type: "number", Description: "Amount to convert", Required: true},
			{Name: "from_currency", Type: "string", Description: "Source currency code, e.g. 'USD'", Required: true},
			{Name: "to_currency", Type: "string", Description: "Target currency code, e.g. 'EUR'", Required: true},
		},
	}
}

func (t *CurrencyTool) Invoke(ctx context.Context, args map[string]interface{}) Result {
	if t.apiKey == "" {
		return ErrorResult{Reason: "Currency conversion is not configured"}
	}

	amount := numberArg(args, "amount")
	from := strings.ToUpper(stringArg(args, "from_currency"))
	to := strings.ToUpper(stringArg(args, "to_currency"))

	query := url.Values{}
	query.Set("access_key", t.apiKey)
	query.Set("from", from)
	query.Set("to", to)
	query.Set("amount", fmt.Sprintf("%g", amount))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/convert?"+query.Encode(), nil)
	if err != nil {
		return ErrorResult{Reason: "Currency service request failed"}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return ErrorResult{Reason: "Currency service is unavailable right now"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrorResult{Reason: fmt.Sprintf("Currency service returned status %d", resp.StatusCode)}
	}

	var payload struct {
		Success bool    `json:"success"`
		Result  float64 `json:"result"`
		Error   struct {
			Info string `json:"info"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ErrorResult{Reason: "Currency service returned an unreadable response"}
	}
	if !payload.Success {
		reason := payload.Error.Info
		if reason == "" {
			reason = fmt.Sprintf("Could not convert %s to %s", from, to)
		}
		return ErrorResult{Reason: reason}
	}

	return CurrencyResult{
		Amount:          amount,
		FromCurrency:    from,
		ToCurrency:      to,
		ConvertedAmount: payload.Result,
	}
}
