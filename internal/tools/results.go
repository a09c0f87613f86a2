package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Result is the tagged union of everything a tool invocation can produce.
// Upstream failures are a variant too (ErrorResult), never a raised error:
// a broken tool degrades the conversation instead of aborting it.
type Result interface {
	isResult()
}

type WeatherResult struct {
	Location    string  `json:"location"`
	Description string  `json:"description"`
	Temperature float64 `json:"temperature_c"`
	Windspeed   float64 `json:"windspeed_kmh"`
}

type Headline struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type NewsResult struct {
	Category  string     `json:"category"`
	Country   string     `json:"country"`
	Headlines []Headline `json:"headlines"`
}

type CurrencyResult struct {
	Amount          float64 `json:"amount"`
	FromCurrency    string  `json:"from_currency"`
	ToCurrency      string  `json:"to_currency"`
	ConvertedAmount float64 `json:"converted_amount"`
}

type WikipediaResult struct {
	Query   string `json:"query"`
	Summary string `json:"summary"`
}

type WebSearchResult struct {
	Query   string `json:"query"`
	Summary string `json:"summary"`
}

// GenericResult is the fallback shape for payloads no dedicated variant
// describes.
type GenericResult struct {
	Fields map[string]interface{} `json:"fields"`
}

// ErrorResult is a normalized upstream failure.
type ErrorResult struct {
	Reason string `json:"error"`
}

func (WeatherResult) isResult()   {}
func (NewsResult) isResult()      {}
func (CurrencyResult) isResult()  {}
func (WikipediaResult) isResult() {}
func (WebSearchResult) isResult() {}
func (GenericResult) isResult()   {}
func (ErrorResult) isResult()     {}

// Render maps every result variant to a short natural-language block. It is
// total: any structurally valid result produces some string, never a panic.
func Render(r Result) string {
	switch v := r.(type) {
	case WeatherResult:
		return fmt.Sprintf("🌤 **Weather in %s**\nCondition: %s\nTemp: %.1f°C\nWind: %.1f km/h",
			v.Location, v.Description, v.Temperature, v.Windspeed)

	case NewsResult:
		header := fmt.Sprintf("📰 **%s Headlines**", capitalize(v.Category))
		if v.Country != "" {
			header += fmt.Sprintf(" (%s)", strings.ToUpper(v.Country))
		}
		lines := []string{header}
		for i, h := range v.Headlines {
			title := h.Title
			if title == "" {
				title = "Untitled"
			}
			url := h.URL
			if url == "" {
				url = "#"
			}
			lines = append(lines, fmt.Sprintf("%d. [%s](%s)", i+1, title, url))
		}
		return strings.Join(lines, "\n")

	case CurrencyResult:
		return fmt.Sprintf("💱 **Currency Conversion**\n%g %s → %.2f %s",
			v.Amount, v.FromCurrency, v.ConvertedAmount, v.ToCurrency)

	case WikipediaResult:
		return v.Summary

	case WebSearchResult:
		return v.Summary

	case ErrorResult:
		return fmt.Sprintf("⚠️ %s", v.Reason)

	case GenericResult:
		return renderGeneric(v.Fields)

	default:
		// Unknown variants still render; pretty-print whatever we have.
		return renderGeneric(map[string]interface{}{"result": r})
	}
}

func renderGeneric(fields map[string]interface{}) string {
	pretty, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Sprintf("📦 **API Response:** %v", fields)
	}
	return "📦 **API Response:**\n```json\n" + string(pretty) + "\n```"
}

func capitalize(s string) string {
	if s == "" {
		return "News"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
