package models

import "time"

type ChatRequest struct {
	Query string `json:"query" binding:"required,min=1,max=2000"`
}

// ChatResponse mirrors one orchestrator turn: the retrieved chunk texts in
// ranking order and the final natural-language reply.
type ChatResponse struct {
	Matches   []ChatMatch `json:"matches"`
	Reply     string      `json:"reply"`
	Timestamp time.Time   `json:"timestamp"`
}

type ChatMatch struct {
	Text string `json:"text"`
}

type UploadResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	Filename      string `json:"filename"`
	FragmentCount int    `json:"fragment_count"`
}
