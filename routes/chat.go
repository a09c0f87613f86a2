package routes

import (
	"errors"
	"net/http"
	"time"

	"docuchat-backend/internal/ai"
	"docuchat-backend/internal/orchestrator"
	"docuchat-backend/internal/store"
	"docuchat-backend/middleware"
	"docuchat-backend/models"
	"docuchat-backend/utils"

	"github.com/gin-gonic/gin"
)

// SetupChatRoutes wires the chat turn endpoint.
func SetupChatRoutes(router *gin.Engine, authMW *middleware.AuthMiddleware, orch *orchestrator.Orchestrator) {
	api := router.Group("/api")
	api.Use(authMW.RequireAuth())

	api.POST("/chat", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error_code": "invalid_input",
				"message":    "Query is required",
				"details":    gin.H{"error": err.Error()},
			})
			return
		}

		owner := middleware.GetUsername(c)

		result, err := orch.Respond(c.Request.Context(), owner, req.Query)
		if err != nil {
			respondChatError(c, err)
			return
		}

		matches := make([]models.ChatMatch, 0, len(result.Matches))
		for _, text := range result.Matches {
			matches = append(matches, models.ChatMatch{Text: text})
		}

		c.JSON(http.StatusOK, models.ChatResponse{
			Matches:   matches,
			Reply:     result.Reply,
			Timestamp: time.Now().UTC(),
		})
	})
}

// respondChatError maps turn failures onto the HTTP taxonomy: 504 for model
// timeouts, 503 for unreachable backends, and the upstream status for model
// API errors.
func respondChatError(c *gin.Context, err error) {
	var httpErr *ai.ModelHTTPError

	switch {
	case errors.Is(err, ai.ErrModelTimeout):
		utils.RespondWithGatewayTimeout(c, "The model took too long to respond. Please try again.")
	case errors.Is(err, ai.ErrModelConnection):
		utils.RespondWithServiceUnavailable(c, "The model service is unreachable. Please try again later.")
	case errors.Is(err, store.ErrStorageUnavailable):
		utils.RespondWithServiceUnavailable(c, "Document store is unavailable")
	case errors.As(err, &httpErr):
		utils.RespondWithError(c, httpErr.Status, "model_error", "The model service returned an error", gin.H{
			"upstream_status": httpErr.Status,
		})
	default:
		utils.RespondWithInternalError(c, "Failed to process chat turn", nil)
	}
}
