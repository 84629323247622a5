package apihandlers

import (
	"net/http"
	"strconv"

	"servicebot/internal/app"

	"github.com/gin-gonic/gin"
)

type APIHandler struct {
	App *app.App
}

func NewAPIHandler(a *app.App) *APIHandler {
	return &APIHandler{App: a}
}

// CreateConversationRequest is the body of POST /api/conversations.
type CreateConversationRequest struct {
	InitialMessage string `json:"initial_message"`
}

// AddMessageRequest is the body of POST /api/conversations/:id/messages.
type AddMessageRequest struct {
	Content string `json:"content"`
}

func (h *APIHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.App.HealthService.Check(c.Request.Context()))
}

func (h *APIHandler) CreateConversationHandler(c *gin.Context) {
	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	res, err := h.App.ConversationService.CreateConversation(c.Request.Context(), req.InitialMessage)
	if err != nil {
		respondServiceError(c, "CreateConversationHandler", err, "Initial message is required", "Conversation not found")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *APIHandler) AddMessageHandler(c *gin.Context) {
	var req AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	res, err := h.App.ConversationService.AddMessage(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		respondServiceError(c, "AddMessageHandler", err, "Message content is required", "Conversation not found")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *APIHandler) GetConversationHandler(c *gin.Context) {
	res, err := h.App.ConversationService.GetConversation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, "GetConversationHandler", err, "Invalid conversation id", "Conversation not found")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *APIHandler) ListConversationsHandler(c *gin.Context) {
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		BadRequest(c, "Invalid limit parameter")
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		BadRequest(c, "Invalid offset parameter")
		return
	}

	convs, err := h.App.ConversationService.ListConversations(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		respondServiceError(c, "ListConversationsHandler", err, "Invalid status parameter", "Conversation not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

func (h *APIHandler) ListCategoriesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.App.ConversationService.Categories()})
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
