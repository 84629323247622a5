package apihandlers

import (
	"servicebot/internal/app"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(a *app.App) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(), CORSMiddleware(a.Config.Server.CORSOrigins))

	h := NewAPIHandler(a)
	router.GET("/health", h.HealthHandler)

	api := router.Group("/api")
	{
		conversations := api.Group("/conversations")
		{
			conversations.POST("", h.CreateConversationHandler)
			conversations.GET("", h.ListConversationsHandler)
			conversations.GET("/:id", h.GetConversationHandler)
			conversations.POST("/:id/messages", h.AddMessageHandler)
		}
		api.GET("/categories", h.ListCategoriesHandler)
	}
	return router
}
