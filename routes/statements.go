package routes

import (
	"arguepulse/controllers"

	"github.com/gin-gonic/gin"
)

// SetupStatementRoutes registers the public statement and vote routes
func SetupStatementRoutes(router gin.IRouter, sc *controllers.StatementController) {
	api := router.Group("/api")
	{
		api.GET("/statements", sc.GetStatements)
		api.GET("/statements/:id", sc.GetStatement)
		api.POST("/statements", sc.CreateStatement)
		api.POST("/vote", sc.SubmitVote)
	}

	router.GET("/ws/statements/:id", sc.StreamTallies)
}

// SetupAdminRoutes registers the generation endpoints
func SetupAdminRoutes(router gin.IRouter, sc *controllers.StatementController) {
	admin := router.Group("/api/admin")
	{
		admin.POST("/generate-statements", sc.GenerateStatements)
		admin.POST("/statements/:id/generate", sc.FillStatementContent)
	}
}
