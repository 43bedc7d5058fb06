package router

import (
	"net/http"

	"capoff/internal/handlers"
	"capoff/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.Engine,
	auth *handlers.AuthHandler,
	attempts *handlers.AttemptHandler,
	votes *handlers.VoteHandler,
	comments *handlers.CommentHandler,
	uploads *handlers.UploadHandler,
) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Session exchange: the identity provider hands the client a token, we
	// trade it for a cookie session
	r.POST("/auth/session", auth.CreateSession)
	r.GET("/auth/session", auth.CurrentSession)
	r.DELETE("/auth/session", auth.DeleteSession)

	// Public reads
	api := r.Group("/api")
	{
		api.GET("/attempts", attempts.List)          // feed, ?tool= filter
		api.GET("/attempts/:aid", attempts.Detail)   // attempt + comments
		api.GET("/tools", attempts.Tools)            // browse-by-tool stats
		api.GET("/suggestions", attempts.Suggestions) // autocomplete data
	}

	// Authenticated writes
	authorized := r.Group("/api")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/attempts", attempts.Create)
		authorized.DELETE("/attempts/:aid", attempts.Delete)
		authorized.POST("/attempts/:aid/vote", votes.Cast)
		authorized.POST("/attempts/:aid/comments", comments.Create)

		authorized.POST("/uploads", uploads.Create)
		authorized.GET("/uploads/:id", uploads.Status)
	}
}
