package movie

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	movies := r.Group("/movies")
	{
		movies.GET("/search", h.Search)
		movies.GET("/top", h.TopRated)
		movies.GET("/:id", h.Details)
	}
}
