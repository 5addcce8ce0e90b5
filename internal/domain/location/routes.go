package location

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the read routes on the public group and the
// mutating routes on the admin-protected group.
func RegisterRoutes(public, protected *gin.RouterGroup, h *Handler) {
	public.GET("/locations", h.List)
	public.GET("/locations/:id", h.GetByID)

	protected.POST("/locations", h.Create)
	protected.PUT("/locations/:id", h.Update)
	protected.DELETE("/locations/:id", h.Delete)
}
