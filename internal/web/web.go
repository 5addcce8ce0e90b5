package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Handler serves the page shell for the web client. The pages call the
// JSON API from the browser, same as the original fetch-and-render
// frontend: the server side here is only template delivery.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func Templates() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/*.html"))
}

// RegisterRoutes mounts the page routes on the root router.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/", h.page("home.html", "CineSpot"))
	r.GET("/locations", h.page("locations.html", "Filming Locations"))
	r.GET("/locations/:id", h.page("location.html", "Location"))
	r.GET("/movies", h.page("movies.html", "Movie Search"))
	r.GET("/add", h.page("add.html", "Add Location"))
	r.GET("/admin", h.page("admin_login.html", "Admin Login"))
	r.GET("/admin/dashboard", h.page("admin_dashboard.html", "Admin Dashboard"))
}

func (h *Handler) page(name, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name, gin.H{"Title": title})
	}
}
