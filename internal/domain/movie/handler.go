package movie

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cinespot/internal/pkg/response"
)

type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// Search handles GET /movies/search?q=.
func (h *Handler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Query parameter q is required")
		return
	}

	movies, err := h.client.SearchByTitle(c.Request.Context(), q)
	if err != nil {
		response.Error(c, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
		return
	}

	response.Success(c, http.StatusOK, movies)
}

// TopRated handles GET /movies/top.
func (h *Handler) TopRated(c *gin.Context) {
	movies, err := h.client.TopRated(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
		return
	}

	response.Success(c, http.StatusOK, movies)
}

// Details handles GET /movies/:id.
func (h *Handler) Details(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid movie ID")
		return
	}

	m, err := h.client.Details(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
		return
	}

	response.Success(c, http.StatusOK, m)
}
