package location

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"cinespot/internal/domain/upload"
	"cinespot/internal/pkg/response"
	"cinespot/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /locations: multipart text fields plus 0..5
// image files under the "images" field.
func (h *Handler) Create(c *gin.Context) {
	form, files, ok := h.bindForm(c)
	if !ok {
		return
	}

	loc, err := h.service.Create(c.Request.Context(), CreateInput{
		Name:        form.Name,
		Description: form.Description,
		Movie:       form.Movie,
		Latitude:    *form.Latitude,
		Longitude:   *form.Longitude,
		Files:       files,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, loc)
}

// Update handles PUT /locations/:id: full-record replace; new files,
// when present, replace the stored image list.
func (h *Handler) Update(c *gin.Context) {
	form, files, ok := h.bindForm(c)
	if !ok {
		return
	}

	loc, err := h.service.Update(c.Request.Context(), c.Param("id"), CreateInput{
		Name:        form.Name,
		Description: form.Description,
		Movie:       form.Movie,
		Latitude:    *form.Latitude,
		Longitude:   *form.Longitude,
		Files:       files,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, loc)
}

// List handles GET /locations with an optional ?q= full-text query.
func (h *Handler) List(c *gin.Context) {
	locs, err := h.service.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, locs)
}

func (h *Handler) GetByID(c *gin.Context) {
	loc, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, loc)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Location deleted successfully")
}

func (h *Handler) bindForm(c *gin.Context) (*LocationForm, []*multipart.FileHeader, bool) {
	var form LocationForm
	if err := c.ShouldBind(&form); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR",
			"Invalid form data", err.Error())
		return nil, nil, false
	}

	if fields := validator.Validate(form); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR",
			"Name, description, latitude, and longitude are required", fields)
		return nil, nil, false
	}

	var files []*multipart.FileHeader
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		files = mf.File["images"]
	}

	return &form, files, true
}

func handleError(c *gin.Context, err error) {
	var (
		vErr *ValidationError
		sErr *StorageError
	)

	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Location not found")
	case errors.As(err, &vErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR",
			vErr.Error(), vErr.Fields)
	case errors.Is(err, upload.ErrUnsupportedMediaType):
		response.Error(c, http.StatusBadRequest, "UNSUPPORTED_MEDIA_TYPE", err.Error())
	case errors.Is(err, upload.ErrEmptyFile), errors.Is(err, upload.ErrTooManyFiles):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, upload.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", err.Error())
	case errors.As(err, &sErr):
		response.Error(c, http.StatusInternalServerError, "STORAGE_ERROR", sErr.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "STORAGE_ERROR", err.Error())
	}
}
