package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cinespot/internal/database"
	"cinespot/internal/domain/auth"
	"cinespot/internal/domain/location"
	"cinespot/internal/domain/movie"
	"cinespot/internal/domain/upload"
	"cinespot/internal/middleware"
	jwtsvc "cinespot/internal/pkg/jwt"
)

const (
	baseURL       = "http://localhost:8080"
	adminEmail    = "admin@cinespot.local"
	adminPassword = "admin123"
)

type suite struct {
	router *gin.Engine
	db     *gorm.DB
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type locationDoc struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Movie       *string  `json:"movie"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Images      []string `json:"images"`
}

func setupSuite(t *testing.T) *suite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&location.Location{}, &auth.Admin{}))

	j := jwtsvc.New("e2e-secret", time.Hour)

	uploadSvc := upload.NewService(t.TempDir(), "/uploads")

	locationRepo := location.NewRepository(db)
	locationSvc := location.NewService(locationRepo, uploadSvc, nil, baseURL)
	locationHandler := location.NewHandler(locationSvc)

	authRepo := auth.NewRepository(db)
	authSvc := auth.NewService(authRepo, j)
	authHandler := auth.NewHandler(authSvc)
	require.NoError(t, authSvc.EnsureAdmin(context.Background(), adminEmail, adminPassword))

	tmdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [{"id": 1, "title": "Stub Movie"}]}`)
	}))
	t.Cleanup(tmdb.Close)
	movieHandler := movie.NewHandler(movie.NewClient(tmdb.URL, "e2e-key"))

	r := gin.New()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		auth.RegisterRoutes(v1, authHandler)
		movie.RegisterRoutes(v1, movieHandler)

		protected := v1.Group("/")
		protected.Use(middleware.RequireAdmin(j))

		location.RegisterRoutes(v1, protected, locationHandler)
	}

	return &suite{router: r, db: db}
}

func (s *suite) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func (s *suite) login(t *testing.T) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"email":    adminEmail,
		"password": adminPassword,
	})
	w, resp := s.do(t, http.MethodPost, "/api/v1/auth/login", "", bytes.NewReader(body), "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

type formFile struct {
	name        string
	contentType string
	content     []byte
}

func locationForm(t *testing.T, fields map[string]string, files []formFile) (io.Reader, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="images"; filename="%s"`, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func validFields() map[string]string {
	return map[string]string{
		"name":        "Glenfinnan Viaduct",
		"description": "Railway viaduct featured in the flying car scene",
		"movie":       "Harry Potter and the Chamber of Secrets",
		"latitude":    "56.8762",
		"longitude":   "-5.4312",
	}
}

func TestCreateGetDeleteFlow(t *testing.T) {
	s := setupSuite(t)
	token := s.login(t)

	body, ct := locationForm(t, validFields(), []formFile{
		{"photo.jpg", "image/jpeg", []byte("jpeg-bytes")},
	})
	w, resp := s.do(t, http.MethodPost, "/api/v1/locations", token, body, ct)
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, resp.Success)

	var created locationDoc
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	require.NotEmpty(t, created.ID)
	require.Len(t, created.Images, 1)
	assert.True(t, strings.HasPrefix(created.Images[0], baseURL+"/uploads/"))

	// Round trip.
	w, resp = s.do(t, http.MethodGet, "/api/v1/locations/"+created.ID, "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got locationDoc
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, created, got)

	// Delete, then the id is gone.
	w, resp = s.do(t, http.MethodDelete, "/api/v1/locations/"+created.ID, token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	w, resp = s.do(t, http.MethodGet, "/api/v1/locations/"+created.ID, "", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestCreate_ValidationErrors(t *testing.T) {
	s := setupSuite(t)
	token := s.login(t)

	for _, missing := range []string{"name", "description", "latitude", "longitude"} {
		fields := validFields()
		delete(fields, missing)

		body, ct := locationForm(t, fields, nil)
		w, resp := s.do(t, http.MethodPost, "/api/v1/locations", token, body, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code, "missing %s", missing)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	}

	// Movie is optional.
	fields := validFields()
	delete(fields, "movie")
	body, ct := locationForm(t, fields, nil)
	w, resp := s.do(t, http.MethodPost, "/api/v1/locations", token, body, ct)
	require.Equal(t, http.StatusCreated, w.Code)
	var created locationDoc
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Nil(t, created.Movie)

	// Failed creates persisted nothing: only the one valid record shows.
	w, resp = s.do(t, http.MethodGet, "/api/v1/locations", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []locationDoc
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Len(t, list, 1)
}

func TestListAndSearch(t *testing.T) {
	s := setupSuite(t)
	token := s.login(t)

	records := []map[string]string{
		{"name": "Bridge", "description": "featured waterfall scene", "movie": "X",
			"latitude": "1", "longitude": "2"},
		{"name": "Desert Outpost", "description": "dunes at dawn", "movie": "Lawrence of Arabia",
			"latitude": "3", "longitude": "4"},
	}
	for _, fields := range records {
		body, ct := locationForm(t, fields, nil)
		w, _ := s.do(t, http.MethodPost, "/api/v1/locations", token, body, ct)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// No query returns everything.
	w, resp := s.do(t, http.MethodGet, "/api/v1/locations", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []locationDoc
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Len(t, list, 2)

	// Empty query is the same set.
	w, resp = s.do(t, http.MethodGet, "/api/v1/locations?q=", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	list = nil
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Len(t, list, 2)

	// Term only in description.
	w, resp = s.do(t, http.MethodGet, "/api/v1/locations?q=waterfall", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	list = nil
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Bridge", list[0].Name)
}

func TestLegacyImageShapeNormalizedOnList(t *testing.T) {
	s := setupSuite(t)

	// A historical record with the singular string shape.
	require.NoError(t, s.db.Exec(
		`INSERT INTO locations (id, name, description, movie, latitude, longitude, images, image, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?, ?)`,
		"legacy-1", "Old Bridge", "from the archive", "X", 1.0, 2.0, "/uploads/a.png",
		time.Now(), time.Now(),
	).Error)

	w, resp := s.do(t, http.MethodGet, "/api/v1/locations", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var list []locationDoc
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, []string{baseURL + "/uploads/a.png"}, list[0].Images)
}

func TestUploadRejections(t *testing.T) {
	s := setupSuite(t)
	token := s.login(t)

	// Spoofed content type on a bad extension.
	body, ct := locationForm(t, validFields(), []formFile{
		{"payload.exe", "image/png", []byte("MZ...")},
	})
	w, resp := s.do(t, http.MethodPost, "/api/v1/locations", token, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_MEDIA_TYPE", resp.Error.Code)

	// 6 MiB image.
	body, ct = locationForm(t, validFields(), []formFile{
		{"big.jpg", "image/jpeg", bytes.Repeat([]byte("x"), 6*1024*1024)},
	})
	w, resp = s.do(t, http.MethodPost, "/api/v1/locations", token, body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", resp.Error.Code)

	// One over the per-record file limit.
	var six []formFile
	for i := 0; i < 6; i++ {
		six = append(six, formFile{fmt.Sprintf("photo-%d.jpg", i), "image/jpeg", []byte("jpeg-bytes")})
	}
	body, ct = locationForm(t, validFields(), six)
	w, resp = s.do(t, http.MethodPost, "/api/v1/locations", token, body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	// Rejected creates persisted nothing.
	w, resp = s.do(t, http.MethodGet, "/api/v1/locations", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []locationDoc
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Empty(t, list)
}

func TestUpdateFlow(t *testing.T) {
	s := setupSuite(t)
	token := s.login(t)

	body, ct := locationForm(t, validFields(), nil)
	w, resp := s.do(t, http.MethodPost, "/api/v1/locations", token, body, ct)
	require.Equal(t, http.StatusCreated, w.Code)
	var created locationDoc
	require.NoError(t, json.Unmarshal(resp.Data, &created))

	fields := validFields()
	fields["name"] = "Renamed Viaduct"
	body, ct = locationForm(t, fields, nil)
	w, resp = s.do(t, http.MethodPut, "/api/v1/locations/"+created.ID, token, body, ct)
	require.Equal(t, http.StatusOK, w.Code)
	var updated locationDoc
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Renamed Viaduct", updated.Name)

	body, ct = locationForm(t, validFields(), nil)
	w, resp = s.do(t, http.MethodPut, "/api/v1/locations/no-such-id", token, body, ct)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestAuthRequiredOnMutations(t *testing.T) {
	s := setupSuite(t)

	body, ct := locationForm(t, validFields(), nil)
	w, resp := s.do(t, http.MethodPost, "/api/v1/locations", "", body, ct)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)

	w, resp = s.do(t, http.MethodDelete, "/api/v1/locations/some-id", "garbage-token", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)

	// Reads stay public.
	w, _ = s.do(t, http.MethodGet, "/api/v1/locations", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	s := setupSuite(t)

	body, _ := json.Marshal(map[string]string{
		"email":    adminEmail,
		"password": "wrong",
	})
	w, resp := s.do(t, http.MethodPost, "/api/v1/auth/login", "", bytes.NewReader(body), "application/json")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}

func TestMoviePathIndependentOfStore(t *testing.T) {
	s := setupSuite(t)

	w, resp := s.do(t, http.MethodGet, "/api/v1/movies/search?q=stub", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	w, resp = s.do(t, http.MethodGet, "/api/v1/movies/top", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}
