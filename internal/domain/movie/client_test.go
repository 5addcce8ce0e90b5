package movie

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStub(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("query") != "inception" {
			fmt.Fprint(w, `{"results": []}`)
			return
		}
		fmt.Fprint(w, `{"results": [
			{"id": 27205, "title": "Inception", "release_date": "2010-07-15",
			 "poster_path": "/poster.jpg", "overview": "A thief enters dreams.", "vote_average": 8.4}
		]}`)
	})
	mux.HandleFunc("/movie/top_rated", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [
			{"id": 1, "title": "First", "vote_average": 9.3},
			{"id": 2, "title": "Second", "vote_average": 9.2},
			{"id": 3, "title": "Third", "vote_average": 9.0}
		]}`)
	})
	mux.HandleFunc("/movie/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/1":
			fmt.Fprint(w, `{"id": 1, "title": "First", "runtime": 142, "genres": [{"id": 18, "name": "Drama"}]}`)
		case "/movie/2":
			// Per-item failure: the ranking entry survives.
			w.WriteHeader(http.StatusInternalServerError)
		case "/movie/3":
			fmt.Fprint(w, `{"id": 3, "title": "Third", "runtime": 96}`)
		case "/movie/27205":
			fmt.Fprint(w, `{"id": 27205, "title": "Inception", "runtime": 148}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL, "test-key")
}

func TestClient_SearchByTitle(t *testing.T) {
	_, c := newStub(t)

	movies, err := c.SearchByTitle(context.Background(), "inception")
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, int64(27205), movies[0].ID)
	assert.Equal(t, "Inception", movies[0].Title)
	assert.Equal(t, "2010-07-15", movies[0].ReleaseDate)
	assert.Equal(t, "/poster.jpg", movies[0].PosterPath)

	movies, err = c.SearchByTitle(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestClient_Details(t *testing.T) {
	_, c := newStub(t)

	m, err := c.Details(context.Background(), 27205)
	require.NoError(t, err)
	assert.Equal(t, "Inception", m.Title)
	assert.Equal(t, 148, m.Runtime)

	_, err = c.Details(context.Background(), 99999)
	assert.Error(t, err)
}

func TestClient_TopRated_ParallelAggregationKeepsOrder(t *testing.T) {
	_, c := newStub(t)

	movies, err := c.TopRated(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 3)

	// Ranking order preserved through the parallel detail fetches.
	assert.Equal(t, "First", movies[0].Title)
	assert.Equal(t, "Second", movies[1].Title)
	assert.Equal(t, "Third", movies[2].Title)

	// Detail enrichment landed where it succeeded.
	assert.Equal(t, 142, movies[0].Runtime)
	require.Len(t, movies[0].Genres, 1)
	assert.Equal(t, 96, movies[2].Runtime)

	// The failed detail fetch left the ranking entry untouched.
	assert.Equal(t, 0, movies[1].Runtime)
	assert.Equal(t, 9.2, movies[1].VoteAverage)
}

func TestClient_BadAPIKey(t *testing.T) {
	srv, _ := newStub(t)
	c := NewClient(srv.URL, "wrong-key")

	_, err := c.SearchByTitle(context.Background(), "inception")
	assert.Error(t, err)
}

func TestClient_UpstreamUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "test-key")

	_, err := c.SearchByTitle(context.Background(), "inception")
	assert.Error(t, err)

	_, err = c.TopRated(context.Background())
	assert.Error(t, err)
}
