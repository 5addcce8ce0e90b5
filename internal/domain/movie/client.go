package movie

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Movie is the subset of TMDB metadata the catalog pages use.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
	Runtime     int     `json:"runtime,omitempty"`
	Genres      []Genre `json:"genres,omitempty"`
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Client talks to the TMDB HTTP API. It lives on an independent
// request path: its failures never reach the location endpoints.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (c *Client) SearchByTitle(ctx context.Context, query string) ([]Movie, error) {
	var out struct {
		Results []Movie `json:"results"`
	}
	err := c.get(ctx, "/search/movie", url.Values{"query": {query}}, &out)
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) Details(ctx context.Context, id int64) (*Movie, error) {
	var m Movie
	err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), nil, &m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// TopRated returns the first page of TMDB's top-rated ranking, each
// entry enriched with its full details. Detail fetches run in
// parallel, one per item, and the aggregate preserves ranking order;
// an item whose detail fetch fails keeps its ranking-list fields.
func (c *Client) TopRated(ctx context.Context) ([]Movie, error) {
	var out struct {
		Results []Movie `json:"results"`
	}
	err := c.get(ctx, "/movie/top_rated", url.Values{
		"language": {"en-US"},
		"page":     {"1"},
	}, &out)
	if err != nil {
		return nil, err
	}

	movies := out.Results
	type result struct {
		idx    int
		detail *Movie
	}
	results := make(chan result, len(movies))

	for i := range movies {
		go func(idx int, id int64) {
			detail, err := c.Details(ctx, id)
			if err != nil {
				detail = nil
			}
			results <- result{idx: idx, detail: detail}
		}(i, movies[i].ID)
	}

	for range movies {
		r := <-results
		if r.detail != nil {
			movies[r.idx] = *r.detail
		}
	}

	return movies, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
