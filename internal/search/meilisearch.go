package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/meilisearch/meilisearch-go"

	"cinespot/internal/domain/location"
)

const indexUID = "locations"

// Client wraps a Meilisearch index over the searchable location
// fields. It is optional infrastructure: the location service treats a
// nil indexer as "no external index" and every query failure falls
// back to the store's own search.
type Client struct {
	client *meilisearch.Client
}

func NewClient(host, apiKey string) *Client {
	return &Client{
		client: meilisearch.NewClient(meilisearch.ClientConfig{
			Host:   host,
			APIKey: apiKey,
		}),
	}
}

// InitIndex creates the index and configures which fields are
// searchable. Safe to call on every startup.
func (c *Client) InitIndex() error {
	_, err := c.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        indexUID,
		PrimaryKey: "id",
	})
	if err != nil {
		var mErr *meilisearch.Error
		if !errors.As(err, &mErr) || mErr.MeilisearchApiError.Code != "index_already_exists" {
			return err
		}
	}

	_, err = c.client.Index(indexUID).UpdateSearchableAttributes(&[]string{
		"name",
		"description",
		"movie",
	})
	return err
}

type document struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Movie       string `json:"movie"`
}

func (c *Client) Index(_ context.Context, loc *location.Location) error {
	doc := document{
		ID:          loc.ID,
		Name:        loc.Name,
		Description: loc.Description,
	}
	if loc.Movie != nil {
		doc.Movie = *loc.Movie
	}

	_, err := c.client.Index(indexUID).AddDocuments([]document{doc})
	return err
}

func (c *Client) Remove(_ context.Context, id string) error {
	_, err := c.client.Index(indexUID).DeleteDocument(id)
	return err
}

// Search returns matching location ids in relevance order.
func (c *Client) Search(_ context.Context, query string) ([]string, error) {
	res, err := c.client.Index(indexUID).Search(query, &meilisearch.SearchRequest{
		Limit: 200,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		doc, ok := hit.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("unexpected hit shape %T", hit)
		}
		if id, ok := doc["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Reindex pushes a full set of records. The seeder calls it after
// inserting directly into the store; the service's SyncIndex covers
// the same gap on API startup.
func (c *Client) Reindex(ctx context.Context, locs []location.Location) error {
	for i := range locs {
		if err := c.Index(ctx, &locs[i]); err != nil {
			return err
		}
	}
	return nil
}
