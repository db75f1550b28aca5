package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/blogpost/internal/models"
)

var ErrSearch = errors.New("search error")

type Indexer interface {
	IndexBlog(ctx context.Context, b *models.Blog) error
	DeleteBlog(ctx context.Context, id string) error
	SearchBlogs(ctx context.Context, query string, from, size int) (int64, []models.Blog, error)
}

type ESIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch info: %s", res.Status())
	}
	return client, nil
}

func NewESIndex(es *elasticsearch.Client, index string) *ESIndex {
	return &ESIndex{ES: es, Index: index}
}

func (s *ESIndex) IndexBlog(ctx context.Context, b *models.Blog) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(b); err != nil {
		return fmt.Errorf("%w: encode blog: %v", ErrSearch, err)
	}

	res, err := s.ES.Index(s.Index, &buf,
		s.ES.Index.WithContext(ctx),
		s.ES.Index.WithDocumentID(b.ID),
		s.ES.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("%w: index blog: %v", ErrSearch, err)
	}
	return checkResponse(res, "index blog")
}

func (s *ESIndex) DeleteBlog(ctx context.Context, id string) error {
	res, err := s.ES.Delete(s.Index, id, s.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: delete blog: %v", ErrSearch, err)
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return checkResponse(res, "delete blog")
}

func (s *ESIndex) SearchBlogs(ctx context.Context, query string, from, size int) (int64, []models.Blog, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^3", "hashtags^2", "content"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("%w: encode query: %v", ErrSearch, err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("%w: %s", ErrSearch, res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Blog `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("%w: decode response: %v", ErrSearch, err)
	}

	blogs := make([]models.Blog, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		blogs[i] = hit.Source
	}
	return r.Hits.Total.Value, blogs, nil
}

func checkResponse(res *esapi.Response, op string) error {
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("%w: %s: %s: %s", ErrSearch, op, res.Status(), msg)
	}
	return nil
}
