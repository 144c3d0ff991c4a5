package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

const providerMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "name":       {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "country":    {"type": "keyword"},
      "city":       {"type": "keyword"},
      "services":   {"type": "text"},
      "industries": {"type": "keyword"},
      "standTypes": {"type": "keyword"},
      "rating":     {"type": "float"},
      "verified":   {"type": "boolean"},
      "updatedAt":  {"type": "date"}
    }
  }
}`

// SearchDocument is the projection of a provider kept in the search index.
type SearchDocument struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Country    string   `json:"country"`
	City       string   `json:"city"`
	Services   []string `json:"services"`
	Industries []string `json:"industries"`
	StandTypes []string `json:"standTypes"`
	Rating     float64  `json:"rating"`
	Verified   bool     `json:"verified"`
	UpdatedAt  string   `json:"updatedAt,omitempty"`
}

func NewSearchDocument(p models.ProviderProfile) SearchDocument {
	doc := SearchDocument{
		ID:         p.ID,
		Name:       p.Name,
		Country:    p.Location.Country,
		City:       p.Location.City,
		Services:   p.Services,
		Industries: p.Industries,
		StandTypes: p.Portfolio.StandTypes,
		Rating:     p.Ratings.Overall,
		Verified:   p.Verified,
	}
	if !p.UpdatedAt.IsZero() {
		doc.UpdatedAt = p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return doc
}

// SearchIndex keeps the provider search index in step with the store.
type SearchIndex struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewSearchIndex(client *elasticsearch.Client, index string, log logger.Logger) *SearchIndex {
	return &SearchIndex{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "search-index", "index": index}),
	}
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (s *SearchIndex) EnsureIndex(ctx context.Context) error {
	res, err := s.client.Indices.Exists([]string{s.index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", s.index, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = s.client.Indices.Create(
		s.index,
		s.client.Indices.Create.WithBody(strings.NewReader(providerMapping)),
		s.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", s.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", s.index, res.Status())
	}

	s.logger.Info("search index created", nil)
	return nil
}

func (s *SearchIndex) IndexProvider(ctx context.Context, p models.ProviderProfile) error {
	body, err := json.Marshal(NewSearchDocument(p))
	if err != nil {
		return fmt.Errorf("encode search document %s: %w", p.ID, err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithDocumentID(p.ID),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index provider %s: %w", p.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index provider %s: %s", p.ID, res.Status())
	}
	return nil
}

// RemoveProvider deletes a provider document. A missing document is not an
// error.
func (s *SearchIndex) RemoveProvider(ctx context.Context, id string) error {
	res, err := s.client.Delete(s.index, id, s.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("remove provider %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("remove provider %s: %s", id, res.Status())
	}
	return nil
}
