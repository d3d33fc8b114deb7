package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticIndex talks to Elasticsearch through the official client.
type ElasticIndex struct {
	es *elasticsearch.Client
}

func NewElasticIndex(es *elasticsearch.Client) *ElasticIndex {
	return &ElasticIndex{es: es}
}

func (e *ElasticIndex) EnsureIndex(ctx context.Context, index string, settings map[string]interface{}) error {
	res, err := e.es.Indices.Exists([]string{index}, e.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	res, err = e.es.Indices.Create(index,
		e.es.Indices.Create.WithBody(bytes.NewReader(body)),
		e.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()
	return responseError(res, "create index "+index)
}

func (e *ElasticIndex) Upsert(ctx context.Context, index, id string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := e.es.Index(index, bytes.NewReader(body),
		e.es.Index.WithDocumentID(id),
		e.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index %s/%s: %w", index, id, err)
	}
	defer res.Body.Close()
	return responseError(res, "index "+index+"/"+id)
}

// Delete treats a missing document as already deleted.
func (e *ElasticIndex) Delete(ctx context.Context, index, id string) error {
	res, err := e.es.Delete(index, id, e.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", index, id, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError(res, "delete "+index+"/"+id)
}

func (e *ElasticIndex) Search(ctx context.Context, index string, query map[string]interface{}) (*Result, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	res, err := e.es.Search(
		e.es.Search.WithContext(ctx),
		e.es.Search.WithIndex(index),
		e.es.Search.WithBody(bytes.NewReader(body)),
		e.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}
	defer res.Body.Close()
	if err := responseError(res, "search "+index); err != nil {
		return nil, err
	}

	var payload struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string          `json:"_id"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	result := &Result{Total: payload.Hits.Total.Value, Hits: make([]Hit, 0, len(payload.Hits.Hits))}
	for _, h := range payload.Hits.Hits {
		result.Hits = append(result.Hits, Hit{ID: h.ID, Source: h.Source})
	}
	return result, nil
}

func responseError(res *esapi.Response, op string) error {
	if !res.IsError() {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("%s: %s: %s", op, res.Status(), bytes.TrimSpace(msg))
}
