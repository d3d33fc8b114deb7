package config

import (
	"github.com/elastic/go-elasticsearch/v8"
)

func NewElasticsearchClient(cfg *Config) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.ElasticsearchURLs,
		Username:  cfg.ElasticsearchUsername,
		Password:  cfg.ElasticsearchPassword,
	})
}
