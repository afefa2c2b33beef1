package config

import (
	pkgconfig "github.com/yogeshjoga/elastic-search-hints-api/pkg/config"
)

type Config struct {
	Server        ServerConfig
	Elasticsearch ElasticsearchConfig
	CORS          CORSConfig `mapstructure:"cors"`
	Log           LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("elasticsearch.index", "clothing_prompts")
	v.SetDefault("cors.allow_origins", []string{"*"})
	v.SetDefault("log.level", "info")

	// Bind environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("elasticsearch.addresses", "ES_ADDRESSES")
	v.BindEnv("elasticsearch.index", "ES_INDEX")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
