package main

import (
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yogeshjoga/elastic-search-hints-api/internal/config"
	"github.com/yogeshjoga/elastic-search-hints-api/internal/handler"
	"github.com/yogeshjoga/elastic-search-hints-api/internal/repository"
	"github.com/yogeshjoga/elastic-search-hints-api/internal/service"
	pkglog "github.com/yogeshjoga/elastic-search-hints-api/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: "search-gateway",
	})
	logger := pkglog.L()

	// Initialize the Elasticsearch repository. A missing or broken backend
	// is not fatal: the gateway still serves / and /health, and the search
	// endpoints answer 503 until the backend is configured.
	var searchRepo repository.SearchRepository
	if len(cfg.Elasticsearch.Addresses) == 0 {
		logger.Warn().Msg("no elasticsearch addresses configured, search endpoints will return 503")
	} else {
		esClient, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: cfg.Elasticsearch.Addresses,
		})
		if err != nil {
			logger.Error().Err(err).Msg("failed to create elasticsearch client, search endpoints will return 503")
		} else {
			searchRepo = repository.NewESSearchRepository(esClient, cfg.Elasticsearch.Index)

			// Startup reachability check, informational only.
			if res, err := esClient.Info(); err != nil {
				logger.Warn().Err(err).Msg("elasticsearch not reachable at startup")
			} else {
				res.Body.Close()
				logger.Info().
					Strs("addresses", cfg.Elasticsearch.Addresses).
					Str("index", cfg.Elasticsearch.Index).
					Msg("elasticsearch connected")
			}
		}
	}

	// Initialize service
	searchService := service.NewSearchService(searchRepo)

	// Initialize HTTP handler
	httpHandler := handler.NewHandler(searchService)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))
	r.Use(cors.New(corsConfig(cfg.CORS.AllowOrigins)))

	// Register routes
	httpHandler.RegisterRoutes(r)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("search gateway starting")
	if err := r.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 1 && origins[0] == "*" {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AllowHeaders = []string{"*"}
	return c
}
