package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/atlas-backend/internal/clients/redis"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
	"github.com/yungbote/atlas-backend/internal/platform/openai"
)

type Clients struct {
	Catalogue  redis.CatalogueCache
	Completion openai.Client
}

func wireClients(cfg Config, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	ttl := time.Duration(cfg.RedisCatalogueTTLSeconds) * time.Second

	// Redis
	var cache redis.CatalogueCache
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		c, err := redis.NewCatalogueCache(redis.Config{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
			TTL:       ttl,
		}, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis catalogue cache: %w", err)
		}
		cache = c
	} else {
		cache = redis.NewMemoryCatalogueCache(ttl)
	}

	// Completion
	completion := openai.NewClient(openai.Config{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout(),
	}, log)
	if !completion.Enabled() {
		log.Warn("Completion service not configured, mentor answers from the fallback table")
	}

	return Clients{
		Catalogue:  cache,
		Completion: completion,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Catalogue != nil {
		_ = c.Catalogue.Close()
	}
}
