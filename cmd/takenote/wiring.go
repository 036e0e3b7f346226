package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/takenote/internal/config"
	"github.com/kailas-cloud/takenote/internal/db"
	dbRedis "github.com/kailas-cloud/takenote/internal/db/redis"
	"github.com/kailas-cloud/takenote/internal/domain"
	"github.com/kailas-cloud/takenote/internal/metrics"
	"github.com/kailas-cloud/takenote/internal/repository/embcache"
	noterepo "github.com/kailas-cloud/takenote/internal/repository/note"
	hf "github.com/kailas-cloud/takenote/internal/transport/huggingface"
	openaiEmb "github.com/kailas-cloud/takenote/internal/transport/openai"
	analysisuc "github.com/kailas-cloud/takenote/internal/usecase/analysis"
	embeddinguc "github.com/kailas-cloud/takenote/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/takenote/internal/usecase/health"
	noteuc "github.com/kailas-cloud/takenote/internal/usecase/note"
)

// storage is the note store selected by database.driver.
type storage struct {
	notes  noteuc.Repository
	pinger healthuc.StorePinger
	// cache backs the embedding cache; nil for sqlite.
	cache db.KVStore
	close func()
}

func openStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (*storage, error) {
	switch cfg.Database.Driver {
	case config.DriverValkey, config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
		}
		timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("database not ready: %w", err)
		}
		logger.Info("Connected to database",
			zap.String("driver", cfg.Database.Driver),
			zap.Strings("addrs", cfg.Database.Addrs),
		)
		return &storage{
			notes:  noterepo.NewRedis(store, cfg.Storage.KeyPrefix),
			pinger: store,
			cache:  store,
			close:  store.Close,
		}, nil

	case config.DriverSQLite:
		repo, err := noterepo.OpenSQLite(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("Opened database",
			zap.String("driver", cfg.Database.Driver),
			zap.String("path", cfg.Database.Path),
		)
		return &storage{
			notes:  repo,
			pinger: repo,
			close:  func() { _ = repo.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

// buildProviders assembles the inference providers: Hugging Face always,
// and the OpenAI-compatible similarity provider (OpenAI -> Cached) when
// configured. cache may be nil.
func buildProviders(cfg config.Config, cache db.KVStore, logger *zap.Logger) (analysisuc.Providers, *hf.Client) {
	hfCfg := cfg.Inference.HuggingFace
	client := hf.New(&hf.Config{
		BaseURL: hfCfg.BaseURL,
		APIKey:  hfCfg.APIKey,
		Timeout: time.Duration(hfCfg.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	providers := analysisuc.Providers{hf.ProviderName: client}

	oaCfg := cfg.Inference.OpenAI
	if oaCfg.Enabled() {
		var embedder domain.Embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:  oaCfg.APIKey,
			BaseURL: oaCfg.BaseURL,
			Model:   oaCfg.Model,
			Timeout: time.Duration(oaCfg.TimeoutSec) * time.Second,
			Logger:  logger,
		})
		if cache != nil {
			embedder = embcache.New(embedder, cache, cfg.Storage.KeyPrefix, oaCfg.Model,
				metrics.EmbeddingCacheTotal, logger)
		}
		providers[openaiEmb.ProviderName] = embeddinguc.NewSimilarityProvider(
			openaiEmb.ProviderName, oaCfg.Model, embedder, logger)
	}
	return providers, client
}

// buildModels merges configured candidate lists over the built-in ones.
// An enabled OpenAI provider is tried first for similarity unless the
// similarity list is configured explicitly.
func buildModels(cfg config.Config) analysisuc.Models {
	defaults := analysisuc.DefaultModels()
	if cfg.Inference.OpenAI.Enabled() {
		defaults.Similarity = append(
			[]analysisuc.Candidate{{Provider: openaiEmb.ProviderName, Model: cfg.Inference.OpenAI.Model}},
			defaults.Similarity...,
		)
	}
	m := cfg.Inference.Models
	return analysisuc.Models{
		Summarization:  candidates(m.Summarization, defaults.Summarization),
		Classification: candidates(m.Classification, defaults.Classification),
		NER:            candidates(m.NER, defaults.NER),
		Similarity:     candidates(m.Similarity, defaults.Similarity),
	}
}

func candidates(configured []config.ModelCandidate, fallback []analysisuc.Candidate) []analysisuc.Candidate {
	if configured == nil {
		return fallback
	}
	out := make([]analysisuc.Candidate, len(configured))
	for i, c := range configured {
		out[i] = analysisuc.Candidate{Provider: c.Provider, Model: c.Model}
	}
	return out
}

// buildEngine creates the analysis engine. Offline engines have no
// candidates, so every stage runs its local heuristic.
func buildEngine(cfg config.Config, providers analysisuc.Providers, offline bool, logger *zap.Logger) *analysisuc.Engine {
	engineCfg := analysisuc.Config{
		Deadline: time.Duration(cfg.Inference.DeadlineSec) * time.Second,
		Logger:   logger,
	}
	if offline {
		return analysisuc.New(nil, engineCfg)
	}
	engineCfg.Models = buildModels(cfg)
	return analysisuc.New(providers, engineCfg)
}
