package cmd

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"

	"go.uber.org/zap"

	"github.com/kozaktomas/breed-twin/internal/catalog"
	"github.com/kozaktomas/breed-twin/internal/config"
	"github.com/kozaktomas/breed-twin/internal/database"
	"github.com/kozaktomas/breed-twin/internal/database/mock"
	"github.com/kozaktomas/breed-twin/internal/database/postgres"
	"github.com/kozaktomas/breed-twin/internal/describe"
	"github.com/kozaktomas/breed-twin/internal/dogapi"
	"github.com/kozaktomas/breed-twin/internal/facedetect"
	"github.com/kozaktomas/breed-twin/internal/features"
	"github.com/kozaktomas/breed-twin/internal/logging"
	"github.com/kozaktomas/breed-twin/internal/matcher"
)

// loadRuntime loads the configuration and builds the logger.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg := config.Load()
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logging.New(level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// openProfileStore connects to PostgreSQL when DATABASE_URL is set and
// falls back to an in-memory store otherwise.
func openProfileStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (database.ProfileStore, func(), error) {
	if cfg.Database.URL == "" {
		logger.Info("DATABASE_URL not set, keeping profiles in memory")
		return mock.NewMockProfileStore(), func() {}, nil
	}
	pool, err := postgres.Open(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	return postgres.NewProfileRepository(pool), func() { pool.Close() }, nil
}

// loadTables returns the catalog tables. A hair table file wins over
// stored profiles, which win over the embedded table.
func loadTables(ctx context.Context, hairPath string, profiles database.ProfileReader, logger *zap.Logger) (*catalog.Tables, error) {
	tables, err := catalog.DefaultTables()
	if err != nil {
		return nil, err
	}

	if hairPath != "" {
		f, err := os.Open(hairPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open hair table: %w", err)
		}
		defer f.Close()
		hair, err := catalog.ReadHairFile(f)
		if err != nil {
			return nil, err
		}
		logger.Info("using hair table file", zap.String("path", hairPath), zap.Int("breeds", len(hair.Groups)))
		return tables.WithHair(hair.Groups), nil
	}

	if profiles != nil {
		stored, err := profiles.List(ctx)
		if err != nil {
			logger.Warn("failed to load calibrated profiles, using embedded hair table", zap.Error(err))
			return tables, nil
		}
		if groups := database.HairGroups(stored); len(groups) > 0 {
			logger.Info("using calibrated hair colors", zap.Int("breeds", len(groups)))
			return tables.WithHair(groups), nil
		}
	}
	return tables, nil
}

// pipeline wires the feature extractor, catalog and matcher from config.
type pipeline struct {
	config    *config.Config
	logger    *zap.Logger
	dogs      *dogapi.DogCEO
	catalog   *catalog.Builder
	extractor *features.Dispatcher
	matcher   *matcher.Dispatcher
	describer describe.Describer
}

// newPipeline builds the pipeline. Nil tables use the embedded ones and a
// zero seed draws matches from a random source.
func newPipeline(ctx context.Context, cfg *config.Config, logger *zap.Logger, tables *catalog.Tables, seed uint64) (*pipeline, error) {
	dogs := dogapi.NewDogCEO(cfg.DogAPI.URL)

	catalogOpts := []catalog.Option{catalog.WithLogger(logger)}
	if tables != nil {
		catalogOpts = append(catalogOpts, catalog.WithTables(tables))
	}
	builder, err := catalog.NewBuilder(dogs, catalogOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog builder: %w", err)
	}

	var primary features.Strategy
	if cfg.FaceDetector.URL != "" {
		primary = features.NewDetected(facedetect.NewClient(cfg.FaceDetector.URL, cfg.FaceDetector.Timeout))
	} else {
		logger.Info("FACE_DETECTOR_URL not set, using geometric regions")
	}
	extractor := features.NewDispatcher(primary, features.Geometric{}, features.WithLogger(logger))

	describer, err := describe.New(ctx, describe.Config{
		OpenAIToken:  cfg.OpenAI.Token,
		GeminiAPIKey: cfg.Gemini.APIKey,
		OllamaURL:    cfg.Ollama.URL,
		OllamaModel:  cfg.Ollama.Model,
	})
	if err != nil {
		logger.Warn("breed describer unavailable", zap.Error(err))
		describer = nil
	}

	enricher := &matcher.Enricher{
		Metadata:     dogapi.NewTheDogAPI(cfg.TheDogAPI.URL, cfg.TheDogAPI.APIKey),
		Encyclopedia: dogapi.NewWikipedia(cfg.Wikipedia.URL),
		Images:       dogs,
		Logger:       logger,
	}
	if describer != nil {
		enricher.Describer = describer
	}

	opts := []matcher.Option{matcher.WithLogger(logger)}
	if seed != 0 {
		opts = append(opts, matcher.WithRand(rand.New(rand.NewPCG(seed, seed))))
	}
	m := matcher.NewDispatcher(
		matcher.NewDynamic(builder, enricher, opts...),
		matcher.NewStatic(enricher, opts...),
		opts...,
	)

	return &pipeline{
		config:    cfg,
		logger:    logger,
		dogs:      dogs,
		catalog:   builder,
		extractor: extractor,
		matcher:   m,
		describer: describer,
	}, nil
}

// describerCost returns the describer's name and the USD cost of its
// calls so far, or an empty name when no describer is configured.
func (p *pipeline) describerCost() (string, describe.Usage, float64) {
	if p.describer == nil {
		return "", describe.Usage{}, 0
	}
	u := p.describer.Usage()
	pricing := p.config.GetModelPricing(p.describer.Name()).Standard
	return p.describer.Name(), u, pricing.Cost(u.InputTokens, u.OutputTokens)
}
