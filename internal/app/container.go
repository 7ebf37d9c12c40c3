package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/lingo-digest-bot/internal/adapter"
	"github.com/kapu/lingo-digest-bot/internal/config"
	"github.com/kapu/lingo-digest-bot/internal/digest"
	"github.com/kapu/lingo-digest-bot/internal/duolingo"
	"github.com/kapu/lingo-digest-bot/internal/generator"
	"github.com/kapu/lingo-digest-bot/internal/messenger"
	"github.com/kapu/lingo-digest-bot/internal/narration"
	"github.com/kapu/lingo-digest-bot/internal/util"
)

// Container bundles the assembled collaborators of a digest run.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	deps digest.Dependencies
}

// NewService returns a digest service wired to the container's dependencies.
func (c *Container) NewService() (*digest.Service, error) {
	if c == nil || c.deps.Learning == nil {
		return nil, fmt.Errorf("digest dependencies not initialized")
	}

	opts := digest.Options{
		Username:         c.Config.Duolingo.Username,
		Password:         c.Config.Duolingo.Password,
		Token:            c.Config.Duolingo.Token,
		WordCount:        c.Config.Digest.WordCount,
		ScratchDir:       c.Config.Digest.ScratchDir,
		ContentEnabled:   c.Config.Generator.Enabled,
		NarrationEnabled: c.Config.Polly.Enabled,
		Location:         util.LoadLocation(c.Config.Digest.Timezone),
	}
	return digest.NewService(c.deps, opts, c.Logger), nil
}

// Build assembles every collaborator once. Backend selection for text
// generation happens here; a backend that cannot be set up is reported when
// the content stage runs, not at startup.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// Learning service
	learning := duolingo.NewClient(cfg.Duolingo.BaseURL, cfg.Duolingo.TTSURL, logger)
	downloader := duolingo.NewAudioDownloader(nil, cfg.Digest.AudioConcurrency, logger)

	deps := digest.Dependencies{
		Learning:   learning,
		Downloader: downloader,
		Formatter:  adapter.NewResponseFormatter(),
	}

	// Text generation
	if cfg.Generator.Enabled {
		textGen, genErr := generator.NewTextGenerator(ctx, cfg, logger)
		if genErr != nil {
			logger.Warn("Text generation backend unavailable", zap.Error(genErr))
			deps.Generator = digest.UnavailableGenerator(genErr)
		} else {
			deps.Generator = generator.NewContentService(textGen, cfg.Generator.TranslateLanguage, cfg.Generator.StoryMaxWords, logger)
		}
	}

	// Narration
	if cfg.Polly.Enabled {
		synth := narration.NewSynthesizer(cfg.Polly.Region, cfg.Polly.Engine)
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		deps.Narrator = narration.NewNarrator(synth, narration.DefaultVoices, rnd, logger)
		logger.Info("Narration enabled",
			zap.String("region", cfg.Polly.Region),
			zap.String("engine", cfg.Polly.Engine))
	}

	// Delivery
	if cfg.HasDestination() {
		msgr, msgErr := messenger.New(cfg, logger)
		if msgErr != nil {
			return nil, msgErr
		}
		deps.Deliverer = messenger.NewDispatcher(msgr, cfg.Messenger.ChatID, logger)
		logger.Info("Delivery enabled", zap.String("messenger", msgr.Name()))
	} else {
		deps.Deliverer = messenger.NewDispatcher(nil, "", logger)
		logger.Info("No delivery destination configured, messages will not be sent")
	}

	return &Container{
		Config: cfg,
		Logger: logger,
		deps:   deps,
	}, nil
}
