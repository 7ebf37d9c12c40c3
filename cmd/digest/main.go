package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kapu/lingo-digest-bot/internal/app"
	"github.com/kapu/lingo-digest-bot/internal/config"
	"github.com/kapu/lingo-digest-bot/internal/constants"
	"github.com/kapu/lingo-digest-bot/internal/util"
	"github.com/kapu/lingo-digest-bot/pkg/errors"
)

// CLI flags
var (
	useToken    = flag.Bool("token", false, "Treat the credential argument as a JWT instead of a password")
	noContent   = flag.Bool("no-content", false, "Skip story and dialogue generation")
	noNarration = flag.Bool("no-narration", false, "Skip text-to-speech narration")
	scratchDir  = flag.String("scratch", "", "Directory for audio files and the word list")
	logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <username> <credential> [chat_id] [word_count]\n\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	countWarning := applyArgs(cfg, flag.Args())

	// Initialize logger
	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger = logger.With(zap.String("run_id", uuid.NewString()))
	if countWarning != nil {
		logger.Warn("Invalid word count argument, using default",
			zap.Int("default", constants.DefaultWordCount),
			zap.Error(countWarning))
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Lingo digest starting...",
		zap.String("username", cfg.Duolingo.Username),
		zap.Int("word_count", cfg.Digest.WordCount),
		zap.Bool("content", cfg.Generator.Enabled),
		zap.Bool("narration", cfg.Polly.Enabled),
		zap.String("log_level", cfg.Logging.Level),
	)

	// Create context with cancellation for the run
	ctx, cancel := context.WithTimeout(context.Background(), constants.Timeouts.Run)
	defer cancel()

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	container, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		os.Exit(1)
	}

	svc, err := container.NewService()
	if err != nil {
		logger.Error("Failed to initialize digest", zap.Error(err))
		os.Exit(1)
	}

	if _, err := svc.Run(ctx); err != nil {
		logger.Error("Digest failed",
			zap.String("code", errors.CodeOf(err)),
			zap.Bool("fatal", errors.IsFatal(err)),
			zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("Digest complete")
}

// applyArgs overrides config with positional arguments and flags. It returns
// the word count parse error, if any, so it can be logged once a logger exists.
func applyArgs(cfg *config.Config, args []string) error {
	if len(args) > 0 {
		cfg.Duolingo.Username = args[0]
	}
	if len(args) > 1 {
		if *useToken {
			cfg.Duolingo.Token = args[1]
			cfg.Duolingo.Password = ""
		} else {
			cfg.Duolingo.Password = args[1]
			cfg.Duolingo.Token = ""
		}
	}
	if len(args) > 2 && args[2] != "" {
		cfg.Messenger.ChatID = args[2]
	}

	var countErr error
	if len(args) > 3 {
		cfg.Digest.WordCount, countErr = config.ParseWordCount(args[3])
	}

	if *noContent {
		cfg.Generator.Enabled = false
	}
	if *noNarration {
		cfg.Polly.Enabled = false
	}
	if *scratchDir != "" {
		cfg.Digest.ScratchDir = *scratchDir
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	return countErr
}
