package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/vocabbot/internal/bot"
	"github.com/example/vocabbot/internal/config"
	"github.com/example/vocabbot/internal/database"
	"github.com/example/vocabbot/internal/importer"
	"github.com/example/vocabbot/internal/logger"
	"github.com/example/vocabbot/internal/memorygame"
	"github.com/example/vocabbot/internal/practice"
	"github.com/example/vocabbot/internal/scheduler"
	"github.com/example/vocabbot/internal/userlock"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot with long polling",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if err := cfg.RequireToken(); err != nil {
				return err
			}
			log, err := logger.New("vocabbot", cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	words, err := loadDictionary(cfg.WordsFile, log)
	if err != nil {
		return err
	}

	store, closeStore, err := openProfileStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	profiles := database.NewUserRepository(store, log,
		database.WithPersistAttempts(cfg.PersistAttempts, 0))

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}
	log.Info().Str("username", api.Self.UserName).Msg("authorized on telegram")

	renderer := bot.NewRenderer(api)
	locks := userlock.New()

	practiceEngine := practice.NewEngine(words, profiles, practice.Config{
		WordsPerSession: cfg.PracticeWords,
		FilterByLevel:   cfg.PracticeFilterByLevel,
	}, log, practice.WithLocker(locks))

	memoryEngine := memorygame.NewEngine(words, profiles, renderer, memorygame.Config{
		MismatchDelay: cfg.MismatchDelay,
		EasyWords:     memorygame.EasyWords,
	}, log, memorygame.WithLocker(locks))

	sweeper := scheduler.New(memoryEngine, cfg.SweepInterval, cfg.GameIdleTTL, log)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	b := bot.New(api, renderer, bot.Deps{
		Practice: practiceEngine,
		Memory:   memoryEngine,
		Profiles: profiles,
		Words:    words,
	}, &bot.BotConfig{
		RateLimit:     cfg.RateLimit,
		RateBurst:     cfg.RateBurst,
		UpdateTimeout: bot.DefaultConfig().UpdateTimeout,
	}, log)

	err = b.Start(ctx)
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if stopErr := b.Stop(shutdownCtx); stopErr != nil {
		log.Error().Err(stopErr).Msg("error during shutdown")
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// loadDictionary reads the word file and builds the read-only dictionary
func loadDictionary(path string, log zerolog.Logger) (*database.WordRepository, error) {
	result, err := importer.LoadWords(importer.DefaultImportConfig(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary: %w", err)
	}
	for _, e := range result.Errors {
		log.Warn().Str("file", path).Msg(e)
	}
	words := database.NewWordRepository(result.Words)
	log.Info().
		Str("file", path).
		Int("words", words.Count()).
		Int("skipped", result.Skipped).
		Msg("dictionary loaded")
	return words, nil
}

// openProfileStore picks the profile backend named by the configuration
func openProfileStore(cfg *config.Config) (database.ProfileStore, func(), error) {
	if cfg.StoreDriver == "file" {
		store, err := database.NewFileStore(cfg.UsersDir)
		return store, func() {}, err
	}
	db, err := database.Connect(cfg.StoreDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	return database.NewSQLStore(db), func() { db.Close() }, nil
}
