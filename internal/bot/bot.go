package bot

import (
	"context"
	"errors"
	"sync"

	"github.com/example/vocabbot/internal/chat"
	"github.com/example/vocabbot/internal/memorygame"
	"github.com/example/vocabbot/internal/practice"
	"github.com/example/vocabbot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Profiles is the part of the profile repository used by menus
type Profiles interface {
	Get(ctx context.Context, userID int64) (*models.UserProfile, error)
	Save(ctx context.Context, profile *models.UserProfile) bool
}

// Dictionary reports the dictionary size shown on the profile screen
type Dictionary interface {
	Count() int
}

// Deps are the components the bot routes to
type Deps struct {
	Practice *practice.Engine
	Memory   *memorygame.Engine
	Profiles Profiles
	Words    Dictionary
}

// Bot represents the Telegram bot application
type Bot struct {
	api      API
	renderer *Renderer
	practice *practice.Engine
	memory   *memorygame.Engine
	profiles Profiles
	words    Dictionary
	config   *BotConfig
	log      zerolog.Logger

	statesMu sync.Mutex
	states   map[int64]chat.State

	limitersMu sync.Mutex
	limiters   map[int64]*rate.Limiter

	wg sync.WaitGroup
}

// New creates a new bot instance
func New(api API, renderer *Renderer, deps Deps, config *BotConfig, logger zerolog.Logger) *Bot {
	if config == nil {
		config = DefaultConfig()
	}
	return &Bot{
		api:      api,
		renderer: renderer,
		practice: deps.Practice,
		memory:   deps.Memory,
		profiles: deps.Profiles,
		words:    deps.Words,
		config:   config,
		log:      logger.With().Str("component", "bot").Logger(),
		states:   make(map[int64]chat.State),
		limiters: make(map[int64]*rate.Limiter),
	}
}

// Start receives updates until ctx is cancelled. Each update is handled in its own goroutine.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = int(b.config.UpdateTimeout.Seconds())

	updates := b.api.GetUpdatesChan(updateConfig)
	b.log.Info().Msg("receiving updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

// Stop waits for in-flight updates to finish or ctx to expire
func (b *Bot) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.log.Info().Msg("bot stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Int("update_id", update.UpdateID).Msg("recovered from panic while handling update")
		}
	}()

	var err error
	switch {
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil:
		err = b.handleText(update.Message)
	}
	if err != nil {
		b.log.Error().Err(err).Int("update_id", update.UpdateID).Msg("failed to handle update")
	}
}

func (b *Bot) state(userID int64) chat.State {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	return b.states[userID]
}

func (b *Bot) setState(userID int64, state chat.State) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	if prev := b.states[userID]; prev != state {
		b.log.Debug().Int64("user_id", userID).Str("from", prev.String()).Str("to", state.String()).Msg("state changed")
	}
	b.states[userID] = state
}

// allow reports whether the user is within the button press rate
func (b *Bot) allow(userID int64) bool {
	b.limitersMu.Lock()
	lim, ok := b.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(b.config.RateLimit), b.config.RateBurst)
		b.limiters[userID] = lim
	}
	b.limitersMu.Unlock()
	return lim.Allow()
}

// send posts a new message
func (b *Bot) send(chatID int64, msg chat.Message) error {
	_, err := b.renderer.Send(chatID, msg)
	return err
}

// edit replaces a rendered message; unchanged content is not an error
func (b *Bot) edit(ref chat.MessageRef, msg chat.Message) error {
	err := b.renderer.Edit(ref, msg)
	if err == nil || errors.Is(err, chat.ErrNotModified) {
		return nil
	}
	return err
}
