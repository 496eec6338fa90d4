// Package memorygame runs the english/hebrew pair matching game.
//
// Each user has at most one board, held in the engine's memory. Two flipped
// cards that do not match stay visible for a moment and are then turned back
// by a timer; the timer re-checks that the same game is still on the board.
package memorygame

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/example/vocabbot/internal/chat"
	"github.com/example/vocabbot/internal/database"
	"github.com/example/vocabbot/internal/userlock"
	"github.com/example/vocabbot/pkg/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNoGame is returned when the user has no board
var ErrNoGame = errors.New("no active memory game")

// WordSource is the part of the dictionary the engine reads
type WordSource interface {
	GetByID(id string) (*models.WordEntry, error)
	SampleRandom(count int, filter database.WordFilter) []models.WordEntry
}

// ProfileStore is the part of the profile repository the engine uses
type ProfileStore interface {
	Get(ctx context.Context, userID int64) (*models.UserProfile, error)
	Save(ctx context.Context, profile *models.UserProfile) bool
}

// Config holds the game settings
type Config struct {
	// How long a mismatched pair stays visible
	MismatchDelay time.Duration
	// Pool for easy games and fallback pool for the others
	EasyWords []models.WordEntry
}

// DefaultConfig returns the default game configuration
func DefaultConfig() Config {
	return Config{
		MismatchDelay: 3 * time.Second,
		EasyWords:     EasyWords,
	}
}

// Outcome classifies a flip
type Outcome int

const (
	// OutcomeIgnored: the card was already open or the index is off the board
	OutcomeIgnored Outcome = iota
	// OutcomeNoGame: the user has to start a new game
	OutcomeNoGame
	// OutcomeBusy: a mismatched pair is still visible
	OutcomeBusy
	OutcomeFlipped
	OutcomeMatch
	OutcomeMismatch
	OutcomeGameOver
)

// FlipResult tells the caller how to acknowledge the button press
type FlipResult struct {
	Outcome Outcome
	Toast   string
}

// Engine owns the boards of all users
type Engine struct {
	mu    sync.Mutex
	games map[int64]*Game

	words     WordSource
	profiles  ProfileStore
	renderer  chat.Renderer
	cfg       Config
	locks     *userlock.Locker
	log       zerolog.Logger
	now       func() time.Time
	afterFunc func(time.Duration, func())
}

// Option customizes an Engine
type Option func(*Engine)

// WithClock sets the time source used for idle tracking
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithAfterFunc replaces the timer used to turn mismatched cards back
func WithAfterFunc(f func(time.Duration, func())) Option {
	return func(e *Engine) { e.afterFunc = f }
}

// WithLocker shares a per-user locker with other engines
func WithLocker(l *userlock.Locker) Option {
	return func(e *Engine) { e.locks = l }
}

// NewEngine creates a memory game engine
func NewEngine(words WordSource, profiles ProfileStore, renderer chat.Renderer, cfg Config, logger zerolog.Logger, opts ...Option) *Engine {
	if len(cfg.EasyWords) < Pairs {
		cfg.EasyWords = EasyWords
	}
	e := &Engine{
		games:    make(map[int64]*Game),
		words:    words,
		profiles: profiles,
		renderer: renderer,
		cfg:      cfg,
		locks:    userlock.New(),
		log:      logger.With().Str("component", "memorygame").Logger(),
		now:      time.Now,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start deals a new board for the user, replacing any previous one.
// The board is drawn by editing anchor, or sent as a new message when anchor is empty.
func (e *Engine) Start(ctx context.Context, userID int64, anchor chat.MessageRef, difficulty Difficulty) error {
	unlock := e.locks.Lock(userID)
	defer unlock()

	game := &Game{
		ID:         uuid.New(),
		UserID:     userID,
		Difficulty: difficulty,
		Cards:      deal(e.pool(ctx, userID, difficulty)),
		Flipped:    []int{},
		Matched:    []int{},
		MatchOrder: []string{},
		Anchor:     anchor,
		UpdatedAt:  e.now(),
	}

	if anchor.MessageID == 0 {
		ref, err := e.renderer.Send(anchor.ChatID, boardMessage(game))
		if err != nil {
			return err
		}
		game.Anchor = ref
	} else {
		e.render(game)
	}

	e.mu.Lock()
	e.games[userID] = game
	e.mu.Unlock()

	e.log.Info().
		Int64("user_id", userID).
		Str("game_id", game.ID.String()).
		Str("difficulty", string(difficulty)).
		Msg("memory game started")
	return nil
}

// Flip turns over one card
func (e *Engine) Flip(ctx context.Context, userID int64, cardIndex int) FlipResult {
	unlock := e.locks.Lock(userID)
	defer unlock()

	game := e.game(userID)
	if game == nil {
		return FlipResult{Outcome: OutcomeNoGame, Toast: "No active game. Start a new one from the games menu."}
	}
	if game.finished() {
		// the end screen was not delivered yet
		e.deliverEnd(game)
		return FlipResult{Outcome: OutcomeGameOver, Toast: "🎉 All pairs found!"}
	}
	if cardIndex < 0 || cardIndex >= len(game.Cards) {
		return FlipResult{Outcome: OutcomeIgnored}
	}
	if game.isOpen(cardIndex) {
		return FlipResult{Outcome: OutcomeIgnored, Toast: "This card is already open"}
	}
	if len(game.Flipped) >= 2 {
		return FlipResult{Outcome: OutcomeBusy, Toast: "Wait for the cards to turn back"}
	}

	game.Flipped = append(game.Flipped, cardIndex)
	game.Clicks++
	game.UpdatedAt = e.now()

	if len(game.Flipped) == 1 {
		e.render(game)
		return FlipResult{Outcome: OutcomeFlipped}
	}

	first, second := game.Flipped[0], game.Flipped[1]
	if !IsMatch(game.Cards[first], game.Cards[second]) {
		e.render(game)
		gameID := game.ID
		e.afterFunc(e.cfg.MismatchDelay, func() { e.hideMismatch(userID, gameID) })
		return FlipResult{Outcome: OutcomeMismatch, Toast: "❌ No match, try to remember them"}
	}

	game.Matched = append(game.Matched, first, second)
	game.Flipped = game.Flipped[:0]
	game.MatchOrder = append(game.MatchOrder, game.Cards[first].PairID)

	if game.finished() {
		e.end(ctx, game)
		return FlipResult{Outcome: OutcomeGameOver, Toast: "🎉 All pairs found!"}
	}
	e.render(game)
	return FlipResult{Outcome: OutcomeMatch, Toast: "✅ Match!"}
}

// hideMismatch turns a mismatched pair back. It does nothing when the game
// was finished or replaced while the pair was visible.
func (e *Engine) hideMismatch(userID int64, gameID uuid.UUID) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	game := e.game(userID)
	if game == nil || game.ID != gameID {
		e.log.Debug().Int64("user_id", userID).Str("game_id", gameID.String()).Msg("game gone before cards turned back")
		return
	}
	if len(game.Flipped) != 2 {
		return
	}
	game.Flipped = game.Flipped[:0]
	e.render(game)
}

// end rates the game, credits every matched word in the profile and shows the end screen.
// The caller holds the user's lock.
func (e *Engine) end(ctx context.Context, game *Game) {
	tier := TierFor(game.Clicks)

	profile, err := e.profiles.Get(ctx, game.UserID)
	if err != nil {
		e.log.Error().Err(err).Int64("user_id", game.UserID).Msg("failed to load profile after game")
	} else {
		credited := make(map[string]bool, len(game.MatchOrder))
		for _, id := range game.MatchOrder {
			if credited[id] {
				continue
			}
			credited[id] = true
			profile.WordsKnowledge[id]++
		}
		if !e.profiles.Save(ctx, profile) {
			e.log.Warn().Int64("user_id", game.UserID).Msg("game results were not persisted")
		}
	}

	e.log.Info().
		Int64("user_id", game.UserID).
		Str("game_id", game.ID.String()).
		Int("clicks", game.Clicks).
		Str("tier", tier.Name).
		Msg("memory game finished")
	e.deliverEnd(game)
}

// deliverEnd renders the end screen and removes the board once it is shown.
// A board whose end screen failed to render stays until a later flip retries it.
func (e *Engine) deliverEnd(game *Game) {
	if !e.renderMessage(game, endMessage(game, TierFor(game.Clicks))) {
		return
	}
	e.mu.Lock()
	if e.games[game.UserID] == game {
		delete(e.games, game.UserID)
	}
	e.mu.Unlock()
}

// Active reports whether the user has a board
func (e *Engine) Active(userID int64) bool {
	return e.game(userID) != nil
}

// Snapshot returns a copy of the user's board
func (e *Engine) Snapshot(userID int64) (Game, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	game := e.game(userID)
	if game == nil {
		return Game{}, ErrNoGame
	}
	return game.clone(), nil
}

// SweepIdle removes boards untouched for longer than maxIdle and returns how many were removed
func (e *Engine) SweepIdle(maxIdle time.Duration) int {
	e.mu.Lock()
	userIDs := make([]int64, 0, len(e.games))
	for id := range e.games {
		userIDs = append(userIDs, id)
	}
	e.mu.Unlock()

	removed := 0
	cutoff := e.now().Add(-maxIdle)
	for _, id := range userIDs {
		unlock := e.locks.Lock(id)
		e.mu.Lock()
		if g, ok := e.games[id]; ok && g.UpdatedAt.Before(cutoff) {
			delete(e.games, id)
			removed++
		}
		e.mu.Unlock()
		unlock()
	}
	if removed > 0 {
		e.log.Info().Int("removed", removed).Msg("swept idle memory games")
	}
	return removed
}

func (e *Engine) game(userID int64) *Game {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.games[userID]
}

func (e *Engine) render(game *Game) {
	e.renderMessage(game, boardMessage(game))
}

// renderMessage edits the board message and reports whether it is on screen.
// Unchanged content is not an error; other failures are logged and the game
// state is kept for the next action.
func (e *Engine) renderMessage(game *Game, msg chat.Message) bool {
	err := e.renderer.Edit(game.Anchor, msg)
	switch {
	case err == nil:
	case errors.Is(err, chat.ErrNotModified):
		e.log.Debug().Int64("user_id", game.UserID).Msg("board unchanged")
	default:
		e.log.Warn().Err(err).Int64("user_id", game.UserID).Msg("failed to render memory game")
		return false
	}
	return true
}
