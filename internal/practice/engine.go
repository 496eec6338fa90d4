// Package practice runs flashcard review rounds.
//
// A round samples a fixed number of dictionary words, shows them one at a
// time and records whether the learner remembered each one. The round lives
// in the profile's session data, so a restart resumes where it stopped.
//
//	IDLE -> SHOWING_WORD -> SHOWING_WORD ... -> SESSION_COMPLETE -> IDLE
package practice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/vocabbot/internal/chat"
	"github.com/example/vocabbot/internal/database"
	"github.com/example/vocabbot/internal/userlock"
	"github.com/example/vocabbot/pkg/models"
	"github.com/rs/zerolog"
)

var (
	// ErrStaleResponse is returned for an answer to a word that is not the one awaiting a response
	ErrStaleResponse = errors.New("stale practice response")
	// ErrNoSession is returned when the user has no practice round
	ErrNoSession = errors.New("no active practice session")
)

const feedbackKey = "feedback"

// WordSource is the part of the dictionary the engine reads
type WordSource interface {
	GetByID(id string) (*models.WordEntry, error)
	SampleRandom(count int, filter database.WordFilter) []models.WordEntry
}

// ProfileStore is the part of the profile repository the engine uses
type ProfileStore interface {
	Get(ctx context.Context, userID int64) (*models.UserProfile, error)
	Save(ctx context.Context, profile *models.UserProfile) bool
	UpdateWordProgress(ctx context.Context, userID int64, wordID string, outcome models.Outcome) bool
}

// Config controls round composition
type Config struct {
	// Words per round
	WordsPerSession int
	// Sample only words whose difficulty equals the user's level
	FilterByLevel bool
}

// DefaultConfig returns the default practice configuration
func DefaultConfig() Config {
	return Config{WordsPerSession: 5}
}

// Engine drives practice rounds for all users
type Engine struct {
	words    WordSource
	profiles ProfileStore
	cfg      Config
	locks    *userlock.Locker
	log      zerolog.Logger
	now      func() time.Time
}

// Option customizes an Engine
type Option func(*Engine)

// WithClock sets the time source used for practice time and streaks
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocker shares a per-user locker with other engines
func WithLocker(l *userlock.Locker) Option {
	return func(e *Engine) { e.locks = l }
}

// NewEngine creates a practice engine
func NewEngine(words WordSource, profiles ProfileStore, cfg Config, logger zerolog.Logger, opts ...Option) *Engine {
	if cfg.WordsPerSession <= 0 {
		cfg.WordsPerSession = DefaultConfig().WordsPerSession
	}
	e := &Engine{
		words:    words,
		profiles: profiles,
		cfg:      cfg,
		locks:    userlock.New(),
		log:      logger.With().Str("component", "practice").Logger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start replaces the user's round with a fresh sample of words and returns the intro screen
func (e *Engine) Start(ctx context.Context, userID int64) (chat.Reply, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return chat.Reply{}, fmt.Errorf("failed to start practice: %w", err)
	}

	filter := database.WordFilter{}
	if e.cfg.FilterByLevel {
		if difficulty, ok := profile.Level.Difficulty(); ok {
			filter.Difficulty = difficulty
		}
	}

	words := e.words.SampleRandom(e.cfg.WordsPerSession, filter)
	if len(words) == 0 {
		e.log.Warn().Int64("user_id", userID).Int("difficulty", filter.Difficulty).Msg("no words available for practice")
		return chat.Reply{
			Message: chat.Message{
				Text:    "😕 There are no words to practice right now. Please try again later.",
				Buttons: [][]chat.Button{chat.MenuRow()},
			},
			State: chat.StateMainMenu,
		}, nil
	}

	started := e.now()
	session := models.NewSessionData()
	for _, w := range words {
		session.CurrentWordSet = append(session.CurrentWordSet, w.ID)
	}
	session.StartedAt = &started
	profile.SessionData = session

	if !e.profiles.Save(ctx, profile) {
		e.log.Warn().Int64("user_id", userID).Msg("practice session was not persisted")
	}
	e.log.Info().Int64("user_id", userID).Int("words", len(words)).Msg("practice session started")

	return chat.Reply{Message: introMessage(len(words)), State: chat.StatePracticing}, nil
}

// Show renders the word awaiting a response, or the summary once the round is exhausted
func (e *Engine) Show(ctx context.Context, userID int64) (chat.Reply, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return chat.Reply{}, fmt.Errorf("failed to show practice word: %w", err)
	}
	if len(profile.SessionData.CurrentWordSet) == 0 {
		return chat.Reply{}, ErrNoSession
	}
	return e.show(ctx, profile), nil
}

// Respond records the answer for the word awaiting a response and shows the next one
func (e *Engine) Respond(ctx context.Context, userID int64, wordID string, outcome models.Outcome) (chat.Reply, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return chat.Reply{}, fmt.Errorf("failed to record practice answer: %w", err)
	}
	if err := e.awaiting(profile, wordID); err != nil {
		return chat.Reply{}, err
	}

	result := models.SessionResult{Word: wordID, Remembered: outcome == models.Remembered}
	if word, err := e.words.GetByID(wordID); err == nil {
		result.Word = word.English
		result.Hebrew = word.Hebrew
	}

	if !e.profiles.UpdateWordProgress(ctx, userID, wordID, outcome) {
		e.log.Warn().Int64("user_id", userID).Str("word_id", wordID).Msg("word progress was not persisted")
	}

	// Reload so the session update is written on top of the new word progress
	profile, err = e.profiles.Get(ctx, userID)
	if err != nil {
		return chat.Reply{}, fmt.Errorf("failed to record practice answer: %w", err)
	}
	profile.SessionData.SessionResults[wordID] = result
	profile.SessionData.CurrentWordIndex++
	profile.SessionData.ConversationContext[feedbackKey] = feedbackBanner(result)

	return e.show(ctx, profile), nil
}

// Skip moves past the word awaiting a response without scoring it
func (e *Engine) Skip(ctx context.Context, userID int64, wordID string) (chat.Reply, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return chat.Reply{}, fmt.Errorf("failed to skip practice word: %w", err)
	}
	if err := e.awaiting(profile, wordID); err != nil {
		return chat.Reply{}, err
	}
	profile.SessionData.CurrentWordIndex++
	return e.show(ctx, profile), nil
}

// awaiting checks that wordID is the word the round is waiting for
func (e *Engine) awaiting(profile *models.UserProfile, wordID string) error {
	session := profile.SessionData
	if len(session.CurrentWordSet) == 0 {
		return ErrNoSession
	}
	if session.Finished() || session.CurrentWordSet[session.CurrentWordIndex] != wordID {
		e.log.Debug().
			Int64("user_id", profile.UserID).
			Str("word_id", wordID).
			Int("index", session.CurrentWordIndex).
			Msg("ignoring stale practice response")
		return ErrStaleResponse
	}
	return nil
}

// show skips words that no longer resolve, persists the session and renders the next screen.
// The caller holds the user's lock.
func (e *Engine) show(ctx context.Context, profile *models.UserProfile) chat.Reply {
	session := &profile.SessionData
	feedback := session.ConversationContext[feedbackKey]
	delete(session.ConversationContext, feedbackKey)

	var reply chat.Reply
	for {
		if session.Finished() {
			reply = e.complete(profile, feedback)
			break
		}
		wordID := session.CurrentWordSet[session.CurrentWordIndex]
		word, err := e.words.GetByID(wordID)
		if err != nil {
			e.log.Warn().Int64("user_id", profile.UserID).Str("word_id", wordID).Msg("skipping missing practice word")
			session.CurrentWordIndex++
			continue
		}
		reply = chat.Reply{
			Message: wordMessage(word, feedback, session.CurrentWordIndex+1, len(session.CurrentWordSet)),
			State:   chat.StatePracticing,
		}
		break
	}

	if !e.profiles.Save(ctx, profile) {
		e.log.Warn().Int64("user_id", profile.UserID).Msg("practice session was not persisted")
	}
	return reply
}

// complete builds the summary. Streak and practice time are counted on the first summary only.
func (e *Engine) complete(profile *models.UserProfile, feedback string) chat.Reply {
	session := &profile.SessionData
	if !session.Completed {
		now := e.now()
		minutes := 1
		if session.StartedAt != nil {
			if m := int(now.Sub(*session.StartedAt) / time.Minute); m > minutes {
				minutes = m
			}
		}
		profile.RecordPractice(now, minutes)
		session.Completed = true
		e.log.Info().
			Int64("user_id", profile.UserID).
			Int("remembered", countRemembered(session)).
			Int("total", len(session.CurrentWordSet)).
			Int("streak", profile.DailyStreak).
			Msg("practice session completed")
	}
	return chat.Reply{Message: summaryMessage(session, feedback), State: chat.StateMainMenu}
}

func countRemembered(session *models.SessionData) int {
	n := 0
	for _, r := range session.SessionResults {
		if r.Remembered {
			n++
		}
	}
	return n
}
