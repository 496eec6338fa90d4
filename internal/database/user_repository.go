package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/example/vocabbot/internal/spaced_repetition"
	"github.com/example/vocabbot/pkg/models"
	"github.com/rs/zerolog"
)

// UserRepository owns the user profiles. A profile whose last write failed is
// kept in memory and served instead of the stored copy until a write succeeds.
type UserRepository struct {
	store         ProfileStore
	pendingMu     sync.Mutex
	pending       map[int64][]byte
	scorer        *spaced_repetition.Scorer
	log           zerolog.Logger
	now           func() time.Time
	attempts      int
	retryInterval time.Duration
}

// UserRepositoryOption customizes a UserRepository
type UserRepositoryOption func(*UserRepository)

// WithClock sets the time source used for join dates and review stamps
func WithClock(now func() time.Time) UserRepositoryOption {
	return func(r *UserRepository) { r.now = now }
}

// WithPersistAttempts bounds the number of writes tried per save
func WithPersistAttempts(n int, interval time.Duration) UserRepositoryOption {
	return func(r *UserRepository) {
		if n > 0 {
			r.attempts = n
		}
		if interval > 0 {
			r.retryInterval = interval
		}
	}
}

// NewUserRepository creates a new repository instance
func NewUserRepository(store ProfileStore, logger zerolog.Logger, opts ...UserRepositoryOption) *UserRepository {
	r := &UserRepository{
		store:         store,
		pending:       make(map[int64][]byte),
		scorer:        spaced_repetition.NewScorer(),
		log:           logger.With().Str("component", "profiles").Logger(),
		now:           time.Now,
		attempts:      3,
		retryInterval: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the profile of a user, creating and persisting a default one
// on first contact
func (r *UserRepository) Get(ctx context.Context, userID int64) (*models.UserProfile, error) {
	data, ok := r.unsaved(userID)
	if ok {
		return r.decode(userID, data)
	}

	data, err := r.store.Load(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		profile := models.NewUserProfile(userID, r.now())
		if !r.Save(ctx, profile) {
			r.log.Warn().Int64("user_id", userID).Msg("new profile was not persisted")
		}
		r.log.Info().Int64("user_id", userID).Msg("created profile")
		return profile, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %d: %w", userID, err)
	}
	return r.decode(userID, data)
}

func (r *UserRepository) decode(userID int64, data []byte) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile %d: %w", userID, err)
	}
	profile.Normalize(userID, r.now())
	return &profile, nil
}

// Save persists the profile. A failed write is logged and reported as false;
// the caller's profile is left as is and later reads return it.
func (r *UserRepository) Save(ctx context.Context, profile *models.UserProfile) bool {
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		r.log.Error().Err(err).Int64("user_id", profile.UserID).Msg("failed to encode profile")
		return false
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.retryInterval
	exp.Multiplier = 2
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.attempts-1)), ctx)

	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		err := r.store.Store(ctx, profile.UserID, data)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		if err != nil {
			r.log.Debug().Err(err).Int("attempt", attempt).Int64("user_id", profile.UserID).Msg("profile write failed")
		}
		return err
	}, policy)
	if err != nil {
		r.log.Error().Err(err).Int64("user_id", profile.UserID).Int("attempts", attempt).Msg("failed to persist profile")
		r.setUnsaved(profile.UserID, data)
		return false
	}
	r.setUnsaved(profile.UserID, nil)
	return true
}

// Unsaved reports whether the user's latest profile exists only in memory
func (r *UserRepository) Unsaved(userID int64) bool {
	_, ok := r.unsaved(userID)
	return ok
}

func (r *UserRepository) unsaved(userID int64) ([]byte, bool) {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	data, ok := r.pending[userID]
	return data, ok
}

// setUnsaved records the latest unpersisted document, nil clears it
func (r *UserRepository) setUnsaved(userID int64, data []byte) {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	if data == nil {
		delete(r.pending, userID)
		return
	}
	r.pending[userID] = data
}

// ApplyWordProgress scores one answer into the profile without persisting it
func (r *UserRepository) ApplyWordProgress(profile *models.UserProfile, wordID string, outcome models.Outcome) models.WordProgress {
	progress, ok := profile.WordProgress[wordID]
	if !ok {
		progress = models.NewWordProgress(wordID)
	}
	r.scorer.Process(&progress, outcome, r.now())
	profile.WordProgress[wordID] = progress
	profile.Progress.WordsMastered = spaced_repetition.CountMastered(profile.WordProgress)
	return progress
}

// UpdateWordProgress loads the profile, scores the answer and saves it
func (r *UserRepository) UpdateWordProgress(ctx context.Context, userID int64, wordID string, outcome models.Outcome) bool {
	profile, err := r.Get(ctx, userID)
	if err != nil {
		r.log.Error().Err(err).Int64("user_id", userID).Str("word_id", wordID).Msg("failed to update word progress")
		return false
	}
	progress := r.ApplyWordProgress(profile, wordID, outcome)
	r.log.Debug().
		Int64("user_id", userID).
		Str("word_id", wordID).
		Str("outcome", outcome.String()).
		Str("status", string(progress.Status)).
		Int("repetitions", progress.Repetitions).
		Msg("word progress updated")
	return r.Save(ctx, profile)
}
