package memorygame

import (
	"context"
	"sort"

	"github.com/example/vocabbot/internal/database"
	"github.com/example/vocabbot/pkg/models"
	"github.com/samber/lo"
)

// hardPoolSize words are sampled from the dictionary for a hard game
const hardPoolSize = 15

// EasyWords is the curated beginner list used for easy games and as the fallback pool
var EasyWords = []models.WordEntry{
	{ID: "easy-1", English: "hello", Hebrew: "שלום"},
	{ID: "easy-2", English: "goodbye", Hebrew: "להתראות"},
	{ID: "easy-3", English: "thank you", Hebrew: "תודה"},
	{ID: "easy-4", English: "please", Hebrew: "בבקשה"},
	{ID: "easy-5", English: "yes", Hebrew: "כן"},
	{ID: "easy-6", English: "no", Hebrew: "לא"},
	{ID: "easy-7", English: "water", Hebrew: "מים"},
	{ID: "easy-8", English: "food", Hebrew: "אוכל"},
	{ID: "easy-9", English: "friend", Hebrew: "חבר"},
	{ID: "easy-10", English: "family", Hebrew: "משפחה"},
}

// pool returns the words a game of the given difficulty is dealt from
func (e *Engine) pool(ctx context.Context, userID int64, difficulty Difficulty) []models.WordEntry {
	var words []models.WordEntry
	switch difficulty {
	case Medium:
		words = e.knownWords(ctx, userID)
	case Hard:
		words = lo.Filter(e.words.SampleRandom(hardPoolSize, database.WordFilter{}), func(w models.WordEntry, _ int) bool {
			return w.Valid()
		})
	default:
		return e.cfg.EasyWords
	}

	if len(words) < Pairs {
		e.log.Debug().
			Int64("user_id", userID).
			Str("difficulty", string(difficulty)).
			Int("available", len(words)).
			Msg("not enough words, using the easy list")
		return e.cfg.EasyWords
	}
	return words
}

// knownWords resolves the words the user has a positive knowledge score for
func (e *Engine) knownWords(ctx context.Context, userID int64) []models.WordEntry {
	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		e.log.Warn().Err(err).Int64("user_id", userID).Msg("failed to load profile for word pool")
		return nil
	}

	ids := lo.Keys(lo.PickBy(profile.WordsKnowledge, func(_ string, score int) bool { return score > 0 }))
	sort.Strings(ids)

	words := make([]models.WordEntry, 0, len(ids))
	for _, id := range ids {
		w, err := e.words.GetByID(id)
		if err != nil || !w.Valid() {
			continue
		}
		words = append(words, *w)
	}
	return words
}

// deal picks Pairs words from the pool and lays out both cards of each in random order
func deal(pool []models.WordEntry) []Card {
	chosen := lo.Samples(pool, Pairs)
	cards := make([]Card, 0, 2*len(chosen))
	for _, w := range chosen {
		cards = append(cards,
			Card{Kind: KindEnglish, Text: w.English, PairID: w.ID},
			Card{Kind: KindHebrew, Text: w.Hebrew, PairID: w.ID},
		)
	}
	return lo.Samples(cards, len(cards))
}
