package practice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/vocabbot/internal/chat"
	"github.com/example/vocabbot/internal/database"
	"github.com/example/vocabbot/pkg/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = int64(100)

var fixedNow = time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

func dictionary(n int, difficulty int) []models.WordEntry {
	words := make([]models.WordEntry, 0, n)
	for i := 0; i < n; i++ {
		words = append(words, models.WordEntry{
			ID:         fmt.Sprintf("w%d", i),
			English:    fmt.Sprintf("word%d", i),
			Hebrew:     fmt.Sprintf("מילה%d", i),
			Difficulty: difficulty,
			Examples:   []string{"one", "two", "three"},
		})
	}
	return words
}

type fixture struct {
	engine   *Engine
	profiles *database.UserRepository
	words    *database.WordRepository
}

func newFixture(t *testing.T, words []models.WordEntry, cfg Config) *fixture {
	t.Helper()
	store, err := database.NewFileStore(t.TempDir())
	require.NoError(t, err)
	clock := func() time.Time { return fixedNow }
	profiles := database.NewUserRepository(store, zerolog.Nop(), database.WithClock(clock))
	repo := database.NewWordRepository(words)
	return &fixture{
		engine:   NewEngine(repo, profiles, cfg, zerolog.Nop(), WithClock(clock)),
		profiles: profiles,
		words:    repo,
	}
}

func (f *fixture) session(t *testing.T) models.SessionData {
	t.Helper()
	p, err := f.profiles.Get(context.Background(), userID)
	require.NoError(t, err)
	return p.SessionData
}

// actionsOf flattens the button actions of a message
func actionsOf(msg chat.Message) []string {
	var actions []string
	for _, row := range msg.Buttons {
		for _, b := range row {
			actions = append(actions, b.Action)
		}
	}
	return actions
}

func TestEngine_StartWritesSession(t *testing.T) {
	f := newFixture(t, dictionary(10, 1), DefaultConfig())

	reply, err := f.engine.Start(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, chat.StatePracticing, reply.State)
	assert.Equal(t, []string{chat.ActionPracticeShow, chat.ActionMainMenu}, actionsOf(reply.Message))
	assert.Contains(t, reply.Message.Text, "5 words")

	s := f.session(t)
	assert.Len(t, s.CurrentWordSet, 5)
	assert.Zero(t, s.CurrentWordIndex)
	assert.Empty(t, s.SessionResults)
	require.NotNil(t, s.StartedAt)
	assert.False(t, s.Completed)
}

func TestEngine_StartReplacesPreviousSession(t *testing.T) {
	f := newFixture(t, dictionary(10, 1), DefaultConfig())
	ctx := context.Background()

	_, err := f.engine.Start(ctx, userID)
	require.NoError(t, err)
	_, err = f.engine.Show(ctx, userID)
	require.NoError(t, err)
	first := f.session(t).CurrentWordSet[0]
	_, err = f.engine.Respond(ctx, userID, first, models.Remembered)
	require.NoError(t, err)

	_, err = f.engine.Start(ctx, userID)
	require.NoError(t, err)

	s := f.session(t)
	assert.Zero(t, s.CurrentWordIndex)
	assert.Empty(t, s.SessionResults)
}

func TestEngine_StartWithEmptyDictionary(t *testing.T) {
	f := newFixture(t, nil, DefaultConfig())

	reply, err := f.engine.Start(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, chat.StateMainMenu, reply.State)
	assert.Empty(t, f.session(t).CurrentWordSet)
}

func TestEngine_ShowRendersCurrentWord(t *testing.T) {
	words := []models.WordEntry{{
		ID: "a", English: "apple", Translation: "fruit", Hebrew: "תפוח", PartOfSpeech: "noun",
		Examples: []string{"ex1", "ex2", "ex3"}, Synonyms: []string{"pome"},
	}}
	f := newFixture(t, words, DefaultConfig())
	ctx := context.Background()

	_, err := f.engine.Start(ctx, userID)
	require.NoError(t, err)
	reply, err := f.engine.Show(ctx, userID)
	require.NoError(t, err)

	text := reply.Message.Text
	assert.Contains(t, text, "Word 1 of 1")
	assert.Contains(t, text, "<b>apple</b>")
	assert.Contains(t, text, "Translation: fruit")
	assert.Contains(t, text, "Hebrew: תפוח")
	assert.Contains(t, text, "noun")
	assert.Contains(t, text, "ex2")
	assert.NotContains(t, text, "ex3")
	assert.Contains(t, text, "Synonyms: pome")
	assert.Equal(t, chat.ParseModeHTML, reply.Message.ParseMode)
	assert.Equal(t, []string{"practice_remembered_a", "practice_forgot_a", chat.ActionMainMenu}, actionsOf(reply.Message))

	// showing twice does not advance
	again, err := f.engine.Show(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, reply.Message.Buttons, again.Message.Buttons)
	assert.Zero(t, f.session(t).CurrentWordIndex)
}

func TestEngine_ShowWithoutSession(t *testing.T) {
	f := newFixture(t, dictionary(3, 1), DefaultConfig())

	_, err := f.engine.Show(context.Background(), userID)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = f.engine.Respond(context.Background(), userID, "w0", models.Remembered)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestEngine_EndToEndSummary(t *testing.T) {
	words := []models.WordEntry{
		{ID: "A", English: "alpha", Hebrew: "אלפא"},
		{ID: "B", English: "bravo", Hebrew: "בראבו"},
		{ID: "C", English: "charlie", Hebrew: "צ'רלי"},
	}
	f := newFixture(t, words, DefaultConfig())
	ctx := context.Background()

	_, err := f.engine.Start(ctx, userID)
	require.NoError(t, err)
	set := f.session(t).CurrentWordSet
	require.Len(t, set, 3)

	_, err = f.engine.Show(ctx, userID)
	require.NoError(t, err)

	outcomes := []models.Outcome{models.Remembered, models.Forgot, models.Remembered}
	var reply chat.Reply
	for i, outcome := range outcomes {
		reply, err = f.engine.Respond(ctx, userID, set[i], outcome)
		require.NoError(t, err)
	}

	assert.Equal(t, chat.StateMainMenu, reply.State)
	assert.Contains(t, reply.Message.Text, "You remembered 2 of 3 words")
	assert.Equal(t, []string{"✓", "✗", "✓"}, markers(reply.Message.Text))
	assert.Equal(t, []string{chat.ActionPractice, chat.ActionMainMenu}, actionsOf(reply.Message))

	s := f.session(t)
	assert.Equal(t, 3, s.CurrentWordIndex)
	assert.True(t, s.Completed)

	p, err := f.profiles.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusLearning, p.WordProgress[set[0]].Status)
	assert.Equal(t, 1, p.WordProgress[set[1]].Repetitions)
	assert.Equal(t, 0.0, p.WordProgress[set[1]].SuccessRate)
	assert.Equal(t, 1, p.DailyStreak)
	assert.Equal(t, "2026-06-01", p.LastPractice)
	assert.Equal(t, 1, p.TotalPracticeTime)
}

func markers(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "✓ ") || strings.HasPrefix(line, "✗ ") {
			out = append(out, strings.Fields(line)[0])
		}
	}
	return out
}

func TestEngine_IndexAndRememberedCountMatchResponses(t *testing.T) {
	for n := 1; n <= 6; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			f := newFixture(t, dictionary(10, 1), Config{WordsPerSession: n})
			ctx := context.Background()

			_, err := f.engine.Start(ctx, userID)
			require.NoError(t, err)
			set := f.session(t).CurrentWordSet

			remembered := 0
			var reply chat.Reply
			for i := 0; i < n; i++ {
				outcome := models.Forgot
				if i%2 == 0 {
					outcome = models.Remembered
					remembered++
				}
				reply, err = f.engine.Respond(ctx, userID, set[i], outcome)
				require.NoError(t, err)
			}

			assert.Equal(t, n, f.session(t).CurrentWordIndex)
			assert.Equal(t, remembered, strings.Count(reply.Message.Text, "✓ "))
			assert.Equal(t, n-remembered, strings.Count(reply.Message.Text, "✗ "))
		})
	}
}

func TestEngine_RespondRejectsStaleAnswers(t *testing.T) {
	f := newFixture(t, dictionary(5, 1), Config{WordsPerSession: 3})
	ctx := context.Background()

	_, err := f.engine.Start(ctx, userID)
	require.NoError(t, err)
	set := f.session(t).CurrentWordSet

	_, err = f.engine.Respond(ctx, userID, set[1], models.Remembered)
	assert.ErrorIs(t, err, ErrStaleResponse, "answer ahead of the shown word")

	_, err = f.engine.Respond(ctx, userID, set[0], models.Remembered)
	require.NoError(t, err)

	_, err = f.engine.Respond(ctx, userID, set[0], models.Forgot)
	assert.ErrorIs(t, err, ErrStaleResponse, "double tap on an answered word")

	s := f.session(t)
	assert.Equal(t, 1, s.CurrentWordIndex)
	assert.True(t, s.SessionResults[set[0]].Remembered)

	p, err := f.profiles.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.WordProgress[set[0]].Repetitions)

	_, err = f.engine.Respond(ctx, userID, set[1], models.Forgot)
	require.NoError(t, err)
	_, err = f.engine.Respond(ctx, userID, set[2], models.Forgot)
	require.NoError(t, err)

	_, err = f.engine.Respond(ctx, userID, set[2], models.Forgot)
	assert.ErrorIs(t, err, ErrStaleResponse, "answer after completion")
}

func TestEngine_FeedbackBannerIsShownOnce(t *testing.T) {
	f := newFixture(t, dictionary(5, 1), Config{WordsPerSession: 3})
	ctx := context.Background()

	_, err := f.engine.Start(ctx, userID)
	require.NoError(t, err)
	set := f.session(t).CurrentWordSet

	reply, err := f.engine.Respond(ctx, userID, set[0], models.Remembered)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply.Message.Text, "✅ Great"))
	assert.Contains(t, reply.Message.Text, "Word 2 of 3")

	reply, err = f.engine.Show(ctx, userID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply.Message.Text, "📖 Word 2 of 3"))
}

func TestEngine_SkipsMissingWords(t *testing.T) {
	words := []models.WordEntry{
		{ID: "A", English: "alpha", Hebrew: "א"},
		{ID: "B", English: "bravo", Hebrew: "ב"},
		{ID: "C", English: "charlie", Hebrew: "ג"},
	}
	f := newFixture(t, words, DefaultConfig())
	ctx := context.Background()

	_, err := f.engine.Start(ctx, userID)
	require.NoError(t, err)
	set := f.session(t).CurrentWordSet

	// the dictionary loses the second word of the round
	remaining := []models.WordEntry{}
	for _, w := range words {
		if w.ID != set[1] {
			remaining = append(remaining, w)
		}
	}
	engine := NewEngine(database.NewWordRepository(remaining), f.profiles, DefaultConfig(), zerolog.Nop(),
		WithClock(func() time.Time { return fixedNow }))

	reply, err := engine.Respond(ctx, userID, set[0], models.Remembered)
	require.NoError(t, err)
	assert.Contains(t, reply.Message.Text, "Word 3 of 3")
	assert.Equal(t, 2, f.session(t).CurrentWordIndex)

	reply, err = engine.Respond(ctx, userID, set[2], models.Forgot)
	require.NoError(t, err)
	assert.Contains(t, reply.Message.Text, "You remembered 1 of 3 words")
	assert.Equal(t, []string{"✓", "✗"}, markers(reply.Message.Text))
}

func TestEngine_AllWordsMissingCompletesSession(t *testing.T) {
	f := newFixture(t, dictionary(2, 1), DefaultConfig())
	ctx := context.Background()

	_, err := f.engine.Start(ctx, userID)
	require.NoError(t, err)

	empty := NewEngine(database.NewWordRepository(nil), f.profiles, DefaultConfig(), zerolog.Nop())
	reply, err := empty.Show(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, chat.StateMainMenu, reply.State)
	assert.Contains(t, reply.Message.Text, "0 of 2")
}

func TestEngine_SummaryCountsStreakOnce(t *testing.T) {
	f := newFixture(t, dictionary(1, 1), DefaultConfig())
	ctx := context.Background()

	_, err := f.engine.Start(ctx, userID)
	require.NoError(t, err)
	_, err = f.engine.Respond(ctx, userID, "w0", models.Remembered)
	require.NoError(t, err)

	_, err = f.engine.Show(ctx, userID)
	require.NoError(t, err)
	_, err = f.engine.Show(ctx, userID)
	require.NoError(t, err)

	p, err := f.profiles.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.DailyStreak)
	assert.Equal(t, 1, p.TotalPracticeTime)
}

func TestEngine_FilterByLevel(t *testing.T) {
	words := append(dictionary(5, 1), models.WordEntry{ID: "hard", English: "ubiquitous", Hebrew: "נפוץ", Difficulty: 3})
	ctx := context.Background()

	f := newFixture(t, words, Config{WordsPerSession: 5, FilterByLevel: true})
	p, err := f.profiles.Get(ctx, userID)
	require.NoError(t, err)
	p.Level = "advanced"
	require.True(t, f.profiles.Save(ctx, p))

	_, err = f.engine.Start(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"hard"}, f.session(t).CurrentWordSet)

	unfiltered := newFixture(t, words, Config{WordsPerSession: 6})
	_, err = unfiltered.engine.Start(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, unfiltered.session(t).CurrentWordSet, 6)
}

func TestEngine_RandomWord(t *testing.T) {
	f := newFixture(t, dictionary(1, 1), DefaultConfig())
	ctx := context.Background()

	reply, err := f.engine.RandomWord(ctx, userID)
	require.NoError(t, err)
	assert.Contains(t, reply.Message.Text, "word0")
	assert.Contains(t, actionsOf(reply.Message), "word_remembered_w0")

	reply, err = f.engine.RateRandomWord(ctx, userID, "w0", models.Remembered)
	require.NoError(t, err)
	assert.Empty(t, reply.Toast)

	p, err := f.profiles.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.WordProgress["w0"].Repetitions)
	assert.Empty(t, p.SessionData.CurrentWordSet, "random words do not touch the practice round")

	_, err = f.engine.RateRandomWord(ctx, userID, "nope", models.Forgot)
	assert.ErrorIs(t, err, database.ErrWordNotFound)
}

// downStore fails every write while down is set
type downStore struct {
	*database.FileStore
	down atomic.Bool
}

func (s *downStore) Store(ctx context.Context, userID int64, data []byte) error {
	if s.down.Load() {
		return errors.New("store unavailable")
	}
	return s.FileStore.Store(ctx, userID, data)
}

func TestEngine_RoundContinuesWhileStoreIsDown(t *testing.T) {
	files, err := database.NewFileStore(t.TempDir())
	require.NoError(t, err)
	store := &downStore{FileStore: files}
	clock := func() time.Time { return fixedNow }
	profiles := database.NewUserRepository(store, zerolog.Nop(),
		database.WithClock(clock), database.WithPersistAttempts(1, time.Millisecond))
	engine := NewEngine(database.NewWordRepository(dictionary(5, 1)), profiles, Config{WordsPerSession: 3}, zerolog.Nop(),
		WithClock(clock))
	ctx := context.Background()

	_, err = engine.Start(ctx, userID)
	require.NoError(t, err)
	p, err := profiles.Get(ctx, userID)
	require.NoError(t, err)
	set := p.SessionData.CurrentWordSet

	store.down.Store(true)
	_, err = engine.Show(ctx, userID)
	require.NoError(t, err)

	reply, err := engine.Respond(ctx, userID, set[0], models.Remembered)
	require.NoError(t, err)
	assert.Contains(t, reply.Message.Text, "Word 2 of 3")

	reply, err = engine.Respond(ctx, userID, set[1], models.Forgot)
	require.NoError(t, err)
	assert.Contains(t, reply.Message.Text, "Word 3 of 3")

	reply, err = engine.Respond(ctx, userID, set[2], models.Remembered)
	require.NoError(t, err)
	assert.Contains(t, reply.Message.Text, "You remembered 2 of 3 words")
	assert.True(t, profiles.Unsaved(userID))

	// the next successful write persists everything answered during the outage
	store.down.Store(false)
	_, err = engine.Show(ctx, userID)
	require.NoError(t, err)
	assert.False(t, profiles.Unsaved(userID))

	raw, err := files.Load(ctx, userID)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"current_word_index": 3`)
	for _, id := range set {
		assert.Contains(t, string(raw), `"word_id": "`+id+`"`)
	}
}

func TestEngine_SkipAdvancesWithoutScoring(t *testing.T) {
	f := newFixture(t, dictionary(5, 1), Config{WordsPerSession: 2})
	ctx := context.Background()

	_, err := f.engine.Start(ctx, userID)
	require.NoError(t, err)
	set := f.session(t).CurrentWordSet

	reply, err := f.engine.Show(ctx, userID)
	require.NoError(t, err)
	assert.Contains(t, actionsOf(reply.Message), chat.WithID(chat.ActionPracticeSkip, set[0]))

	_, err = f.engine.Skip(ctx, userID, set[1])
	assert.ErrorIs(t, err, ErrStaleResponse)

	reply, err = f.engine.Skip(ctx, userID, set[0])
	require.NoError(t, err)
	assert.Contains(t, reply.Message.Text, "Word 2 of 2")

	_, err = f.engine.Skip(ctx, userID, set[0])
	assert.ErrorIs(t, err, ErrStaleResponse, "double tap on skip")

	p, err := f.profiles.Get(ctx, userID)
	require.NoError(t, err)
	assert.NotContains(t, p.WordProgress, set[0])
	assert.Equal(t, 1, p.SessionData.CurrentWordIndex)

	reply, err = f.engine.Respond(ctx, userID, set[1], models.Remembered)
	require.NoError(t, err)
	assert.Contains(t, reply.Message.Text, "You remembered 1 of 2 words")
	assert.Equal(t, []string{"✓"}, markers(reply.Message.Text))

	_, err = NewEngine(f.words, f.profiles, DefaultConfig(), zerolog.Nop()).Skip(ctx, userID+1, "w0")
	assert.ErrorIs(t, err, ErrNoSession)
}
