package practice

import (
	"context"
	"fmt"

	"github.com/example/vocabbot/internal/chat"
	"github.com/example/vocabbot/internal/database"
	"github.com/example/vocabbot/pkg/models"
)

// RandomWord shows one dictionary word outside of a practice round
func (e *Engine) RandomWord(ctx context.Context, userID int64) (chat.Reply, error) {
	words := e.words.SampleRandom(1, database.WordFilter{})
	if len(words) == 0 {
		return chat.Reply{
			Message: chat.Message{Text: "😕 The dictionary is empty.", Buttons: [][]chat.Button{chat.MenuRow()}},
			State:   chat.StateMainMenu,
		}, nil
	}
	word := words[0]
	msg := chat.Message{
		Text:      wordText(&word, "", "🎲 Random word"),
		ParseMode: chat.ParseModeHTML,
		Buttons: [][]chat.Button{
			{
				{Text: "✅ I knew it", Action: chat.WithID(chat.ActionWordKnew, word.ID)},
				{Text: "❌ I didn't", Action: chat.WithID(chat.ActionWordForgot, word.ID)},
			},
			{{Text: "🎲 Another word", Action: chat.ActionRandomWord}},
			chat.MenuRow(),
		},
	}
	return chat.Reply{Message: msg, State: chat.StateMainMenu}, nil
}

// RateRandomWord records the answer to a random word card
func (e *Engine) RateRandomWord(ctx context.Context, userID int64, wordID string, outcome models.Outcome) (chat.Reply, error) {
	word, err := e.words.GetByID(wordID)
	if err != nil {
		return chat.Reply{}, fmt.Errorf("failed to rate word %s: %w", wordID, err)
	}

	unlock := e.locks.Lock(userID)
	ok := e.profiles.UpdateWordProgress(ctx, userID, wordID, outcome)
	unlock()

	reply := chat.Reply{
		Message: chat.Message{
			Text: feedbackBanner(models.SessionResult{
				Word: word.English, Hebrew: word.Hebrew, Remembered: outcome == models.Remembered,
			}),
			Buttons: [][]chat.Button{
				{{Text: "🎲 Another word", Action: chat.ActionRandomWord}},
				chat.MenuRow(),
			},
		},
		State: chat.StateMainMenu,
	}
	if !ok {
		reply.Toast = "⚠️ Progress could not be saved"
	}
	return reply, nil
}
