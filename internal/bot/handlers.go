package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/vocabbot/internal/chat"
	"github.com/example/vocabbot/internal/memorygame"
	"github.com/example/vocabbot/internal/practice"
	"github.com/example/vocabbot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message.From == nil || message.Chat == nil {
		return fmt.Errorf("invalid message: required fields are missing")
	}
	userID, chatID := message.From.ID, message.Chat.ID

	switch message.Command() {
	case "start":
		p, err := b.profiles.Get(ctx, userID)
		if err != nil {
			return err
		}
		b.setState(userID, chat.StateMainMenu)
		return b.send(chatID, welcomeMessage(p, message.From.FirstName))
	case "menu":
		return b.showMainMenu(ctx, userID, chat.MessageRef{ChatID: chatID})
	case "practice":
		reply, err := b.practice.Start(ctx, userID)
		if err != nil {
			return err
		}
		b.setState(userID, reply.State)
		return b.send(chatID, reply.Message)
	case "game":
		return b.send(chatID, gamesMenuMessage())
	case "word":
		reply, err := b.practice.RandomWord(ctx, userID)
		if err != nil {
			return err
		}
		return b.send(chatID, reply.Message)
	case "profile":
		p, err := b.profiles.Get(ctx, userID)
		if err != nil {
			return err
		}
		return b.send(chatID, profileMessage(p, b.words.Count()))
	case "help":
		return b.send(chatID, helpMessage())
	default:
		return b.send(chatID, chat.Message{
			Text:    "Unknown command. Use /menu to show the main menu.",
			Buttons: [][]chat.Button{chat.MenuRow()},
		})
	}
}

// handleText answers free text, which the bot does not interpret
func (b *Bot) handleText(message *tgbotapi.Message) error {
	if message.From == nil || message.Chat == nil {
		return nil
	}
	var text string
	switch b.state(message.From.ID) {
	case chat.StatePracticing:
		text = "Use the buttons under the word to answer."
	case chat.StatePlayingGame:
		text = "Tap the cards on the board to play."
	default:
		text = "I don't understand. Use /menu to show the main menu."
	}
	return b.send(message.Chat.ID, chat.Message{Text: text, Buttons: [][]chat.Button{chat.MenuRow()}})
}

// HandleCallback handles inline button presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil || callback.Message.Chat == nil || callback.From == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}
	userID := callback.From.ID
	ref := chat.MessageRef{ChatID: callback.Message.Chat.ID, MessageID: callback.Message.MessageID}

	if !b.allow(userID) {
		b.answer(callback.ID, "⏳ Slow down a little")
		return nil
	}

	toast, err := b.route(ctx, userID, ref, callback.Data)
	// Always answer the callback query to remove the loading state
	b.answer(callback.ID, toast)
	if err != nil {
		if sendErr := b.send(ref.ChatID, chat.Message{
			Text:    "❌ Something went wrong. Please try again later.",
			Buttons: [][]chat.Button{chat.MenuRow()},
		}); sendErr != nil {
			b.log.Warn().Err(sendErr).Int64("user_id", userID).Msg("failed to report error to user")
		}
		return fmt.Errorf("callback %q: %w", callback.Data, err)
	}
	return nil
}

// route dispatches a button action and returns the toast for the acknowledgement
func (b *Bot) route(ctx context.Context, userID int64, ref chat.MessageRef, data string) (string, error) {
	switch data {
	case chat.ActionMainMenu:
		return "", b.showMainMenu(ctx, userID, ref)
	case chat.ActionPractice:
		reply, err := b.practice.Start(ctx, userID)
		return b.applyReply(userID, ref, reply, err)
	case chat.ActionPracticeShow:
		reply, err := b.practice.Show(ctx, userID)
		if errors.Is(err, practice.ErrNoSession) {
			return "No practice in progress", b.showMainMenu(ctx, userID, ref)
		}
		return b.applyReply(userID, ref, reply, err)
	case chat.ActionRandomWord:
		reply, err := b.practice.RandomWord(ctx, userID)
		return b.applyReply(userID, ref, reply, err)
	case chat.ActionGames:
		b.setState(userID, chat.StateMainMenu)
		return "", b.edit(ref, gamesMenuMessage())
	case chat.ActionProfile:
		p, err := b.profiles.Get(ctx, userID)
		if err != nil {
			return "", err
		}
		return "", b.edit(ref, profileMessage(p, b.words.Count()))
	case chat.ActionLevelMenu:
		return "", b.edit(ref, levelMenuMessage())
	case chat.ActionHelp:
		return "", b.edit(ref, helpMessage())
	}

	if id, ok := chat.TrimID(data, chat.ActionPracticeKnew); ok {
		return b.practiceAnswer(ctx, userID, ref, id, models.Remembered)
	}
	if id, ok := chat.TrimID(data, chat.ActionPracticeForgot); ok {
		return b.practiceAnswer(ctx, userID, ref, id, models.Forgot)
	}
	if id, ok := chat.TrimID(data, chat.ActionPracticeSkip); ok {
		reply, err := b.practice.Skip(ctx, userID, id)
		return b.practiceReply(ctx, userID, ref, reply, err)
	}
	if id, ok := chat.TrimID(data, chat.ActionWordKnew); ok {
		reply, err := b.practice.RateRandomWord(ctx, userID, id, models.Remembered)
		return b.applyReply(userID, ref, reply, err)
	}
	if id, ok := chat.TrimID(data, chat.ActionWordForgot); ok {
		reply, err := b.practice.RateRandomWord(ctx, userID, id, models.Forgot)
		return b.applyReply(userID, ref, reply, err)
	}
	if idx, ok := chat.TrimIndex(data, chat.ActionMemoryCard); ok {
		return b.flipCard(ctx, userID, idx), nil
	}
	if name, ok := chat.TrimID(data, chat.ActionMemoryGame); ok {
		difficulty, ok := memorygame.ParseDifficulty(name)
		if !ok {
			return "Unknown difficulty", nil
		}
		if err := b.memory.Start(ctx, userID, ref, difficulty); err != nil {
			return "", err
		}
		b.setState(userID, chat.StatePlayingGame)
		return "", nil
	}
	if level, ok := chat.TrimIndex(data, chat.ActionSetLevel); ok {
		return b.setLevel(ctx, userID, ref, level)
	}

	b.log.Warn().Int64("user_id", userID).Str("data", data).Msg("unknown callback")
	return "⚠️ Unknown action", nil
}

// applyReply renders an engine reply in place of the pressed message
func (b *Bot) applyReply(userID int64, ref chat.MessageRef, reply chat.Reply, err error) (string, error) {
	if err != nil {
		return "", err
	}
	b.setState(userID, reply.State)
	return reply.Toast, b.edit(ref, reply.Message)
}

func (b *Bot) practiceAnswer(ctx context.Context, userID int64, ref chat.MessageRef, wordID string, outcome models.Outcome) (string, error) {
	reply, err := b.practice.Respond(ctx, userID, wordID, outcome)
	return b.practiceReply(ctx, userID, ref, reply, err)
}

// practiceReply maps the round's rejections onto toasts
func (b *Bot) practiceReply(ctx context.Context, userID int64, ref chat.MessageRef, reply chat.Reply, err error) (string, error) {
	switch {
	case errors.Is(err, practice.ErrStaleResponse):
		return "This word was already answered", nil
	case errors.Is(err, practice.ErrNoSession):
		return "No practice in progress", b.showMainMenu(ctx, userID, ref)
	}
	return b.applyReply(userID, ref, reply, err)
}

func (b *Bot) flipCard(ctx context.Context, userID int64, idx int) string {
	result := b.memory.Flip(ctx, userID, idx)
	switch result.Outcome {
	case memorygame.OutcomeGameOver, memorygame.OutcomeNoGame:
		b.setState(userID, chat.StateMainMenu)
	default:
		b.setState(userID, chat.StatePlayingGame)
	}
	return result.Toast
}

func (b *Bot) setLevel(ctx context.Context, userID int64, ref chat.MessageRef, level int) (string, error) {
	name, ok := levelNames[level]
	if !ok {
		return "Unknown level", nil
	}
	p, err := b.profiles.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	p.Level = models.Level(name)
	toast := "Level set to " + name
	if !b.profiles.Save(ctx, p) {
		toast = "⚠️ Level could not be saved"
	}
	b.setState(userID, chat.StateMainMenu)
	return toast, b.edit(ref, mainMenuMessage(p))
}

// showMainMenu edits ref into the main menu, or sends it when ref has no message
func (b *Bot) showMainMenu(ctx context.Context, userID int64, ref chat.MessageRef) error {
	p, err := b.profiles.Get(ctx, userID)
	if err != nil {
		return err
	}
	b.setState(userID, chat.StateMainMenu)
	msg := mainMenuMessage(p)
	if ref.MessageID == 0 {
		return b.send(ref.ChatID, msg)
	}
	return b.edit(ref, msg)
}

func (b *Bot) answer(callbackID, text string) {
	if err := b.renderer.Ack(callbackID, strings.TrimSpace(text)); err != nil {
		b.log.Warn().Err(err).Msg("failed to answer callback")
	}
}
