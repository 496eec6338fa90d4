package bot

import (
	"fmt"
	"strings"

	"github.com/example/vocabbot/internal/chat"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the part of tgbotapi.BotAPI the bot uses
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]chat.Button) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.Action))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// Renderer implements chat.Renderer on top of the Telegram API
type Renderer struct {
	api API
}

// NewRenderer creates a renderer
func NewRenderer(api API) *Renderer {
	return &Renderer{api: api}
}

// Send posts a new message
func (r *Renderer) Send(chatID int64, msg chat.Message) (chat.MessageRef, error) {
	m := tgbotapi.NewMessage(chatID, msg.Text)
	m.ParseMode = msg.ParseMode
	if len(msg.Buttons) > 0 {
		m.ReplyMarkup = createKeyboard(msg.Buttons)
	}
	sent, err := r.api.Send(m)
	if err != nil {
		return chat.MessageRef{}, fmt.Errorf("failed to send message: %w", err)
	}
	return chat.MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

// Edit replaces the text and keyboard of a message
func (r *Renderer) Edit(ref chat.MessageRef, msg chat.Message) error {
	var edit tgbotapi.EditMessageTextConfig
	if len(msg.Buttons) > 0 {
		edit = tgbotapi.NewEditMessageTextAndMarkup(ref.ChatID, ref.MessageID, msg.Text, createKeyboard(msg.Buttons))
	} else {
		edit = tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, msg.Text)
	}
	edit.ParseMode = msg.ParseMode

	if _, err := r.api.Request(edit); err != nil {
		if isNotModified(err) {
			return chat.ErrNotModified
		}
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// Ack answers a button press, optionally with a toast
func (r *Renderer) Ack(callbackID, text string) error {
	if _, err := r.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

func isNotModified(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "message is not modified")
}
