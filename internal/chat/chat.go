// Package chat defines what the engines hand to the transport: messages with
// inline choice buttons, references to rendered messages, and the
// conversation state of a user.
package chat

import "errors"

// ErrNotModified is returned by Renderer.Edit when the new content equals the old one.
// Callers treat it as success.
var ErrNotModified = errors.New("message is not modified")

// ParseModeHTML marks a message whose text contains HTML markup
const ParseModeHTML = "HTML"

// Button is one inline choice; Action is delivered back when it is pressed
type Button struct {
	Text   string
	Action string
}

// Message is a render request
type Message struct {
	Text      string
	Buttons   [][]Button
	ParseMode string
}

// MessageRef points at a rendered message so it can be edited later
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Renderer delivers messages to a chat
type Renderer interface {
	Send(chatID int64, msg Message) (MessageRef, error)
	Edit(ref MessageRef, msg Message) error
}

// State is where a user is in the conversation. The router keeps one per user.
type State int

const (
	StateMainMenu State = iota
	StatePracticing
	StatePlayingGame
)

func (s State) String() string {
	switch s {
	case StatePracticing:
		return "practicing"
	case StatePlayingGame:
		return "playing_game"
	default:
		return "main_menu"
	}
}

// Reply is the outcome of an engine action: what to render, where the user
// is afterwards, and an optional toast for the acknowledged button
type Reply struct {
	Message Message
	State   State
	Toast   string
}
