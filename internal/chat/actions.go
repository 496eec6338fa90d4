package chat

import (
	"strconv"
	"strings"
)

// Action ids carried by inline buttons. Ids ending in "_" take a suffix.
const (
	ActionMainMenu       = "main_menu"
	ActionPractice       = "practice"
	ActionPracticeShow   = "practice_show"
	ActionPracticeKnew   = "practice_remembered_"
	ActionPracticeForgot = "practice_forgot_"
	ActionPracticeSkip   = "practice_skip_"
	ActionRandomWord     = "random_word"
	ActionWordKnew       = "word_remembered_"
	ActionWordForgot     = "word_forgot_"
	ActionGames          = "games"
	ActionMemoryGame     = "game_memory_"
	ActionMemoryCard     = "memory_card_"
	ActionProfile        = "profile"
	ActionLevelMenu      = "level"
	ActionSetLevel       = "level_"
	ActionHelp           = "help"
)

// WithID appends an id to a prefix action
func WithID(prefix, id string) string {
	return prefix + id
}

// WithIndex appends a number to a prefix action
func WithIndex(prefix string, n int) string {
	return prefix + strconv.Itoa(n)
}

// TrimID returns the suffix of data after prefix
func TrimID(data, prefix string) (string, bool) {
	if !strings.HasPrefix(data, prefix) || len(data) == len(prefix) {
		return "", false
	}
	return strings.TrimPrefix(data, prefix), true
}

// TrimIndex returns the numeric suffix of data after prefix
func TrimIndex(data, prefix string) (int, bool) {
	s, ok := TrimID(data, prefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// MenuRow is the single "back to menu" row appended to most screens
func MenuRow() []Button {
	return []Button{{Text: "🏠 Main menu", Action: ActionMainMenu}}
}
