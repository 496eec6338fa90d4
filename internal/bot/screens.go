package bot

import (
	"fmt"
	"strings"

	"github.com/example/vocabbot/internal/chat"
	"github.com/example/vocabbot/pkg/models"
)

var levelNames = map[int]string{
	1: "beginner",
	2: "intermediate",
	3: "advanced",
}

// MainMenuButtons returns the main menu keyboard
func MainMenuButtons() [][]chat.Button {
	return [][]chat.Button{
		{
			{Text: "📚 Practice", Action: chat.ActionPractice},
			{Text: "🎮 Games", Action: chat.ActionGames},
		},
		{
			{Text: "🎲 Random word", Action: chat.ActionRandomWord},
			{Text: "👤 Profile", Action: chat.ActionProfile},
		},
		{
			{Text: "🎯 Level", Action: chat.ActionLevelMenu},
			{Text: "❓ Help", Action: chat.ActionHelp},
		},
	}
}

func mainMenuMessage(p *models.UserProfile) chat.Message {
	text := "🏠 Main menu\n\n" +
		fmt.Sprintf("📚 Words learned: %d\n", p.WordsLearned()) +
		fmt.Sprintf("🔥 Daily streak: %d days\n", p.DailyStreak) +
		fmt.Sprintf("⏱ Practice time: %d minutes\n\n", p.TotalPracticeTime) +
		"What would you like to do?"
	return chat.Message{Text: text, Buttons: MainMenuButtons()}
}

func welcomeMessage(p *models.UserProfile, name string) chat.Message {
	msg := mainMenuMessage(p)
	greeting := "👋 Welcome"
	if name != "" {
		greeting += ", " + name
	}
	msg.Text = greeting + "!\n\nI will help you learn English and Hebrew words with flashcards and games.\n\n" + msg.Text
	return msg
}

func gamesMenuMessage() chat.Message {
	return chat.Message{
		Text: "🎮 Memory game\n\nMatch each english word with its hebrew translation.\nChoose a difficulty:",
		Buttons: [][]chat.Button{
			{{Text: "🟢 Easy", Action: chat.ActionMemoryGame + "easy"}},
			{{Text: "🟡 Medium (your words)", Action: chat.ActionMemoryGame + "medium"}},
			{{Text: "🔴 Hard (whole dictionary)", Action: chat.ActionMemoryGame + "hard"}},
			chat.MenuRow(),
		},
	}
}

func profileMessage(p *models.UserProfile, dictionarySize int) chat.Message {
	level := string(p.Level)
	if d, ok := p.Level.Difficulty(); ok {
		if name, ok := levelNames[d]; ok {
			level = name
		}
	}
	var b strings.Builder
	b.WriteString("👤 Your profile\n\n")
	fmt.Fprintf(&b, "📅 Joined: %s\n", p.JoinDate)
	fmt.Fprintf(&b, "🎯 Level: %s\n", level)
	fmt.Fprintf(&b, "🏆 Words mastered: %d\n", p.Progress.WordsMastered)
	fmt.Fprintf(&b, "📚 Words learned: %d of %d\n", p.WordsLearned(), dictionarySize)
	fmt.Fprintf(&b, "🔥 Daily streak: %d days\n", p.DailyStreak)
	if p.LastPractice != "" {
		fmt.Fprintf(&b, "🕐 Last practice: %s\n", p.LastPractice)
	}
	fmt.Fprintf(&b, "⏱ Practice time: %d minutes", p.TotalPracticeTime)
	return chat.Message{Text: b.String(), Buttons: [][]chat.Button{chat.MenuRow()}}
}

func levelMenuMessage() chat.Message {
	return chat.Message{
		Text: "🎯 Choose your level:",
		Buttons: [][]chat.Button{
			{{Text: "🌱 Beginner", Action: chat.WithIndex(chat.ActionSetLevel, 1)}},
			{{Text: "🌿 Intermediate", Action: chat.WithIndex(chat.ActionSetLevel, 2)}},
			{{Text: "🌳 Advanced", Action: chat.WithIndex(chat.ActionSetLevel, 3)}},
			chat.MenuRow(),
		},
	}
}

func helpMessage() chat.Message {
	text := "📖 Help\n\n" +
		"/start - Start the bot\n" +
		"/menu - Show the main menu\n" +
		"/practice - Practice 5 words\n" +
		"/game - Play the memory game\n" +
		"/word - Show a random word\n" +
		"/profile - Show your progress\n" +
		"/help - Show this help\n\n" +
		"💡 Practice every day to keep your streak going!"
	return chat.Message{Text: text, Buttons: [][]chat.Button{chat.MenuRow()}}
}
