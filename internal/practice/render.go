package practice

import (
	"fmt"
	"html"
	"strings"

	"github.com/example/vocabbot/internal/chat"
	"github.com/example/vocabbot/pkg/models"
)

const maxExamples = 2

func introMessage(n int) chat.Message {
	text := "📚 <b>Practice session</b>\n\n" +
		fmt.Sprintf("You will see %d words, one at a time.\n", n) +
		"For each word tell me whether you remembered its meaning."
	return chat.Message{
		Text:      text,
		ParseMode: chat.ParseModeHTML,
		Buttons: [][]chat.Button{
			{{Text: "▶️ Show first word", Action: chat.ActionPracticeShow}},
			chat.MenuRow(),
		},
	}
}

func wordMessage(word *models.WordEntry, feedback string, position, total int) chat.Message {
	header := fmt.Sprintf("📖 Word %d of %d", position, total)
	return chat.Message{
		Text:      wordText(word, feedback, header),
		ParseMode: chat.ParseModeHTML,
		Buttons: [][]chat.Button{
			{
				{Text: "✅ I remembered", Action: chat.WithID(chat.ActionPracticeKnew, word.ID)},
				{Text: "❌ I forgot", Action: chat.WithID(chat.ActionPracticeForgot, word.ID)},
			},
			{{Text: "⏭️ Next word", Action: chat.WithID(chat.ActionPracticeSkip, word.ID)}},
			chat.MenuRow(),
		},
	}
}

func wordText(word *models.WordEntry, feedback, header string) string {
	var b strings.Builder
	if feedback != "" {
		b.WriteString(html.EscapeString(feedback))
		b.WriteString("\n\n")
	}
	b.WriteString(header)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(word.English))
	if word.Translation != "" {
		fmt.Fprintf(&b, "Translation: %s\n", html.EscapeString(word.Translation))
	}
	fmt.Fprintf(&b, "Hebrew: %s\n", html.EscapeString(word.Hebrew))
	if word.PartOfSpeech != "" {
		fmt.Fprintf(&b, "Part of speech: <i>%s</i>\n", html.EscapeString(word.PartOfSpeech))
	}
	if len(word.Examples) > 0 {
		b.WriteString("\nExamples:\n")
		for i, ex := range word.Examples {
			if i == maxExamples {
				break
			}
			fmt.Fprintf(&b, "• %s\n", html.EscapeString(ex))
		}
	}
	if len(word.Synonyms) > 0 {
		fmt.Fprintf(&b, "\nSynonyms: %s\n", html.EscapeString(strings.Join(word.Synonyms, ", ")))
	}
	return strings.TrimRight(b.String(), "\n")
}

func feedbackBanner(r models.SessionResult) string {
	if r.Remembered {
		return fmt.Sprintf("✅ Great, you remembered \"%s\"!", r.Word)
	}
	return fmt.Sprintf("📝 \"%s\" means %s. You'll see it again soon.", r.Word, r.Hebrew)
}

// summaryLines returns one marked line per answered word, in the order the words were shown
func summaryLines(session *models.SessionData) []string {
	lines := make([]string, 0, len(session.CurrentWordSet))
	for _, id := range session.CurrentWordSet {
		r, ok := session.SessionResults[id]
		if !ok {
			continue
		}
		marker := "✗"
		if r.Remembered {
			marker = "✓"
		}
		lines = append(lines, fmt.Sprintf("%s %s - %s", marker, r.Word, r.Hebrew))
	}
	return lines
}

func summaryMessage(session *models.SessionData, feedback string) chat.Message {
	var b strings.Builder
	if feedback != "" {
		b.WriteString(html.EscapeString(feedback))
		b.WriteString("\n\n")
	}
	b.WriteString("🏁 <b>Practice complete!</b>\n\n")
	fmt.Fprintf(&b, "You remembered %d of %d words.\n\n", countRemembered(session), len(session.CurrentWordSet))
	for _, line := range summaryLines(session) {
		b.WriteString(html.EscapeString(line))
		b.WriteString("\n")
	}
	return chat.Message{
		Text:      strings.TrimRight(b.String(), "\n"),
		ParseMode: chat.ParseModeHTML,
		Buttons: [][]chat.Button{
			{{Text: "🔄 Practice again", Action: chat.ActionPractice}},
			chat.MenuRow(),
		},
	}
}
