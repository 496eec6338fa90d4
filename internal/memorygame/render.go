package memorygame

import (
	"fmt"
	"strings"

	"github.com/example/vocabbot/internal/chat"
)

const hiddenMarker = "❓"

func boardMessage(g *Game) chat.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "🧠 Memory game (%s)\n\n", g.Difficulty)
	b.WriteString("Find the english and hebrew cards of each word.\n\n")
	fmt.Fprintf(&b, "Clicks: %d\n", g.Clicks)
	fmt.Fprintf(&b, "Pairs found: %d/%d", len(g.MatchOrder), len(g.Cards)/2)
	for _, id := range g.MatchOrder {
		english, hebrew := g.pairText(id)
		fmt.Fprintf(&b, "\n✅ %s - %s", english, hebrew)
	}

	rows := make([][]chat.Button, 0, len(g.Cards)/Columns+1)
	for start := 0; start < len(g.Cards); start += Columns {
		row := make([]chat.Button, 0, Columns)
		for idx := start; idx < start+Columns && idx < len(g.Cards); idx++ {
			row = append(row, chat.Button{Text: cardFace(g, idx), Action: chat.WithIndex(chat.ActionMemoryCard, idx)})
		}
		rows = append(rows, row)
	}
	rows = append(rows, chat.MenuRow())

	return chat.Message{Text: b.String(), Buttons: rows}
}

func cardFace(g *Game, idx int) string {
	for _, m := range g.Matched {
		if m == idx {
			return "✅ " + g.Cards[idx].Text
		}
	}
	for _, f := range g.Flipped {
		if f == idx {
			return g.Cards[idx].Text
		}
	}
	return hiddenMarker
}

func endMessage(g *Game, tier Tier) chat.Message {
	var b strings.Builder
	b.WriteString("🎉 Congratulations! You found all the pairs!\n\n")
	fmt.Fprintf(&b, "Clicks: %d\n", g.Clicks)
	b.WriteString(tier.Message)
	b.WriteString("\n\nWords in this game:")
	for _, id := range g.MatchOrder {
		english, hebrew := g.pairText(id)
		fmt.Fprintf(&b, "\n• %s - %s", english, hebrew)
	}

	return chat.Message{
		Text: b.String(),
		Buttons: [][]chat.Button{
			{{Text: "🔄 Play again", Action: chat.ActionGames}},
			chat.MenuRow(),
		},
	}
}
