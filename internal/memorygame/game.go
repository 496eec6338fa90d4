package memorygame

import (
	"time"

	"github.com/example/vocabbot/internal/chat"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	// Pairs is the number of words dealt per game
	Pairs = 8
	// BoardSize is the number of cards on the 4x4 board
	BoardSize = 2 * Pairs
	// Columns of the board
	Columns = 4
)

// Difficulty selects the word pool
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty accepts the names used in button actions
func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(s); d {
	case Easy, Medium, Hard:
		return d, true
	}
	return "", false
}

// CardKind tells which side of a pair a card shows
type CardKind string

const (
	KindEnglish CardKind = "english"
	KindHebrew  CardKind = "hebrew"
)

// Card is one face-down tile
type Card struct {
	Kind   CardKind
	Text   string
	PairID string
}

// IsMatch reports whether two cards are the two sides of the same word
func IsMatch(a, b Card) bool {
	return a.PairID == b.PairID && a.Kind != b.Kind
}

// Game is the state of one user's board
type Game struct {
	ID         uuid.UUID
	UserID     int64
	Difficulty Difficulty
	Cards      []Card
	Flipped    []int
	Matched    []int
	Clicks     int
	// pair ids in the order their matches were completed
	MatchOrder []string
	Anchor     chat.MessageRef
	UpdatedAt  time.Time
}

func (g *Game) isOpen(idx int) bool {
	return lo.Contains(g.Flipped, idx) || lo.Contains(g.Matched, idx)
}

func (g *Game) finished() bool {
	return len(g.Matched) == len(g.Cards)
}

// pairText returns the english and hebrew text of a pair
func (g *Game) pairText(pairID string) (english, hebrew string) {
	for _, c := range g.Cards {
		if c.PairID != pairID {
			continue
		}
		if c.Kind == KindEnglish {
			english = c.Text
		} else {
			hebrew = c.Text
		}
	}
	return english, hebrew
}

func (g *Game) clone() Game {
	c := *g
	c.Cards = append([]Card(nil), g.Cards...)
	c.Flipped = append([]int(nil), g.Flipped...)
	c.Matched = append([]int(nil), g.Matched...)
	c.MatchOrder = append([]string(nil), g.MatchOrder...)
	return c
}

// Tier is the end-of-game rating; fewer clicks rate higher
type Tier struct {
	Name    string
	Message string
}

var tiers = []struct {
	maxClicks int
	tier      Tier
}{
	{20, Tier{"amazing", "🏆 Amazing! You have an excellent memory!"}},
	{30, Tier{"great", "🌟 Great job! Very good memory!"}},
	{40, Tier{"good", "👍 Good job! Keep practicing!"}},
}

// TierFor rates a finished game by its click count
func TierFor(clicks int) Tier {
	for _, t := range tiers {
		if clicks <= t.maxClicks {
			return t.tier
		}
	}
	return Tier{"well done", "😊 Well done! Practice makes perfect!"}
}
