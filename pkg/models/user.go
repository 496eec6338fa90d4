package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used in profiles
const DateLayout = "2006-01-02"

// Level is the learner level. Older profiles store it as a number (1-3),
// registration stores a name (beginner, intermediate, advanced).
type Level string

var levelNames = map[string]int{
	"beginner":     1,
	"intermediate": 2,
	"advanced":     3,
}

// Difficulty maps the level onto the dictionary difficulty scale
func (l Level) Difficulty() (int, bool) {
	s := strings.ToLower(strings.TrimSpace(string(l)))
	if d, ok := levelNames[s]; ok {
		return d, true
	}
	d, err := strconv.Atoi(s)
	if err != nil || d < 1 {
		return 0, false
	}
	return d, true
}

// UnmarshalJSON accepts both the numeric and the named form
func (l *Level) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Level(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid level %s: %w", data, err)
	}
	*l = Level(n.String())
	return nil
}

// UserProfile is the persisted record of one chat user
type UserProfile struct {
	UserID            int64                   `json:"user_id"`
	JoinDate          string                  `json:"join_date"`
	Level             Level                   `json:"level"`
	WordsKnowledge    map[string]int          `json:"words_knowledge"`
	WordProgress      map[string]WordProgress `json:"word_progress"`
	Progress          ProgressSummary         `json:"progress"`
	DailyStreak       int                     `json:"daily_streak"`
	LastPractice      string                  `json:"last_practice,omitempty"` // DateLayout
	TotalPracticeTime int                     `json:"total_practice_time"`     // minutes
	SessionData       SessionData             `json:"session_data"`
}

// NewUserProfile returns the default profile of a user seen for the first time
func NewUserProfile(userID int64, now time.Time) *UserProfile {
	return &UserProfile{
		UserID:         userID,
		JoinDate:       now.Format(DateLayout),
		Level:          "1",
		WordsKnowledge: map[string]int{},
		WordProgress:   map[string]WordProgress{},
		SessionData:    NewSessionData(),
	}
}

// Normalize restores defaults for fields an older or partial document did not carry
func (p *UserProfile) Normalize(userID int64, now time.Time) {
	def := NewUserProfile(userID, now)
	if p.UserID == 0 {
		p.UserID = def.UserID
	}
	if p.JoinDate == "" {
		p.JoinDate = def.JoinDate
	}
	if p.Level == "" {
		p.Level = def.Level
	}
	if p.WordsKnowledge == nil {
		p.WordsKnowledge = def.WordsKnowledge
	}
	if p.WordProgress == nil {
		p.WordProgress = def.WordProgress
	}
	if p.SessionData.CurrentWordSet == nil {
		p.SessionData.CurrentWordSet = []string{}
	}
	if p.SessionData.SessionResults == nil {
		p.SessionData.SessionResults = map[string]SessionResult{}
	}
	if p.SessionData.ConversationContext == nil {
		p.SessionData.ConversationContext = map[string]string{}
	}
	if p.SessionData.CurrentWordIndex < 0 {
		p.SessionData.CurrentWordIndex = 0
	}
	if p.SessionData.CurrentWordIndex > len(p.SessionData.CurrentWordSet) {
		p.SessionData.CurrentWordIndex = len(p.SessionData.CurrentWordSet)
	}
}

// WordsLearned counts the words with a positive knowledge score
func (p *UserProfile) WordsLearned() int {
	n := 0
	for _, score := range p.WordsKnowledge {
		if score > 0 {
			n++
		}
	}
	return n
}

// RecordPractice updates the daily streak for a practice finished at now
func (p *UserProfile) RecordPractice(now time.Time, minutes int) {
	today := now.Format(DateLayout)
	switch p.LastPractice {
	case today:
	case now.AddDate(0, 0, -1).Format(DateLayout):
		p.DailyStreak++
	default:
		p.DailyStreak = 1
	}
	p.LastPractice = today
	p.TotalPracticeTime += minutes
}
