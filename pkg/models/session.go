package models

import "time"

// SessionResult is the learner's answer to one word of a practice session
type SessionResult struct {
	Word       string `json:"word"`
	Hebrew     string `json:"hebrew"`
	Remembered bool   `json:"remembered"`
}

// SessionData is the practice round embedded in a profile. At most one is active per user.
type SessionData struct {
	CurrentWordSet      []string                 `json:"current_word_set"`
	CurrentWordIndex    int                      `json:"current_word_index"`
	SessionResults      map[string]SessionResult `json:"session_results"`
	ConversationContext map[string]string        `json:"conversation_context"`
	StartedAt           *time.Time               `json:"started_at,omitempty"`
	Completed           bool                     `json:"completed"`
}

// NewSessionData returns an empty session
func NewSessionData() SessionData {
	return SessionData{
		CurrentWordSet:      []string{},
		SessionResults:      map[string]SessionResult{},
		ConversationContext: map[string]string{},
	}
}

// Finished reports whether every word of the set has been consumed
func (s SessionData) Finished() bool {
	return s.CurrentWordIndex >= len(s.CurrentWordSet)
}

// Active reports whether a round was started and not yet summarized
func (s SessionData) Active() bool {
	return len(s.CurrentWordSet) > 0 && !s.Completed
}
