package models

import "strings"

// DefaultTopic is assigned to dictionary entries that carry no topic tags
const DefaultTopic = "general"

// WordEntry represents a single vocabulary item of the static dictionary
type WordEntry struct {
	ID           string   `json:"word_id"`
	English      string   `json:"english"`
	Translation  string   `json:"translation,omitempty"`
	Hebrew       string   `json:"hebrew"`
	PartOfSpeech string   `json:"part_of_speech"`
	Difficulty   int      `json:"difficulty_level"` // 1-3
	Examples     []string `json:"examples"`
	Synonyms     []string `json:"synonyms"`
	TopicTags    []string `json:"topic_tags"`
}

// Valid reports whether the entry has both sides of a translation pair
func (w WordEntry) Valid() bool {
	return strings.TrimSpace(w.English) != "" && strings.TrimSpace(w.Hebrew) != ""
}

// Normalize fills in the defaults a dictionary file may omit
func (w *WordEntry) Normalize() {
	if w.Difficulty == 0 {
		w.Difficulty = 1
	}
	if len(w.TopicTags) == 0 {
		w.TopicTags = []string{DefaultTopic}
	}
	if w.Examples == nil {
		w.Examples = []string{}
	}
	if w.Synonyms == nil {
		w.Synonyms = []string{}
	}
}
