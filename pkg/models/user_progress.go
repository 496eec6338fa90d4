package models

// WordStatus is the learning stage of a word for one user
type WordStatus string

const (
	StatusNew      WordStatus = "new"
	StatusLearning WordStatus = "learning"
	StatusMastered WordStatus = "mastered"
)

// Outcome is the learner's answer to a flashcard
type Outcome int

const (
	Forgot Outcome = iota
	Remembered
)

func (o Outcome) String() string {
	if o == Remembered {
		return "remembered"
	}
	return "forgot"
}

// WordProgress tracks a user's repetition history with a specific word
type WordProgress struct {
	WordID      string     `json:"word_id"`
	Status      WordStatus `json:"status"`
	Repetitions int        `json:"repetitions"`
	SuccessRate float64    `json:"success_rate"`
	LastReview  string     `json:"last_review,omitempty"` // RFC3339
}

// NewWordProgress returns the progress record of a word that was never reviewed
func NewWordProgress(wordID string) WordProgress {
	return WordProgress{WordID: wordID, Status: StatusNew}
}

// ProgressSummary holds aggregates recomputed from the per-word records
type ProgressSummary struct {
	WordsMastered int `json:"words_mastered"`
}
