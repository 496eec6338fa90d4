// Package spaced_repetition implements the per-word scoring rule applied
// after each flashcard answer.
package spaced_repetition

import (
	"time"

	"github.com/example/vocabbot/pkg/models"
)

// Scorer updates word progress records
type Scorer struct {
	// Repetitions required before a word can be mastered
	MasteryRepetitions int
	// Success rate required before a word can be mastered
	MasteryRate float64
}

// NewScorer returns a scorer with the default mastery thresholds
func NewScorer() *Scorer {
	return &Scorer{
		MasteryRepetitions: 3,
		MasteryRate:        0.7,
	}
}

// Process applies one answer to the progress record.
//
// The success rate after a remembered answer is (r-1)/r + 1/r, which is
// always 1 regardless of history; the mastery check reads the rate before
// it is overwritten. After a forgotten answer the rate is (r-1)/r.
func (s *Scorer) Process(progress *models.WordProgress, outcome models.Outcome, now time.Time) {
	if progress.Status == "" {
		progress.Status = models.StatusNew
	}
	progress.Repetitions++
	r := float64(progress.Repetitions)

	switch outcome {
	case models.Remembered:
		if progress.Status == models.StatusNew {
			progress.Status = models.StatusLearning
		} else if progress.Repetitions >= s.MasteryRepetitions && progress.SuccessRate >= s.MasteryRate {
			progress.Status = models.StatusMastered
		}
		progress.SuccessRate = (r-1)/r + 1/r
	default:
		progress.SuccessRate = (r - 1) / r
		if progress.Status == models.StatusMastered {
			progress.Status = models.StatusLearning
		}
	}

	progress.LastReview = now.Format(time.RFC3339)
}

// CountMastered scans all progress records
func CountMastered(progress map[string]models.WordProgress) int {
	n := 0
	for _, p := range progress {
		if p.Status == models.StatusMastered {
			n++
		}
	}
	return n
}
