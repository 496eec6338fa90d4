package spaced_repetition

import (
	"testing"
	"time"

	"github.com/example/vocabbot/pkg/models"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestProcess_RememberedThenForgot(t *testing.T) {
	s := NewScorer()
	p := models.NewWordProgress("w1")

	s.Process(&p, models.Remembered, now)
	assert.Equal(t, 1, p.Repetitions)
	assert.Equal(t, 1.0, p.SuccessRate)
	assert.Equal(t, models.StatusLearning, p.Status)
	assert.Equal(t, "2026-01-02T03:04:05Z", p.LastReview)

	s.Process(&p, models.Forgot, now)
	assert.Equal(t, 2, p.Repetitions)
	assert.Equal(t, 0.5, p.SuccessRate)
	assert.Equal(t, models.StatusLearning, p.Status)
}

// The remembered formula resets the rate to 1 no matter how many misses came before.
func TestProcess_RememberedRateIgnoresHistory(t *testing.T) {
	s := NewScorer()
	p := models.NewWordProgress("w1")

	for i := 0; i < 5; i++ {
		s.Process(&p, models.Forgot, now)
	}
	assert.InDelta(t, 0.8, p.SuccessRate, 1e-9)

	s.Process(&p, models.Remembered, now)
	assert.Equal(t, 6, p.Repetitions)
	assert.InDelta(t, 1.0, p.SuccessRate, 1e-9)
}

func TestProcess_Mastery(t *testing.T) {
	s := NewScorer()
	p := models.NewWordProgress("w1")

	s.Process(&p, models.Remembered, now) // new -> learning
	s.Process(&p, models.Remembered, now) // reps 2, below threshold
	assert.Equal(t, models.StatusLearning, p.Status)

	s.Process(&p, models.Remembered, now) // reps 3, prior rate 1.0
	assert.Equal(t, models.StatusMastered, p.Status)

	s.Process(&p, models.Forgot, now)
	assert.Equal(t, models.StatusLearning, p.Status)
	assert.InDelta(t, 0.75, p.SuccessRate, 1e-9)
}

func TestProcess_MasteryUsesPriorRate(t *testing.T) {
	s := NewScorer()
	p := models.WordProgress{WordID: "w1", Status: models.StatusLearning, Repetitions: 4, SuccessRate: 0.6}

	s.Process(&p, models.Remembered, now)

	assert.Equal(t, models.StatusLearning, p.Status)
	assert.InDelta(t, 1.0, p.SuccessRate, 1e-9)
}

func TestProcess_FirstAnswerForgot(t *testing.T) {
	s := NewScorer()
	p := models.NewWordProgress("w1")

	s.Process(&p, models.Forgot, now)

	assert.Equal(t, 1, p.Repetitions)
	assert.Equal(t, 0.0, p.SuccessRate)
	assert.Equal(t, models.StatusNew, p.Status)
}

func TestCountMastered(t *testing.T) {
	progress := map[string]models.WordProgress{
		"a": {Status: models.StatusMastered},
		"b": {Status: models.StatusLearning},
		"c": {Status: models.StatusMastered},
	}
	assert.Equal(t, 2, CountMastered(progress))
}
