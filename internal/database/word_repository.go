package database

import (
	"errors"
	"strings"

	"github.com/example/vocabbot/pkg/models"
	"github.com/samber/lo"
)

// ErrWordNotFound is returned when no dictionary entry matches
var ErrWordNotFound = errors.New("word not found")

// WordFilter narrows a random sample. Zero values mean "any".
type WordFilter struct {
	Difficulty int
	Topics     []string
}

// WordRepository is the read-only in-memory dictionary
type WordRepository struct {
	words []models.WordEntry
	byID  map[string]int
}

// NewWordRepository indexes entries in load order. When two entries share
// an id the first one wins.
func NewWordRepository(entries []models.WordEntry) *WordRepository {
	r := &WordRepository{
		words: make([]models.WordEntry, 0, len(entries)),
		byID:  make(map[string]int, len(entries)),
	}
	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}
		if _, exists := r.byID[entry.ID]; exists {
			continue
		}
		entry.Normalize()
		r.byID[entry.ID] = len(r.words)
		r.words = append(r.words, entry)
	}
	return r
}

// Count returns the number of dictionary entries
func (r *WordRepository) Count() int {
	return len(r.words)
}

// GetByID returns a word by ID
func (r *WordRepository) GetByID(id string) (*models.WordEntry, error) {
	idx, ok := r.byID[id]
	if !ok {
		return nil, ErrWordNotFound
	}
	word := r.words[idx]
	return &word, nil
}

// GetByEnglishText returns the first word whose english text equals text, ignoring case
func (r *WordRepository) GetByEnglishText(text string) (*models.WordEntry, error) {
	word, ok := lo.Find(r.words, func(w models.WordEntry) bool {
		return strings.EqualFold(w.English, text)
	})
	if !ok {
		return nil, ErrWordNotFound
	}
	return &word, nil
}

// Search returns up to limit words whose english text contains query, ignoring case
func (r *WordRepository) Search(query string, limit int) []models.WordEntry {
	if limit <= 0 {
		return []models.WordEntry{}
	}
	query = strings.ToLower(query)
	results := make([]models.WordEntry, 0, limit)
	for _, w := range r.words {
		if strings.Contains(strings.ToLower(w.English), query) {
			results = append(results, w)
			if len(results) == limit {
				break
			}
		}
	}
	return results
}

// SampleRandom draws min(count, matching) distinct words uniformly at random
func (r *WordRepository) SampleRandom(count int, filter WordFilter) []models.WordEntry {
	candidates := r.words
	if filter.Difficulty != 0 {
		candidates = lo.Filter(candidates, func(w models.WordEntry, _ int) bool {
			return w.Difficulty == filter.Difficulty
		})
	}
	if len(filter.Topics) > 0 {
		candidates = lo.Filter(candidates, func(w models.WordEntry, _ int) bool {
			return lo.Some(w.TopicTags, filter.Topics)
		})
	}
	if count <= 0 || len(candidates) == 0 {
		return []models.WordEntry{}
	}
	return lo.Samples(candidates, count)
}
