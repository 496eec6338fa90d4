// Package importer loads the static word dictionary from a JSON, CSV or
// Excel file at startup.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/vocabbot/pkg/models"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines where each field lives in a tabular dictionary
type ImportConfig struct {
	FilePath           string // Path to the JSON, CSV or Excel file
	IDColumn           string // Column with the word id (generated from the english text when empty)
	EnglishColumn      string
	HebrewColumn       string
	TranslationColumn  string
	PartOfSpeechColumn string
	DifficultyColumn   string
	ExamplesColumn     string
	SynonymsColumn     string
	TopicsColumn       string
	ListSeparator      string // Separator inside the examples, synonyms and topics cells
	SheetName          string // Name of the sheet to import
	StartRow           int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig(path string) ImportConfig {
	return ImportConfig{
		FilePath:           path,
		IDColumn:           "A",
		EnglishColumn:      "B",
		HebrewColumn:       "C",
		TranslationColumn:  "D",
		PartOfSpeechColumn: "E",
		DifficultyColumn:   "F",
		ExamplesColumn:     "G",
		SynonymsColumn:     "H",
		TopicsColumn:       "I",
		ListSeparator:      "|",
		SheetName:          "Sheet1",
		StartRow:           2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	Words          []models.WordEntry
	TotalProcessed int
	Skipped        int
	Errors         []string
}

// LoadWords reads the dictionary, choosing the format by file extension
func LoadWords(config ImportConfig) (*ImportResult, error) {
	switch strings.ToLower(filepath.Ext(config.FilePath)) {
	case ".json":
		return loadJSON(config)
	case ".csv":
		return loadCSV(config)
	case ".xlsx", ".xlsm":
		return loadExcel(config)
	default:
		return nil, fmt.Errorf("unsupported dictionary format %q", filepath.Ext(config.FilePath))
	}
}

// loadJSON reads a top-level array of word objects
func loadJSON(config ImportConfig) (*ImportResult, error) {
	data, err := os.ReadFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}

	var entries []models.WordEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode dictionary: %w", err)
	}

	result := &ImportResult{Words: make([]models.WordEntry, 0, len(entries)), Errors: []string{}}
	for i, entry := range entries {
		result.TotalProcessed++
		if err := validate(&entry); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Entry %d: %v", i+1, err))
			continue
		}
		result.Words = append(result.Words, entry)
	}
	return result, nil
}

// loadCSV imports words from a CSV file
func loadCSV(config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return processRows(rows, config), nil
}

// loadExcel imports words from an Excel file
func loadExcel(config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return processRows(rows, config), nil
}

func processRows(rows [][]string, config ImportConfig) *ImportResult {
	result := &ImportResult{Words: []models.WordEntry{}, Errors: []string{}}
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		if isBlank(row) {
			continue
		}
		result.TotalProcessed++

		entry, err := processRow(row, config)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.Words = append(result.Words, entry)
	}
	return result
}

// processRow converts a single spreadsheet row
func processRow(row []string, config ImportConfig) (models.WordEntry, error) {
	cell := func(column string) string {
		if column == "" {
			return ""
		}
		if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	entry := models.WordEntry{
		ID:           cell(config.IDColumn),
		English:      cell(config.EnglishColumn),
		Hebrew:       cell(config.HebrewColumn),
		Translation:  cell(config.TranslationColumn),
		PartOfSpeech: cell(config.PartOfSpeechColumn),
		Examples:     splitList(cell(config.ExamplesColumn), config.ListSeparator),
		Synonyms:     splitList(cell(config.SynonymsColumn), config.ListSeparator),
		TopicTags:    splitList(cell(config.TopicsColumn), config.ListSeparator),
	}

	if d := cell(config.DifficultyColumn); d != "" {
		difficulty, err := strconv.Atoi(d)
		if err != nil {
			return entry, fmt.Errorf("invalid difficulty %q", d)
		}
		entry.Difficulty = difficulty
	}

	if err := validate(&entry); err != nil {
		return entry, err
	}
	return entry, nil
}

// MaxIDLength keeps "<action>_<word id>" within Telegram's 64 byte callback data.
// Longer ids are replaced by a hash of themselves.
const MaxIDLength = 40

// validate checks the required fields and assigns a stable id to entries without one
func validate(entry *models.WordEntry) error {
	if !entry.Valid() {
		return fmt.Errorf("english and hebrew are required")
	}
	if entry.Difficulty < 0 {
		return fmt.Errorf("invalid difficulty %d", entry.Difficulty)
	}
	switch {
	case entry.ID == "":
		entry.ID = StableID(entry.English)
	case len(entry.ID) > MaxIDLength:
		entry.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(entry.ID)).String()
	}
	entry.Normalize()
	return nil
}

// StableID derives an id from the english text so it survives reloads
func StableID(english string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.ToLower(strings.TrimSpace(english)))).String()
}

func splitList(value, sep string) []string {
	if value == "" {
		return nil
	}
	if sep == "" {
		return []string{value}
	}
	var items []string
	for _, part := range strings.Split(value, sep) {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// columnToIndex converts an Excel column letter to a 0-based index
func columnToIndex(column string) int {
	idx, err := excelize.ColumnNameToNumber(strings.ToUpper(column))
	if err != nil {
		return -1
	}
	return idx - 1
}
