package main

import (
	"fmt"
	"strings"

	"github.com/example/vocabbot/internal/config"
	"github.com/example/vocabbot/internal/database"
	"github.com/example/vocabbot/pkg/models"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newWordsCommand() *cobra.Command {
	var wordsFile string
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Inspect the dictionary",
	}
	cmd.PersistentFlags().StringVar(&wordsFile, "file", "", "dictionary file (defaults to VOCABBOT_WORDS_FILE)")

	open := func() (*database.WordRepository, error) {
		path := wordsFile
		if path == "" {
			cfg, err := config.Load(envFile)
			if err != nil {
				return nil, err
			}
			path = cfg.WordsFile
		}
		return loadDictionary(path, zerolog.Nop())
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "lookup <english>",
		Short: "Show one word by its english text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := open()
			if err != nil {
				return err
			}
			w, err := words.GetByEnglishText(args[0])
			if err != nil {
				return err
			}
			printWord(cmd, *w)
			return nil
		},
	})

	var limit int
	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Find words whose english text contains query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := open()
			if err != nil {
				return err
			}
			for _, w := range words.Search(args[0], limit) {
				printWord(cmd, w)
			}
			return nil
		},
	}
	search.Flags().IntVar(&limit, "limit", 10, "maximum number of results")
	cmd.AddCommand(search)

	var count, difficulty int
	var topics []string
	sample := &cobra.Command{
		Use:   "sample",
		Short: "Print random words",
		RunE: func(cmd *cobra.Command, _ []string) error {
			words, err := open()
			if err != nil {
				return err
			}
			filter := database.WordFilter{Difficulty: difficulty, Topics: topics}
			for _, w := range words.SampleRandom(count, filter) {
				printWord(cmd, w)
			}
			return nil
		},
	}
	sample.Flags().IntVar(&count, "count", 5, "number of words")
	sample.Flags().IntVar(&difficulty, "difficulty", 0, "only words of this difficulty (0 for any)")
	sample.Flags().StringSliceVar(&topics, "topic", nil, "only words with one of these topic tags")
	cmd.AddCommand(sample)

	return cmd
}

func printWord(cmd *cobra.Command, w models.WordEntry) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\t%s\t%s\t%s\tlevel %d\n", w.ID, w.English, w.Hebrew, w.Translation, w.Difficulty)
	if len(w.TopicTags) > 0 {
		fmt.Fprintf(out, "\ttopics: %s\n", strings.Join(w.TopicTags, ", "))
	}
}
