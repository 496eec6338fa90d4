package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var envFile string

func main() {
	root := &cobra.Command{
		Use:           "vocabbot",
		Short:         "Telegram bot for learning english and hebrew words",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional file with VOCABBOT_* variables")
	root.AddCommand(newServeCommand(), newWordsCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
