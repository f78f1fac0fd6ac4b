package main

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	glossaryPath string
	pageURL      string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "pronounfix",
	Short: "Fix machine-translation pronoun errors using a character glossary",
	Long: `pronounfix rewrites he/she, his/her and friends in translated fiction so
they agree with the gender the glossary gives each character.

Examples:
  pronounfix fix chapter.txt --url https://example.com/novel/12
  pronounfix fix blocks.json --diff
  pronounfix characters --url https://example.com/novel/12`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&glossaryPath, "glossary", "g", "glossary.json", "glossary file path or http(s) URL",
	)
	rootCmd.PersistentFlags().StringVarP(
		&pageURL, "url", "u", "", "page URL used to pick the glossary site key",
	)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every block decision")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		log.SetOutput(cmd.ErrOrStderr())
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	}

	rootCmd.AddCommand(fixCmd, charactersCmd, schemaCmd)
}
