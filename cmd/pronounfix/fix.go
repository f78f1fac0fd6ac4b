package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"pronounfix/pkg/diff"
	"pronounfix/pkg/glossary"
	"pronounfix/pkg/pronoun"
	"pronounfix/pkg/utils"
)

var (
	showDiff   bool
	reportPath string
	outPath    string
)

var fixCmd = &cobra.Command{
	Use:   "fix <file>",
	Short: "Fix pronouns in a .txt file (blank-line paragraphs) or a .json array of blocks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		texts, asJSON, err := readBlocks(args[0])
		if err != nil {
			return err
		}

		loader := glossary.NewLoader(glossaryPath, time.Hour)
		view, err := loader.View(cmd.Context(), pageURL)

		var rep pronoun.Report
		blocks := pronoun.TextBlocks(texts...)
		if err != nil {
			if !pronoun.IsUnusable(err) {
				return err
			}
			rep = pronoun.Unusable(view, err)
			log.Warn("glossary unusable, text left as is", "reason", rep.Reason)
		} else {
			rep = pronoun.Run(view, blocks)
		}

		for i, b := range blocks {
			texts[i] = b.Text()
		}
		if err := writeBlocks(cmd, texts, asJSON); err != nil {
			return err
		}

		if showDiff {
			stderr := cmd.ErrOrStderr()
			color := false
			if f, ok := stderr.(*os.File); ok {
				color = isatty.IsTerminal(f.Fd())
			}
			diff.Print(stderr, diff.Blocks(rep.Changes), color)
		}
		if reportPath != "" {
			if err := utils.Save(reportPath, rep); err != nil {
				return fmt.Errorf("saving report: %w", err)
			}
		}
		log.Info("done", "key", rep.Key, "blocks", len(texts), "changed", rep.Changed)
		return nil
	},
}

func init() {
	fixCmd.Flags().BoolVarP(&showDiff, "diff", "d", false, "print a word diff of every changed block to stderr")
	fixCmd.Flags().StringVar(&reportPath, "report", "", "write the pass report as JSON to this path")
	fixCmd.Flags().StringVarP(&outPath, "out", "o", "", "write the fixed text here instead of stdout")
}

func readBlocks(path string) ([]string, bool, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		texts, err := utils.Load[[]string](path)
		if err != nil {
			return nil, true, fmt.Errorf("reading %s: %w", path, err)
		}
		return texts, true, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return utils.Paragraphs(string(data)), false, nil
}

func writeBlocks(cmd *cobra.Command, texts []string, asJSON bool) error {
	if outPath != "" {
		if asJSON {
			return utils.Save(outPath, texts)
		}
		return os.WriteFile(outPath, []byte(strings.Join(texts, "\n\n")+"\n"), 0o644)
	}
	if asJSON {
		return printJSON(cmd, texts)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(texts, "\n\n"))
	return err
}
