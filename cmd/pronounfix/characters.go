package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pronounfix/pkg/glossary"
	"pronounfix/pkg/pronoun"
	"pronounfix/pkg/schema"
)

var charactersCmd = &cobra.Command{
	Use:   "characters",
	Short: "Show the characters the glossary resolves for --url",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := glossary.NewLoader(glossaryPath, time.Hour)
		view, err := loader.View(cmd.Context(), pageURL)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "key: %q  carry: %d\n", view.Key, view.Carry)
		if view.Force.Definite() {
			fmt.Fprintf(out, "forced: %s\n", view.Force)
		}
		for _, c := range pronoun.Statuses(view) {
			mark := " "
			if view.IsPrimary(glossary.Character{Name: c.Name}) {
				mark = "*"
			}
			fmt.Fprintf(out, "%s %-24s %s\n", mark, c.Name, c.Gender)
		}
		return nil
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the glossary document",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(cmd, schema.GlossarySchema)
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
