package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const excerptLen = 80

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Print the documents most similar to a query",
	Long: `Embed the query and print the ranked matches without generating an
answer. Useful for checking what a question would be grounded on.

Example:
  docchat search "shipping costs"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireAPIKey(); err != nil {
		return err
	}

	results, err := a.rag.Retrieve(cmd.Context(), strings.Join(args, " "), nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "no documents")
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(out, "%d. %s  %s\n   %s\n", i+1, formatScore(r.Score), r.Document.Metadata.Filename, excerpt(r.Document.Content))
	}
	return nil
}

func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= excerptLen {
		return s
	}
	return string(runes[:excerptLen]) + "..."
}
