package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hubenschmidt/docchat/monitor"
)

var showStages bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the terminal",
	Long: `Answer a question the same way POST /api/chat does and print the
answer followed by its sources.

Example:
  docchat ask "返金にはどれくらいかかりますか？"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&showStages, "stages", false, "print per-stage timings and token counts")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireAPIKey(); err != nil {
		return err
	}

	col := monitor.NewInMemoryCollector("cli")
	ans, err := a.rag.Answer(cmd.Context(), strings.Join(args, " "), col)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ans.Text)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Sources:")
	for i, src := range ans.Sources {
		fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, src.File, formatScore(src.Score))
	}

	if showStages {
		m := col.Flush()
		fmt.Fprintln(out)
		for _, st := range m.Stages {
			fmt.Fprintf(out, "  %-8s %8s  in=%d out=%d\n", st.Stage, st.Duration.Round(time.Millisecond), st.TokensIn, st.TokensOut)
		}
	}
	return nil
}

func formatScore(score float64) string {
	if math.IsNaN(score) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", score)
}
